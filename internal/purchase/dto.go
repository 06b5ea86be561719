// AngelaMos | 2026
// dto.go

package purchase

import (
	"time"

	"github.com/carterperez-dev/coursehub/internal/course"
)

type PurchaseResponse struct {
	ID          string    `json:"id"`
	CourseID    string    `json:"course_id"`
	Amount      float64   `json:"amount"`
	Currency    string    `json:"currency"`
	Status      string    `json:"status"`
	PurchasedAt time.Time `json:"purchased_at"`
}

type OwnedCourse struct {
	course.CourseDetail
	PurchasedAt time.Time `json:"purchased_at"`
}

func ToPurchaseResponse(p *Purchase) PurchaseResponse {
	return PurchaseResponse{
		ID:          p.ID,
		CourseID:    p.CourseID,
		Amount:      p.Amount,
		Currency:    p.Currency,
		Status:      p.Status,
		PurchasedAt: p.PurchasedAt,
	}
}
