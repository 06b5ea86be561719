// AngelaMos | 2026
// entity.go

package purchase

import (
	"time"
)

const StatusCompleted = "completed"

// Purchase grants a user permanent access to a course. Amount and
// Currency snapshot the course price at acquisition time.
type Purchase struct {
	ID          string    `db:"id"`
	UserID      string    `db:"user_id"`
	CourseID    string    `db:"course_id"`
	Amount      float64   `db:"amount"`
	Currency    string    `db:"currency"`
	Status      string    `db:"status"`
	PurchasedAt time.Time `db:"purchased_at"`
}

type Totals struct {
	Count   int                `db:"count"  json:"count"`
	Buyers  int                `db:"buyers" json:"buyers"`
	Revenue map[string]float64 `db:"-"      json:"revenue"`
}
