// AngelaMos | 2026
// dto.go

package auth

import (
	"strings"
	"time"

	"github.com/carterperez-dev/coursehub/internal/core"
)

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,max=72"`
}

type RegisterRequest struct {
	Email     string `json:"email"      validate:"required,email,max=255"`
	Password  string `json:"password"   validate:"required,min=6,max=72"`
	FirstName string `json:"first_name" validate:"required,notblank,max=100"`
	LastName  string `json:"last_name"  validate:"required,notblank,max=100"`
	Gender    string `json:"gender"     validate:"omitempty,oneof=male female other"`
	Phone     string `json:"phone"      validate:"omitempty,max=20"`
	BirthDate string `json:"birth_date" validate:"omitempty,datetime=2006-01-02"`
	Country   string `json:"country"    validate:"omitempty,max=100"`
	City      string `json:"city"       validate:"omitempty,max=100"`
}

// normalize trims free-text fields so blank names fail validation instead
// of being stored empty. Email case folding happens in the user store.
func (r *RegisterRequest) normalize() {
	r.Email = strings.TrimSpace(r.Email)
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Phone = strings.TrimSpace(r.Phone)
	r.Country = strings.TrimSpace(r.Country)
	r.City = strings.TrimSpace(r.City)
}

type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresIn   int       `json:"expires_in"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Role      core.Role `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type LoginResponse struct {
	TokenResponse
	User UserResponse `json:"user"`
}

func toUserResponse(u *UserInfo) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}
