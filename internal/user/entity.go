// AngelaMos | 2026
// entity.go

package user

import (
	"time"

	"github.com/carterperez-dev/coursehub/internal/core"
)

type User struct {
	ID           string    `db:"id"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	FirstName    string    `db:"first_name"`
	LastName     string    `db:"last_name"`
	Gender       string    `db:"gender"`
	Phone        string    `db:"phone"`
	BirthDate    string    `db:"birth_date"`
	Country      string    `db:"country"`
	City         string    `db:"city"`
	Role         core.Role `db:"role"`
	IsActive     bool      `db:"is_active"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == core.RoleAdmin
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}
