// AngelaMos | 2026
// identity.go

package core

import (
	"fmt"
	"net/http"
)

type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleAdmin
}

// Identity is the authenticated caller recovered from a verified token.
type Identity struct {
	UserID string
	Email  string
	Role   Role
}

func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == RoleAdmin
}

// RequireRole fails with ErrUnauthorized for a missing identity and
// ErrForbidden when the role does not match.
func RequireRole(id *Identity, role Role) error {
	if id == nil || id.UserID == "" {
		return UnauthorizedError("")
	}

	if id.Role != role {
		return NewAppError(
			fmt.Errorf("role %q required: %w", role, ErrForbidden),
			"insufficient permissions",
			http.StatusForbidden,
			"FORBIDDEN",
		)
	}

	return nil
}
