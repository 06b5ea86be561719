// AngelaMos | 2026
// identity_test.go

package core

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name     string
		identity *Identity
		role     Role
		status   int
		sentinel error
	}{
		{"nil identity", nil, RoleAdmin, http.StatusUnauthorized, ErrUnauthorized},
		{"empty user id", &Identity{Role: RoleAdmin}, RoleAdmin, http.StatusUnauthorized, ErrUnauthorized},
		{"student on admin op", &Identity{UserID: "u1", Role: RoleStudent}, RoleAdmin, http.StatusForbidden, ErrForbidden},
		{"admin on admin op", &Identity{UserID: "u1", Role: RoleAdmin}, RoleAdmin, 0, nil},
		{"student on student op", &Identity{UserID: "u1", Role: RoleStudent}, RoleStudent, 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := RequireRole(tt.identity, tt.role)
			if tt.sentinel == nil {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.ErrorIs(t, err, tt.sentinel)

			var appErr *AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, tt.status, appErr.StatusCode)
		})
	}
}

func TestIdentityIsAdmin(t *testing.T) {
	var nilID *Identity
	assert.False(t, nilID.IsAdmin())
	assert.False(t, (&Identity{Role: RoleStudent}).IsAdmin())
	assert.True(t, (&Identity{Role: RoleAdmin}).IsAdmin())
}

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleStudent.Valid())
	assert.True(t, RoleAdmin.Valid())
	assert.False(t, Role("teacher").Valid())
	assert.False(t, Role("").Valid())
}

func TestAppErrorWrapping(t *testing.T) {
	err := DuplicateError("email")
	assert.Equal(t, "email already exists: duplicate key", err.Error())
	assert.ErrorIs(t, err, ErrDuplicateKey)
	assert.True(t, IsAppError(err))
	assert.False(t, IsAppError(errors.New("plain")))

	assert.Equal(t, "authentication required", UnauthorizedError("").Message)
	assert.Equal(t, "course not found", NotFoundError("course").Message)
}
