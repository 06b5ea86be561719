// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/carterperez-dev/coursehub/internal/auth"
	"github.com/carterperez-dev/coursehub/internal/config"
	"github.com/carterperez-dev/coursehub/internal/core"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetByID(
	ctx context.Context,
	id string,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) GetByEmail(
	ctx context.Context,
	email string,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) Create(
	ctx context.Context,
	nu auth.NewUser,
) (*auth.UserInfo, error) {
	role := nu.Role
	if role == "" {
		role = core.RoleStudent
	}

	user := &User{
		ID:           uuid.New().String(),
		Email:        normalizeEmail(nu.Email),
		PasswordHash: nu.PasswordHash,
		FirstName:    strings.TrimSpace(nu.FirstName),
		LastName:     strings.TrimSpace(nu.LastName),
		Gender:       nu.Gender,
		Phone:        nu.Phone,
		BirthDate:    nu.BirthDate,
		Country:      nu.Country,
		City:         nu.City,
		Role:         role,
		IsActive:     true,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) UpdatePassword(
	ctx context.Context,
	userID, passwordHash string,
) error {
	return s.repo.UpdatePassword(ctx, userID, passwordHash)
}

func (s *Service) GetMe(ctx context.Context, userID string) (*User, error) {
	if userID == "" {
		return nil, fmt.Errorf("get me: %w", core.ErrUnauthorized)
	}

	return s.repo.GetByID(ctx, userID)
}

func (s *Service) GetUser(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListUsers(
	ctx context.Context,
	params ListUsersParams,
) ([]User, int, error) {
	return s.repo.List(ctx, params)
}

func (s *Service) CountByRole(ctx context.Context) (map[core.Role]int, error) {
	return s.repo.CountByRole(ctx)
}

// EnsureAdmin creates the configured admin account if no user holds that
// email yet. An existing account is left untouched, whatever its role.
func (s *Service) EnsureAdmin(
	ctx context.Context,
	cfg config.AdminConfig,
) (bool, error) {
	if cfg.Email == "" || cfg.Password == "" {
		return false, nil
	}

	exists, err := s.repo.ExistsByEmail(ctx, normalizeEmail(cfg.Email))
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	hash, err := core.HashPassword(cfg.Password)
	if err != nil {
		return false, fmt.Errorf("hash admin password: %w", err)
	}

	_, err = s.Create(ctx, auth.NewUser{
		Email:        cfg.Email,
		PasswordHash: hash,
		FirstName:    cfg.FirstName,
		LastName:     cfg.LastName,
		Role:         core.RoleAdmin,
	})
	if errors.Is(err, core.ErrDuplicateKey) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return true, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func toUserInfo(u *User) *auth.UserInfo {
	return &auth.UserInfo{
		ID:           u.ID,
		Email:        u.Email,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
		IsActive:     u.IsActive,
		CreatedAt:    u.CreatedAt,
	}
}

var _ auth.UserProvider = (*Service)(nil)
