// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/carterperez-dev/coursehub/internal/core"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDisabled    = errors.New("account disabled")
	ErrEmailExists        = errors.New("email already exists")
)

type UserInfo struct {
	ID           string
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
	Role         core.Role
	IsActive     bool
	CreatedAt    time.Time
}

type NewUser struct {
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Gender       string
	Phone        string
	BirthDate    string
	Country      string
	City         string
	Role         core.Role
}

type UserProvider interface {
	GetByEmail(ctx context.Context, email string) (*UserInfo, error)
	GetByID(ctx context.Context, id string) (*UserInfo, error)
	Create(ctx context.Context, user NewUser) (*UserInfo, error)
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
}

type Service struct {
	jwt          *JWTManager
	userProvider UserProvider
	logger       *slog.Logger
}

func NewService(
	jwt *JWTManager,
	userProvider UserProvider,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		jwt:          jwt,
		userProvider: userProvider,
		logger:       logger,
	}
}

// Register creates a student account. Email uniqueness is enforced by the
// users table, so two concurrent registrations cannot both succeed.
func (s *Service) Register(
	ctx context.Context,
	req RegisterRequest,
) (*UserResponse, error) {
	req.normalize()
	if req.FirstName == "" || req.LastName == "" {
		return nil, core.ValidationError("first_name and last_name must not be blank")
	}

	passwordHash, err := core.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.userProvider.Create(ctx, NewUser{
		Email:        req.Email,
		PasswordHash: passwordHash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Gender:       req.Gender,
		Phone:        req.Phone,
		BirthDate:    req.BirthDate,
		Country:      req.Country,
		City:         req.City,
		Role:         core.RoleStudent,
	})
	if err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.InfoContext(ctx, "user registered", "user_id", user.ID)

	resp := toUserResponse(user)
	return &resp, nil
}

func (s *Service) Login(
	ctx context.Context,
	req LoginRequest,
) (*LoginResponse, error) {
	user, err := s.userProvider.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			//nolint:errcheck // timing attack prevention - always verify to prevent enumeration
			_, _, _ = core.VerifyPasswordTimingSafe(req.Password, nil)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	valid, newHash, err := core.VerifyPasswordTimingSafe(
		req.Password,
		&user.PasswordHash,
	)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}

	if !valid {
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, ErrAccountDisabled
	}

	if newHash != "" {
		if err := s.userProvider.UpdatePassword(ctx, user.ID, newHash); err != nil {
			s.logger.WarnContext(ctx, "password rehash failed",
				"user_id", user.ID,
				"error", err,
			)
		}
	}

	token, expiresAt, err := s.jwt.CreateAccessToken(AccessTokenClaims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	})
	if err != nil {
		return nil, fmt.Errorf("create access token: %w", err)
	}

	return &LoginResponse{
		TokenResponse: TokenResponse{
			AccessToken: token,
			TokenType:   "bearer",
			ExpiresIn:   int(time.Until(expiresAt).Round(time.Second) / time.Second),
			ExpiresAt:   expiresAt,
		},
		User: toUserResponse(user),
	}, nil
}

// Authenticate resolves a bearer token to the caller's identity without
// touching the database.
func (s *Service) Authenticate(
	ctx context.Context,
	token string,
) (*core.Identity, error) {
	if token == "" {
		return nil, fmt.Errorf("authenticate: %w", core.ErrUnauthorized)
	}
	return s.jwt.VerifyAccessToken(ctx, token)
}
