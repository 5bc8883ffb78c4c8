// Package auth authenticates staff accounts and manages their sessions.
package auth

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	pkgauth "github.com/servex-app/servex-backend/pkg/auth"
	"github.com/servex-app/servex-backend/pkg/config"
	"github.com/servex-app/servex-backend/pkg/db/models"
	"github.com/servex-app/servex-backend/pkg/enums"
	"github.com/servex-app/servex-backend/pkg/errors"
	"github.com/servex-app/servex-backend/pkg/logger"
	"github.com/servex-app/servex-backend/pkg/security"
)

// SessionStore is the session lifecycle surface used at login/logout.
type SessionStore interface {
	Generate(ctx context.Context, accessID string) (string, error)
	Revoke(ctx context.Context, accessID string) error
}

// LoginInput is the staff login payload.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginResponse carries the token pair and the account it belongs to.
type LoginResponse struct {
	Token        string            `json:"token"`
	RefreshToken string            `json:"refreshToken"`
	User         *models.StaffUser `json:"user"`
}

// RegisterInput creates a staff account, admin-only.
type RegisterInput struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,max=120"`
	Password string `json:"password" validate:"required,min=8,max=128"`
	Role     string `json:"role" validate:"required"`
}

// Service implements staff authentication.
type Service struct {
	repo        Repository
	sessions    SessionStore
	jwtCfg      config.JWTConfig
	passwordCfg config.PasswordConfig
	log         *logger.Logger
}

func NewService(repo Repository, sessions SessionStore, jwtCfg config.JWTConfig, passwordCfg config.PasswordConfig, log *logger.Logger) *Service {
	return &Service{
		repo:        repo,
		sessions:    sessions,
		jwtCfg:      jwtCfg,
		passwordCfg: passwordCfg,
		log:         log,
	}
}

// Login verifies the credentials, mints a staff JWT and registers the
// session. Bad email and bad password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, input LoginInput) (*LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if typed := errors.As(err); typed != nil && typed.Code() == errors.CodeNotFound {
			return nil, errors.New(errors.CodeUnauthorized, "invalid credentials")
		}
		return nil, err
	}

	ok, err := security.VerifyPassword(input.Password, user.PasswordHash)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "verifying password")
	}
	if !ok {
		return nil, errors.New(errors.CodeUnauthorized, "invalid credentials")
	}

	jti := uuid.NewString()
	token, err := pkgauth.MintAccessToken(s.jwtCfg, time.Now().UTC(), pkgauth.AccessTokenPayload{
		UserID: user.ID,
		Role:   user.Role,
		JTI:    jti,
	})
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "minting access token")
	}
	refreshToken, err := s.sessions.Generate(ctx, jti)
	if err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "registering session")
	}

	ctx = s.log.WithFields(ctx, map[string]any{"user_id": user.ID.String(), "role": user.Role})
	s.log.Info(ctx, "staff login")
	return &LoginResponse{Token: token, RefreshToken: refreshToken, User: user}, nil
}

// Logout revokes the session behind the presented token.
func (s *Service) Logout(ctx context.Context, claims *pkgauth.AccessTokenClaims) error {
	if claims == nil || claims.ID == "" {
		return nil
	}
	if err := s.sessions.Revoke(ctx, claims.ID); err != nil {
		return errors.Wrap(errors.CodeDependency, err, "revoking session")
	}
	return nil
}

// Register creates a new staff account.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*models.StaffUser, error) {
	role, err := enums.ParseStaffRole(input.Role)
	if err != nil {
		return nil, errors.New(errors.CodeValidation, "unknown staff role").
			WithDetails(map[string]any{"role": input.Role})
	}

	hash, err := security.HashPassword(input.Password, s.passwordCfg)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "hashing password")
	}

	user := &models.StaffUser{
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		Name:         strings.TrimSpace(input.Name),
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
