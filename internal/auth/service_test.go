package auth

import (
	"context"
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgauth "github.com/servex-app/servex-backend/pkg/auth"
	"github.com/servex-app/servex-backend/pkg/config"
	"github.com/servex-app/servex-backend/pkg/db/models"
	"github.com/servex-app/servex-backend/pkg/enums"
	"github.com/servex-app/servex-backend/pkg/errors"
	"github.com/servex-app/servex-backend/pkg/logger"
	"github.com/servex-app/servex-backend/pkg/security"

	"github.com/google/uuid"
)

type fakeStaffRepo struct {
	byEmail map[string]*models.StaffUser
}

func (f *fakeStaffRepo) GetByEmail(_ context.Context, email string) (*models.StaffUser, error) {
	user, ok := f.byEmail[email]
	if !ok {
		return nil, errors.New(errors.CodeNotFound, "staff user not found")
	}
	return user, nil
}

func (f *fakeStaffRepo) Create(_ context.Context, user *models.StaffUser) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	f.byEmail[user.Email] = user
	return nil
}

type fakeSessions struct {
	created []string
	revoked []string
}

func (f *fakeSessions) Generate(_ context.Context, accessID string) (string, error) {
	f.created = append(f.created, accessID)
	return "refresh-" + accessID, nil
}

func (f *fakeSessions) Revoke(_ context.Context, accessID string) error {
	f.revoked = append(f.revoked, accessID)
	return nil
}

var (
	testJWTCfg = config.JWTConfig{
		Secret:            "auth-test-secret",
		Issuer:            "servex-test",
		ExpirationMinutes: 60,
	}
	testPasswordCfg = config.PasswordConfig{
		ArgonMemoryKB:    8192,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
)

func newTestService(t *testing.T) (*Service, *fakeStaffRepo, *fakeSessions) {
	t.Helper()
	repo := &fakeStaffRepo{byEmail: make(map[string]*models.StaffUser)}
	sessions := &fakeSessions{}
	log := logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled, Output: io.Discard})
	service := NewService(repo, sessions, testJWTCfg, testPasswordCfg, log)

	hash, err := security.HashPassword("correct horse battery", testPasswordCfg)
	require.NoError(t, err)
	repo.byEmail["chef@example.com"] = &models.StaffUser{
		ID:           uuid.New(),
		Email:        "chef@example.com",
		Name:         "Chef",
		PasswordHash: hash,
		Role:         enums.StaffRoleKitchen,
	}
	return service, repo, sessions
}

func TestLoginIssuesTokenAndSession(t *testing.T) {
	service, repo, sessions := newTestService(t)

	resp, err := service.Login(context.Background(), LoginInput{
		Email:    " Chef@Example.com ",
		Password: "correct horse battery",
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)
	assert.Equal(t, repo.byEmail["chef@example.com"].ID, resp.User.ID)

	claims, err := pkgauth.ParseAccessToken(testJWTCfg, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, enums.StaffRoleKitchen, claims.Role)
	require.Len(t, sessions.created, 1)
	assert.Equal(t, claims.ID, sessions.created[0])
	assert.Equal(t, "refresh-"+claims.ID, resp.RefreshToken)
}

func TestLoginWrongPassword(t *testing.T) {
	service, _, sessions := newTestService(t)

	_, err := service.Login(context.Background(), LoginInput{
		Email:    "chef@example.com",
		Password: "wrong",
	})
	require.Error(t, err)
	assert.Equal(t, errors.CodeUnauthorized, errors.As(err).Code())
	assert.Empty(t, sessions.created)
}

func TestLoginUnknownEmailLooksLikeWrongPassword(t *testing.T) {
	service, _, _ := newTestService(t)

	_, err := service.Login(context.Background(), LoginInput{
		Email:    "nobody@example.com",
		Password: "whatever",
	})
	require.Error(t, err)
	assert.Equal(t, errors.CodeUnauthorized, errors.As(err).Code())
}

func TestLogoutRevokesSession(t *testing.T) {
	service, _, sessions := newTestService(t)

	resp, err := service.Login(context.Background(), LoginInput{
		Email:    "chef@example.com",
		Password: "correct horse battery",
	})
	require.NoError(t, err)

	claims, err := pkgauth.ParseAccessToken(testJWTCfg, resp.Token)
	require.NoError(t, err)
	require.NoError(t, service.Logout(context.Background(), claims))
	require.Len(t, sessions.revoked, 1)
	assert.Equal(t, claims.ID, sessions.revoked[0])
}

func TestRegisterHashesPassword(t *testing.T) {
	service, repo, _ := newTestService(t)

	user, err := service.Register(context.Background(), RegisterInput{
		Email:    "Admin@Example.com",
		Name:     "Admin",
		Password: "super secret pw",
		Role:     "admin",
	})
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", user.Email)
	assert.Equal(t, enums.StaffRoleAdmin, user.Role)
	assert.NotEqual(t, "super secret pw", user.PasswordHash)

	ok, err := security.VerifyPassword("super secret pw", repo.byEmail["admin@example.com"].PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRegisterUnknownRole(t *testing.T) {
	service, _, _ := newTestService(t)
	_, err := service.Register(context.Background(), RegisterInput{
		Email:    "x@example.com",
		Name:     "X",
		Password: "super secret pw",
		Role:     "waiter",
	})
	require.Error(t, err)
	assert.Equal(t, errors.CodeValidation, errors.As(err).Code())
}
