package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/servex-app/servex-backend/pkg/config"
	"github.com/servex-app/servex-backend/pkg/enums"
)

var testCfg = config.JWTConfig{
	Secret:            "token-test-secret",
	Issuer:            "servex-test",
	ExpirationMinutes: 30,
}

func TestAccessTokenRoundTrip(t *testing.T) {
	userID := uuid.New()
	signed, err := MintAccessToken(testCfg, time.Now().UTC(), AccessTokenPayload{
		UserID: userID,
		Role:   enums.StaffRoleKitchen,
		JTI:    "jti-1",
	})
	require.NoError(t, err)

	claims, err := ParseAccessToken(testCfg, signed)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, enums.StaffRoleKitchen, claims.Role)
	assert.Equal(t, "jti-1", claims.ID)
}

func TestParseAccessTokenRejectsExpired(t *testing.T) {
	issued := time.Now().UTC().Add(-2 * time.Hour)
	signed, err := MintAccessToken(testCfg, issued, AccessTokenPayload{
		UserID: uuid.New(),
		Role:   enums.StaffRoleAdmin,
	})
	require.NoError(t, err)

	_, err = ParseAccessToken(testCfg, signed)
	require.Error(t, err)

	claims, err := ParseAccessTokenAllowExpired(testCfg, signed)
	require.NoError(t, err)
	assert.NotEmpty(t, claims.ID)
	assert.Equal(t, enums.StaffRoleAdmin, claims.Role)
}

func TestParseAccessTokenRejectsWrongSecret(t *testing.T) {
	signed, err := MintAccessToken(testCfg, time.Now().UTC(), AccessTokenPayload{
		UserID: uuid.New(),
		Role:   enums.StaffRoleAdmin,
	})
	require.NoError(t, err)

	other := testCfg
	other.Secret = "a-different-secret"
	_, err = ParseAccessToken(other, signed)
	require.Error(t, err)
}

func TestTableSessionTokenRoundTrip(t *testing.T) {
	tableID := uuid.New()
	signed, err := MintTableSessionToken(testCfg, 3*time.Hour, time.Now().UTC(), tableID)
	require.NoError(t, err)

	claims, err := ParseTableSessionToken(testCfg, signed)
	require.NoError(t, err)
	assert.Equal(t, tableID, claims.TableID)
}

func TestParseTableSessionTokenRejectsStaffToken(t *testing.T) {
	signed, err := MintAccessToken(testCfg, time.Now().UTC(), AccessTokenPayload{
		UserID: uuid.New(),
		Role:   enums.StaffRoleKitchen,
	})
	require.NoError(t, err)

	_, err = ParseTableSessionToken(testCfg, signed)
	require.Error(t, err)
}
