package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"rent_a_ride_backend/internal/common"
	"rent_a_ride_backend/internal/config"
	"rent_a_ride_backend/internal/shared"
)

func newTestJWTService() shared.TokenService {
	cfg := &config.Config{
		JWTAccessSecret:       "test-access-secret",
		JWTRefreshSecret:      "test-refresh-secret",
		JWTAccessTokenExpiry:  15 * time.Minute,
		JWTRefreshTokenExpiry: 7 * 24 * time.Hour,
	}
	return NewJWTService(cfg, zap.NewNop())
}

func tokenUser() *shared.User {
	return &shared.User{
		ID:    uuid.New(),
		Email: "driver@example.com",
		Role:  common.RoleUser,
	}
}

func TestJWTService_AccessTokenRoundTrip(t *testing.T) {
	svc := newTestJWTService()
	usr := tokenUser()
	sessionID := uuid.New()

	token, expiresAt, err := svc.GenerateAccessToken(usr, sessionID)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.True(t, expiresAt.After(time.Now()))

	claims, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, usr.ID, claims.UserID)
	assert.Equal(t, usr.Email, claims.Email)
	assert.Equal(t, usr.Role, claims.Role)
	assert.Equal(t, sessionID, claims.SessionID)
	assert.NotEmpty(t, claims.ID, "access token must carry a JTI for the blocklist")
}

func TestJWTService_RefreshTokenRoundTrip(t *testing.T) {
	svc := newTestJWTService()
	usr := tokenUser()
	sessionID := uuid.New()

	token, expiresAt, err := svc.GenerateRefreshToken(usr, sessionID)
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now().Add(6*24*time.Hour)))

	claims, err := svc.ParseRefreshToken(token)
	require.NoError(t, err)
	assert.Equal(t, usr.ID, claims.UserID)
	assert.Equal(t, sessionID, claims.SessionID)
}

func TestJWTService_TokenKindsAreNotInterchangeable(t *testing.T) {
	svc := newTestJWTService()
	usr := tokenUser()
	sessionID := uuid.New()

	accessToken, _, err := svc.GenerateAccessToken(usr, sessionID)
	require.NoError(t, err)
	refreshToken, _, err := svc.GenerateRefreshToken(usr, sessionID)
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(refreshToken)
	assert.Error(t, err, "refresh token must not pass access validation")

	_, err = svc.ParseRefreshToken(accessToken)
	assert.Error(t, err, "access token must not pass refresh validation")
}

func TestJWTService_RejectsTamperedToken(t *testing.T) {
	svc := newTestJWTService()
	usr := tokenUser()

	token, _, err := svc.GenerateAccessToken(usr, uuid.New())
	require.NoError(t, err)

	tampered := token[:len(token)-4] + "AAAA"
	_, err = svc.ValidateAccessToken(tampered)
	assert.Error(t, err)
}

func TestJWTService_RejectsWrongSecret(t *testing.T) {
	svc := newTestJWTService()
	otherCfg := &config.Config{
		JWTAccessSecret:       "entirely-different-secret",
		JWTRefreshSecret:      "another-different-secret",
		JWTAccessTokenExpiry:  15 * time.Minute,
		JWTRefreshTokenExpiry: 7 * 24 * time.Hour,
	}
	other := NewJWTService(otherCfg, zap.NewNop())

	token, _, err := svc.GenerateAccessToken(tokenUser(), uuid.New())
	require.NoError(t, err)

	_, err = other.ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestInMemoryBlocklist(t *testing.T) {
	ctx := context.Background()
	blocklist := NewInMemoryBlocklistService(InMemoryBlocklistConfig{
		DefaultExpiration: time.Minute,
		CleanupInterval:   time.Minute,
	})

	jti := uuid.NewString()

	found, err := blocklist.IsBlocklisted(ctx, jti)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, blocklist.AddToBlocklist(ctx, jti, time.Now().Add(time.Minute)))

	found, err = blocklist.IsBlocklisted(ctx, jti)
	require.NoError(t, err)
	assert.True(t, found)

	// Already-expired tokens are not stored at all.
	expiredJTI := uuid.NewString()
	require.NoError(t, blocklist.AddToBlocklist(ctx, expiredJTI, time.Now().Add(-time.Minute)))
	found, err = blocklist.IsBlocklisted(ctx, expiredJTI)
	require.NoError(t, err)
	assert.False(t, found)
}
