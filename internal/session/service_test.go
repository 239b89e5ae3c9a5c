package session

import (
	"context"
	"fmt"
	"net/http"
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

// stubTokenService mints fake but unique token strings and remembers which
// session each refresh token belongs to, so tests can drive rotation without
// real JWT signing.
type stubTokenService struct {
	counter       int
	refreshClaims map[string]*shared.Claims
	parseErr      error
}

func newStubTokenService() *stubTokenService {
	return &stubTokenService{refreshClaims: make(map[string]*shared.Claims)}
}

func (s *stubTokenService) GenerateAccessToken(user shared.UserDataForToken, sessionID uuid.UUID) (string, time.Time, error) {
	s.counter++
	return fmt.Sprintf("access-%d", s.counter), time.Now().Add(15 * time.Minute), nil
}

func (s *stubTokenService) GenerateRefreshToken(user shared.UserDataForToken, sessionID uuid.UUID) (string, time.Time, error) {
	s.counter++
	token := fmt.Sprintf("refresh-%d", s.counter)
	s.refreshClaims[token] = &shared.Claims{
		UserID:    user.GetID(),
		Email:     user.GetEmail(),
		Role:      user.GetRole(),
		SessionID: sessionID,
	}
	return token, time.Now().Add(7 * 24 * time.Hour), nil
}

func (s *stubTokenService) ValidateAccessToken(tokenString string) (*shared.Claims, error) {
	return nil, fmt.Errorf("not used in session tests")
}

func (s *stubTokenService) ParseRefreshToken(tokenString string) (*shared.Claims, error) {
	if s.parseErr != nil {
		return nil, s.parseErr
	}
	claims, ok := s.refreshClaims[tokenString]
	if !ok {
		return nil, fmt.Errorf("invalid refresh token")
	}
	return claims, nil
}

// memoryRepository keeps sessions in a map.
type memoryRepository struct {
	sessions map[uuid.UUID]*Session
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{sessions: make(map[uuid.UUID]*Session)}
}

func (r *memoryRepository) Create(ctx context.Context, session *Session) error {
	cp := *session
	r.sessions[session.ID] = &cp
	return nil
}

func (r *memoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*Session, error) {
	sess, ok := r.sessions[id]
	if !ok {
		return nil, common.ErrNotFound.WithDetails("Session not found.")
	}
	cp := *sess
	return &cp, nil
}

func (r *memoryRepository) Update(ctx context.Context, session *Session) error {
	cp := *session
	r.sessions[session.ID] = &cp
	return nil
}

func (r *memoryRepository) Revoke(ctx context.Context, id uuid.UUID, at time.Time) error {
	sess, ok := r.sessions[id]
	if !ok || sess.RevokedAt != nil {
		return common.ErrNotFound.WithDetails("Session not found or already revoked.")
	}
	sess.RevokedAt = &at
	return nil
}

func (r *memoryRepository) RevokeAllForUser(ctx context.Context, userID uuid.UUID, at time.Time) error {
	for _, sess := range r.sessions {
		if sess.UserID == userID && sess.RevokedAt == nil {
			sess.RevokedAt = &at
		}
	}
	return nil
}

func (r *memoryRepository) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	var deleted int64
	for id, sess := range r.sessions {
		if sess.ExpiresAt.Before(cutoff) {
			delete(r.sessions, id)
			deleted++
		}
	}
	return deleted, nil
}

type stubUserProvider struct {
	users map[uuid.UUID]*shared.User
}

func (p *stubUserProvider) GetUserByID(ctx context.Context, id uuid.UUID) (*shared.User, error) {
	usr, ok := p.users[id]
	if !ok {
		return nil, common.ErrNotFound.WithDetails("User not found with this ID.")
	}
	return usr, nil
}

func testUser() *shared.User {
	return &shared.User{
		ID:    uuid.New(),
		Email: "rider@example.com",
		Role:  common.RoleUser,
	}
}

func newSessionService(t *testing.T, usr *shared.User) (*ServiceImplementation, *memoryRepository, *stubTokenService) {
	t.Helper()
	repo := newMemoryRepository()
	tokens := newStubTokenService()
	users := &stubUserProvider{users: map[uuid.UUID]*shared.User{usr.ID: usr}}
	svc := NewService(repo, tokens, users, &config.Config{}, zap.NewNop())
	return svc, repo, tokens
}

func TestIssue(t *testing.T) {
	ctx := context.Background()
	usr := testUser()
	svc, repo, tokens := newSessionService(t, usr)

	resp, err := svc.Issue(ctx, usr, ClientInfo{UserAgent: "test-agent", IPAddress: "127.0.0.1"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)

	claims := tokens.refreshClaims[resp.RefreshToken]
	require.NotNil(t, claims)

	stored, err := repo.FindByID(ctx, claims.SessionID)
	require.NoError(t, err)
	assert.Equal(t, usr.ID, stored.UserID)
	assert.Equal(t, HashToken(resp.RefreshToken), stored.RefreshTokenHash)
	assert.NotEqual(t, resp.RefreshToken, stored.RefreshTokenHash)
	assert.Equal(t, 0, stored.Rotations)
	assert.Equal(t, "test-agent", stored.UserAgent)
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()

	t.Run("rotates token and bumps counter", func(t *testing.T) {
		usr := testUser()
		svc, repo, tokens := newSessionService(t, usr)

		issued, err := svc.Issue(ctx, usr, ClientInfo{})
		require.NoError(t, err)

		refreshed, err := svc.Refresh(ctx, issued.RefreshToken)
		require.NoError(t, err)
		assert.NotEqual(t, issued.RefreshToken, refreshed.RefreshToken)
		assert.NotEmpty(t, refreshed.AccessToken)

		sessionID := tokens.refreshClaims[issued.RefreshToken].SessionID
		stored, err := repo.FindByID(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, 1, stored.Rotations)
		assert.Equal(t, HashToken(refreshed.RefreshToken), stored.RefreshTokenHash)
	})

	t.Run("verification failure is unauthorized", func(t *testing.T) {
		usr := testUser()
		svc, _, tokens := newSessionService(t, usr)
		tokens.parseErr = fmt.Errorf("signature is invalid")

		_, err := svc.Refresh(ctx, "garbage")
		require.Error(t, err)
		apiErr, ok := common.IsAPIError(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	})

	t.Run("unknown session is forbidden", func(t *testing.T) {
		usr := testUser()
		svc, _, tokens := newSessionService(t, usr)

		// Token parses fine but points at a session that was never created.
		tokens.refreshClaims["orphan"] = &shared.Claims{UserID: usr.ID, SessionID: uuid.New()}

		_, err := svc.Refresh(ctx, "orphan")
		require.Error(t, err)
		apiErr, ok := common.IsAPIError(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	})

	t.Run("superseded token revokes the session", func(t *testing.T) {
		usr := testUser()
		svc, repo, tokens := newSessionService(t, usr)

		issued, err := svc.Issue(ctx, usr, ClientInfo{})
		require.NoError(t, err)

		refreshed, err := svc.Refresh(ctx, issued.RefreshToken)
		require.NoError(t, err)

		// Replaying the original token after rotation must kill the lineage.
		_, err = svc.Refresh(ctx, issued.RefreshToken)
		require.Error(t, err)
		apiErr, ok := common.IsAPIError(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)

		sessionID := tokens.refreshClaims[issued.RefreshToken].SessionID
		stored, err := repo.FindByID(ctx, sessionID)
		require.NoError(t, err)
		assert.NotNil(t, stored.RevokedAt)

		// The current token dies with the session.
		_, err = svc.Refresh(ctx, refreshed.RefreshToken)
		require.Error(t, err)
		apiErr, ok = common.IsAPIError(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	})

	t.Run("revoked session is forbidden", func(t *testing.T) {
		usr := testUser()
		svc, _, tokens := newSessionService(t, usr)

		issued, err := svc.Issue(ctx, usr, ClientInfo{})
		require.NoError(t, err)

		sessionID := tokens.refreshClaims[issued.RefreshToken].SessionID
		require.NoError(t, svc.Revoke(ctx, sessionID))

		_, err = svc.Refresh(ctx, issued.RefreshToken)
		require.Error(t, err)
		apiErr, ok := common.IsAPIError(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	})

	t.Run("expired session is forbidden", func(t *testing.T) {
		usr := testUser()
		svc, repo, tokens := newSessionService(t, usr)

		issued, err := svc.Issue(ctx, usr, ClientInfo{})
		require.NoError(t, err)

		sessionID := tokens.refreshClaims[issued.RefreshToken].SessionID
		stored := repo.sessions[sessionID]
		stored.ExpiresAt = time.Now().Add(-time.Minute)

		_, err = svc.Refresh(ctx, issued.RefreshToken)
		require.Error(t, err)
		apiErr, ok := common.IsAPIError(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	})
}

func TestRevoke(t *testing.T) {
	ctx := context.Background()
	usr := testUser()
	svc, repo, tokens := newSessionService(t, usr)

	issued, err := svc.Issue(ctx, usr, ClientInfo{})
	require.NoError(t, err)
	sessionID := tokens.refreshClaims[issued.RefreshToken].SessionID

	require.NoError(t, svc.Revoke(ctx, sessionID))
	stored, err := repo.FindByID(ctx, sessionID)
	require.NoError(t, err)
	assert.NotNil(t, stored.RevokedAt)

	// Second revoke is a no-op, not an error.
	require.NoError(t, svc.Revoke(ctx, sessionID))
}

func TestPurgeExpired(t *testing.T) {
	ctx := context.Background()
	usr := testUser()
	svc, repo, _ := newSessionService(t, usr)

	live := &Session{BaseModel: common.BaseModel{ID: uuid.New()}, UserID: usr.ID, ExpiresAt: time.Now().Add(time.Hour)}
	dead := &Session{BaseModel: common.BaseModel{ID: uuid.New()}, UserID: usr.ID, ExpiresAt: time.Now().Add(-time.Hour)}
	require.NoError(t, repo.Create(ctx, live))
	require.NoError(t, repo.Create(ctx, dead))

	deleted, err := svc.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, err = repo.FindByID(ctx, dead.ID)
	assert.Error(t, err)
	_, err = repo.FindByID(ctx, live.ID)
	assert.NoError(t, err)
}
