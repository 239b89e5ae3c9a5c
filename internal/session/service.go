// File: internal/session/service.go
package session

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"rent_a_ride_backend/internal/common"
	"rent_a_ride_backend/internal/config"
	"rent_a_ride_backend/internal/shared"
)

// Service defines the interface for session lifecycle operations.
type Service interface {
	Issue(ctx context.Context, user shared.UserDataForToken, client ClientInfo) (*shared.TokenResponse, error)
	Refresh(ctx context.Context, rawRefreshToken string) (*shared.TokenResponse, error)
	Revoke(ctx context.Context, sessionID uuid.UUID) error
	RevokeAllForUser(ctx context.Context, userID uuid.UUID) error
	PurgeExpired(ctx context.Context) (int64, error)
}

// ServiceImplementation implements the session Service interface.
type ServiceImplementation struct {
	repo         Repository
	tokenService shared.TokenService
	users        shared.UserProvider
	cfg          *config.Config
	logger       *zap.Logger
}

var _ Service = (*ServiceImplementation)(nil)

// NewService creates a new session service.
func NewService(
	repo Repository,
	tokenService shared.TokenService,
	users shared.UserProvider,
	cfg *config.Config,
	logger *zap.Logger,
) *ServiceImplementation {
	return &ServiceImplementation{
		repo:         repo,
		tokenService: tokenService,
		users:        users,
		cfg:          cfg,
		logger:       logger,
	}
}

// HashToken returns the SHA-256 hex digest stored in place of a raw
// refresh token.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// Issue creates a new session and returns the access/refresh token pair
// bound to it.
func (s *ServiceImplementation) Issue(ctx context.Context, user shared.UserDataForToken, client ClientInfo) (*shared.TokenResponse, error) {
	sessionID := uuid.New()

	refreshToken, refreshExpiresAt, err := s.tokenService.GenerateRefreshToken(user, sessionID)
	if err != nil {
		s.logger.Error("Failed to generate refresh token", zap.Error(err), zap.String("userID", user.GetID().String()))
		return nil, common.ErrInternalServer.WithDetails("Could not generate refresh token.")
	}

	sessionRow := &Session{
		BaseModel:        common.BaseModel{ID: sessionID},
		UserID:           user.GetID(),
		RefreshTokenHash: HashToken(refreshToken),
		UserAgent:        client.UserAgent,
		IPAddress:        client.IPAddress,
		ExpiresAt:        refreshExpiresAt,
	}
	if err := s.repo.Create(ctx, sessionRow); err != nil {
		s.logger.Error("Failed to persist session", zap.Error(err), zap.String("userID", user.GetID().String()))
		return nil, common.ErrInternalServer.WithDetails("Could not create session.")
	}

	accessToken, accessExpiresAt, err := s.tokenService.GenerateAccessToken(user, sessionID)
	if err != nil {
		s.logger.Error("Failed to generate access token", zap.Error(err), zap.String("userID", user.GetID().String()))
		return nil, common.ErrInternalServer.WithDetails("Could not generate access token.")
	}

	s.logger.Info("Session issued",
		zap.String("sessionID", sessionID.String()),
		zap.String("userID", user.GetID().String()))

	return &shared.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    accessExpiresAt,
		TokenType:    "Bearer",
	}, nil
}

// Refresh validates and rotates a refresh token. A token whose signature or
// expiry fails verification is unauthorized; a verified token that does not
// match a live session is forbidden. Presenting a superseded token revokes
// the whole session lineage.
func (s *ServiceImplementation) Refresh(ctx context.Context, rawRefreshToken string) (*shared.TokenResponse, error) {
	claims, err := s.tokenService.ParseRefreshToken(rawRefreshToken)
	if err != nil {
		s.logger.Info("Refresh token failed verification", zap.Error(err))
		return nil, common.ErrUnauthorized.WithMessage("Invalid or expired refresh token.")
	}
	if claims.SessionID == uuid.Nil {
		return nil, common.ErrUnauthorized.WithMessage("Invalid or expired refresh token.")
	}

	sessionRow, err := s.repo.FindByID(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			s.logger.Warn("Refresh token references unknown session",
				zap.String("sessionID", claims.SessionID.String()))
			return nil, common.ErrForbidden.WithMessage("Session is no longer valid.")
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	now := time.Now()
	if !sessionRow.IsActive(now) {
		s.logger.Warn("Refresh attempted on inactive session",
			zap.String("sessionID", sessionRow.ID.String()),
			zap.Bool("revoked", sessionRow.RevokedAt != nil))
		return nil, common.ErrForbidden.WithMessage("Session is no longer valid.")
	}

	presentedHash := HashToken(rawRefreshToken)
	if subtle.ConstantTimeCompare([]byte(presentedHash), []byte(sessionRow.RefreshTokenHash)) != 1 {
		// A superseded token from this lineage resurfaced. Treat it as
		// replay and kill the session.
		s.logger.Warn("Superseded refresh token presented, revoking session",
			zap.String("sessionID", sessionRow.ID.String()),
			zap.String("userID", sessionRow.UserID.String()))
		if revokeErr := s.repo.Revoke(ctx, sessionRow.ID, now); revokeErr != nil && !errors.Is(revokeErr, common.ErrNotFound) {
			s.logger.Error("Failed to revoke session after replay detection", zap.Error(revokeErr))
		}
		return nil, common.ErrForbidden.WithMessage("Session is no longer valid.")
	}

	usr, err := s.users.GetUserByID(ctx, sessionRow.UserID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			s.logger.Warn("Session user no longer exists, revoking",
				zap.String("sessionID", sessionRow.ID.String()))
			if revokeErr := s.repo.Revoke(ctx, sessionRow.ID, now); revokeErr != nil && !errors.Is(revokeErr, common.ErrNotFound) {
				s.logger.Error("Failed to revoke orphaned session", zap.Error(revokeErr))
			}
			return nil, common.ErrForbidden.WithMessage("Session is no longer valid.")
		}
		return nil, fmt.Errorf("failed to load session user: %w", err)
	}

	newRefreshToken, newRefreshExpiresAt, err := s.tokenService.GenerateRefreshToken(usr, sessionRow.ID)
	if err != nil {
		s.logger.Error("Failed to rotate refresh token", zap.Error(err), zap.String("sessionID", sessionRow.ID.String()))
		return nil, common.ErrInternalServer.WithDetails("Could not rotate refresh token.")
	}

	sessionRow.RefreshTokenHash = HashToken(newRefreshToken)
	sessionRow.Rotations++
	sessionRow.ExpiresAt = newRefreshExpiresAt
	if err := s.repo.Update(ctx, sessionRow); err != nil {
		s.logger.Error("Failed to persist rotated session", zap.Error(err), zap.String("sessionID", sessionRow.ID.String()))
		return nil, common.ErrInternalServer.WithDetails("Could not rotate session.")
	}

	accessToken, accessExpiresAt, err := s.tokenService.GenerateAccessToken(usr, sessionRow.ID)
	if err != nil {
		s.logger.Error("Failed to generate access token on refresh", zap.Error(err), zap.String("sessionID", sessionRow.ID.String()))
		return nil, common.ErrInternalServer.WithDetails("Could not generate access token.")
	}

	s.logger.Info("Session refreshed",
		zap.String("sessionID", sessionRow.ID.String()),
		zap.Int("rotations", sessionRow.Rotations))

	return &shared.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: newRefreshToken,
		ExpiresAt:    accessExpiresAt,
		TokenType:    "Bearer",
	}, nil
}

// Revoke ends a single session. Used by logout.
func (s *ServiceImplementation) Revoke(ctx context.Context, sessionID uuid.UUID) error {
	if err := s.repo.Revoke(ctx, sessionID, time.Now()); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			// Logging out an already-dead session is not an error for the caller.
			s.logger.Debug("Revoke on missing or already revoked session", zap.String("sessionID", sessionID.String()))
			return nil
		}
		return err
	}
	s.logger.Info("Session revoked", zap.String("sessionID", sessionID.String()))
	return nil
}

// RevokeAllForUser ends every live session a user has.
func (s *ServiceImplementation) RevokeAllForUser(ctx context.Context, userID uuid.UUID) error {
	if err := s.repo.RevokeAllForUser(ctx, userID, time.Now()); err != nil {
		return err
	}
	s.logger.Info("All sessions revoked for user", zap.String("userID", userID.String()))
	return nil
}

// PurgeExpired deletes sessions whose lifetime has ended. Called from the
// background job runner.
func (s *ServiceImplementation) PurgeExpired(ctx context.Context) (int64, error) {
	deleted, err := s.repo.DeleteExpiredBefore(ctx, time.Now())
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		s.logger.Info("Expired sessions purged", zap.Int64("count", deleted))
	}
	return deleted, nil
}
