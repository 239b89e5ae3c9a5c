// File: internal/shared/core.go
package shared

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// User represents a user in the system, decoupled from the persistence model.
type User struct {
	ID                uuid.UUID
	Username          string
	Email             string
	Role              string
	ProfilePictureURL *string
	AuthProvider      string
	ProviderID        *string
	IsEmailVerified   bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
	LastLoginAt       *time.Time
}

// GetID implements UserDataForToken.
func (u *User) GetID() uuid.UUID { return u.ID }

// GetEmail implements UserDataForToken.
func (u *User) GetEmail() string { return u.Email }

// GetRole implements UserDataForToken.
func (u *User) GetRole() string { return u.Role }

// TokenResponse represents the response containing JWT tokens.
type TokenResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	TokenType    string    `json:"token_type"`
}

// OAuthUserProfile holds common profile data from OAuth providers.
type OAuthUserProfile struct {
	Provider      string
	ProviderID    string
	Email         string
	Name          string
	PictureURL    string
	EmailVerified bool
}

// UserDataForToken abstracts the user data needed for token generation.
type UserDataForToken interface {
	GetID() uuid.UUID
	GetEmail() string
	GetRole() string
}

// Claims represents the JWT claims structure. SessionID is only set on
// refresh tokens and on access tokens minted from a session.
type Claims struct {
	UserID    uuid.UUID `json:"user_id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	SessionID uuid.UUID `json:"session_id,omitempty"`
	jwt.RegisteredClaims
}

// TokenService defines the interface for JWT operations.
type TokenService interface {
	GenerateAccessToken(userData UserDataForToken, sessionID uuid.UUID) (string, time.Time, error)
	GenerateRefreshToken(userData UserDataForToken, sessionID uuid.UUID) (string, time.Time, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	ParseRefreshToken(refreshTokenString string) (*Claims, error)
}

// UserProvider defines the user lookups needed outside the user package.
type UserProvider interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*User, error)
}
