// File: internal/auth/interfaces.go
package auth

import (
	"context"

	"github.com/google/uuid"

	"rent_a_ride_backend/internal/shared"
)

// OAuthUserProvider defines the user operations needed by the OAuth service
// and the Google sign-in handler. Implemented by user.ServiceImplementation.
type OAuthUserProvider interface {
	FindOrCreateOrLinkOAuthUser(ctx context.Context, profile shared.OAuthUserProfile) (usr *shared.User, wasCreated bool, err error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*shared.User, error)
}
