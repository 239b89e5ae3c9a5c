// File: internal/common/context_keys.go
package common

const (
	// AuthorizationHeader is the header name for authorization token
	AuthorizationHeader = "Authorization"
	// AuthorizationTypeBearer is the prefix for Bearer tokens
	AuthorizationTypeBearer = "Bearer"
	// UserIDKey is the context key for storing the authenticated user's ID
	UserIDKey = "userID"
	// UserEmailKey is the context key for storing the authenticated user's email
	UserEmailKey = "userEmail"
	// UserRoleKey is the context key for storing the authenticated user's role
	UserRoleKey = "userRole"
	// SessionIDKey is the context key for storing the session ID of the access token
	SessionIDKey = "sessionID"
	// TokenIDKey is the context key for storing the JWT ID of the access token
	TokenIDKey = "tokenID"
	// TokenExpiryKey is the context key for storing the access token expiry time
	TokenExpiryKey = "tokenExpiry"
)
