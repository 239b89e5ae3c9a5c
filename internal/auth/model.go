// File: internal/auth/model.go
package auth

// SignInRequest defines the structure for credential sign-in requests.
type SignInRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshTokenRequest defines the structure for refresh token requests.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// GoogleSignInRequest carries the Firebase-issued Google ID token from the
// frontend.
type GoogleSignInRequest struct {
	IDToken string `json:"id_token" binding:"required"`
}
