// File: internal/auth/oauth_service.go
package auth

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"rent_a_ride_backend/internal/common"
	"rent_a_ride_backend/internal/config"
	"rent_a_ride_backend/internal/shared"
)

// OAuthProvider represents an OAuth provider type.
type OAuthProvider string

const (
	ProviderGoogle OAuthProvider = "google"
)

// OAuthService runs the server-side Google authorization-code flow. Token
// issuance stays with the session service so both sign-in paths share one
// session model.
type OAuthService interface {
	GetGoogleLoginURL(c *gin.Context) (string, error)
	HandleGoogleCallback(c *gin.Context, code string, state string) (*shared.User, error)
}

type oauthService struct {
	cfg               *config.Config
	oauthUserProvider OAuthUserProvider
	logger            *zap.Logger
}

// NewOAuthService creates a new OAuth service.
func NewOAuthService(
	cfg *config.Config,
	oauthUserProvider OAuthUserProvider,
	logger *zap.Logger,
) OAuthService {
	return &oauthService{
		cfg:               cfg,
		oauthUserProvider: oauthUserProvider,
		logger:            logger.Named("OAuthService"),
	}
}

// GetGoogleLoginURL generates the URL for Google OAuth login and stores the
// anti-CSRF state in a cookie.
func (s *oauthService) GetGoogleLoginURL(c *gin.Context) (string, error) {
	state, err := generateAndSetOAuthState(c, s.cfg)
	if err != nil {
		s.logger.Error("Failed to generate OAuth state for Google", zap.Error(err))
		return "", common.ErrInternalServer.WithDetails("Could not initiate Google login.")
	}
	googleCfg := getGoogleOAuthConfig(s.cfg)
	authURL := googleCfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	s.logger.Info("Generated Google login URL")
	return authURL, nil
}

// HandleGoogleCallback processes the callback from Google and resolves the
// profile to a local account.
func (s *oauthService) HandleGoogleCallback(c *gin.Context, code string, state string) (*shared.User, error) {
	storedState, err := getOAuthCookie(c, s.cfg, s.cfg.OAuthStateCookieName)
	if err != nil {
		s.logger.Error("Failed to get stored OAuth state for Google callback", zap.Error(err))
		return nil, common.ErrBadRequest.WithDetails("Invalid session or state mismatch.")
	}
	if state != storedState {
		s.logger.Error("Google OAuth state mismatch")
		return nil, common.ErrBadRequest.WithDetails("OAuth state mismatch. Possible CSRF attack.")
	}

	googleCfg := getGoogleOAuthConfig(s.cfg)
	ctx := context.WithValue(c.Request.Context(), oauth2.HTTPClient, http.DefaultClient)

	token, err := googleCfg.Exchange(ctx, code)
	if err != nil {
		s.logger.Error("Failed to exchange Google auth code for token", zap.Error(err))
		return nil, common.ErrServiceUnavailable.WithDetails("Could not exchange Google auth code.")
	}
	if !token.Valid() {
		s.logger.Error("Google token received is invalid")
		return nil, common.ErrServiceUnavailable.WithDetails("Received invalid token from Google.")
	}

	client := googleCfg.Client(ctx, token)
	userInfoResp, err := client.Get(GoogleUserInfoURL)
	if err != nil {
		s.logger.Error("Failed to fetch user info from Google", zap.Error(err))
		return nil, common.ErrServiceUnavailable.WithDetails("Could not fetch user info from Google.")
	}
	defer userInfoResp.Body.Close()

	if userInfoResp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(userInfoResp.Body)
		s.logger.Error("Google user info request failed",
			zap.Int("status", userInfoResp.StatusCode),
			zap.String("body", string(bodyBytes)))
		return nil, common.ErrServiceUnavailable.WithDetails("Google user info request failed.")
	}

	var googleUser struct {
		Sub           string `json:"sub"`
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
		Name          string `json:"name"`
		Picture       string `json:"picture"`
	}
	if err := json.NewDecoder(userInfoResp.Body).Decode(&googleUser); err != nil {
		s.logger.Error("Failed to decode Google user info", zap.Error(err))
		return nil, common.ErrInternalServer.WithDetails("Could not process Google user information.")
	}

	userProfile := shared.OAuthUserProfile{
		Provider:      string(ProviderGoogle),
		ProviderID:    googleUser.Sub,
		Email:         strings.ToLower(googleUser.Email),
		Name:          googleUser.Name,
		PictureURL:    googleUser.Picture,
		EmailVerified: googleUser.EmailVerified,
	}

	appUser, _, err := s.oauthUserProvider.FindOrCreateOrLinkOAuthUser(c.Request.Context(), userProfile)
	if err != nil {
		s.logger.Error("Failed to find or create user from Google profile", zap.Error(err))
		if _, ok := common.IsAPIError(err); ok {
			return nil, err
		}
		return nil, common.ErrInternalServer.WithDetails("Failed to process user account after Google login.")
	}

	s.logger.Info("Google OAuth login successful",
		zap.String("userID", appUser.ID.String()),
		zap.String("email", appUser.Email))
	return appUser, nil
}
