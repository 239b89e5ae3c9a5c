// File: internal/auth/handler.go
package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"rent_a_ride_backend/internal/common"
	"rent_a_ride_backend/internal/firebase"
	"rent_a_ride_backend/internal/session"
	"rent_a_ride_backend/internal/shared"
	"rent_a_ride_backend/internal/user"
)

// Handler struct holds dependencies for auth handlers. It orchestrates the
// user service (accounts) and the session service (tokens) so every sign-in
// path produces a tracked session.
type Handler struct {
	userService     user.Service
	sessionService  session.Service
	oauthService    OAuthService
	firebaseService *firebase.FirebaseService
	blocklist       TokenBlocklistService
	logger          *zap.Logger
}

// NewHandler creates a new auth handler.
func NewHandler(
	userService user.Service,
	sessionService session.Service,
	oauthService OAuthService,
	firebaseService *firebase.FirebaseService,
	blocklist TokenBlocklistService,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		userService:     userService,
		sessionService:  sessionService,
		oauthService:    oauthService,
		firebaseService: firebaseService,
		blocklist:       blocklist,
		logger:          logger,
	}
}

// RegisterRoutes sets up the routes for authentication operations.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/signup", h.signUp)
		authGroup.POST("/signin", h.signIn)
		authGroup.POST("/refresh-token", h.refreshToken)
		authGroup.POST("/google", h.googleSignIn)
		authGroup.GET("/google/login", h.googleLogin)
		authGroup.GET("/google/callback", h.googleCallback)

		authGroup.POST("/logout", authMW, h.logout)
	}
}

func clientInfoFromRequest(c *gin.Context) session.ClientInfo {
	return session.ClientInfo{
		UserAgent: c.Request.UserAgent(),
		IPAddress: c.ClientIP(),
	}
}

func (h *Handler) signUp(c *gin.Context) {
	var req user.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Sign-up: Invalid request body", zap.Error(err))
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}

	newUser, err := h.userService.Register(c.Request.Context(), req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}

	tokenResponse, err := h.sessionService.Issue(c.Request.Context(), newUser, clientInfoFromRequest(c))
	if err != nil {
		common.RespondWithError(c, err)
		return
	}

	response := gin.H{
		"user":  user.ToUserResponse(newUser),
		"token": tokenResponse,
	}
	common.RespondCreated(c, "User registered successfully.", response)
}

func (h *Handler) signIn(c *gin.Context) {
	var req SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Sign-in: Invalid request body", zap.Error(err))
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}

	loggedInUser, err := h.userService.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}

	tokenResponse, err := h.sessionService.Issue(c.Request.Context(), loggedInUser, clientInfoFromRequest(c))
	if err != nil {
		common.RespondWithError(c, err)
		return
	}

	response := gin.H{
		"user":  user.ToUserResponse(loggedInUser),
		"token": tokenResponse,
	}
	common.RespondOK(c, "Login successful.", response)
}

func (h *Handler) refreshToken(c *gin.Context) {
	var req RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Refresh token: Invalid request body", zap.Error(err))
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}

	tokenResponse, err := h.sessionService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Token refreshed successfully.", tokenResponse)
}

func (h *Handler) logout(c *gin.Context) {
	sessionID := common.GetSessionIDFromContext(c)
	if sessionID != uuid.Nil {
		if err := h.sessionService.Revoke(c.Request.Context(), sessionID); err != nil {
			h.logger.Error("Failed to revoke session during logout", zap.Error(err),
				zap.String("sessionID", sessionID.String()))
			common.RespondWithError(c, common.ErrInternalServer.WithDetails("Could not log out."))
			return
		}
	}

	// Kill the presented access token too; it would otherwise stay valid
	// until its natural expiry.
	jti := common.GetTokenIDFromContext(c)
	if jti != "" {
		expiresAt := time.Now().Add(time.Hour)
		if val, exists := c.Get(common.TokenExpiryKey); exists {
			if exp, ok := val.(time.Time); ok {
				expiresAt = exp
			}
		}
		if err := h.blocklist.AddToBlocklist(c.Request.Context(), jti, expiresAt); err != nil {
			h.logger.Error("Failed to blocklist access token during logout", zap.Error(err))
		}
	}

	common.RespondOK(c, "Logged out successfully.", nil)
}

// googleSignIn accepts a Firebase-issued Google ID token from the frontend,
// verifies it server-side, and signs the user in with a full session.
func (h *Handler) googleSignIn(c *gin.Context) {
	if h.firebaseService == nil {
		common.RespondWithError(c, common.ErrServiceUnavailable.WithDetails("Google sign-in is not configured."))
		return
	}

	var req GoogleSignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Google sign-in: Invalid request body", zap.Error(err))
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}

	token, err := h.firebaseService.VerifyIDToken(c.Request.Context(), req.IDToken)
	if err != nil {
		common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Invalid Google ID token."))
		return
	}

	profile := shared.OAuthUserProfile{
		Provider:   string(ProviderGoogle),
		ProviderID: token.UID,
	}
	if email, ok := token.Claims["email"].(string); ok {
		profile.Email = strings.ToLower(email)
	}
	if verified, ok := token.Claims["email_verified"].(bool); ok {
		profile.EmailVerified = verified
	}
	if name, ok := token.Claims["name"].(string); ok {
		profile.Name = name
	}
	if picture, ok := token.Claims["picture"].(string); ok {
		profile.PictureURL = picture
	}

	appUser, _, err := h.userService.FindOrCreateOrLinkOAuthUser(c.Request.Context(), profile)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}

	tokenResponse, err := h.sessionService.Issue(c.Request.Context(), appUser, clientInfoFromRequest(c))
	if err != nil {
		common.RespondWithError(c, err)
		return
	}

	response := gin.H{
		"user":  user.ToUserResponse(appUser),
		"token": tokenResponse,
	}
	common.RespondOK(c, "Google login successful.", response)
}

func (h *Handler) googleLogin(c *gin.Context) {
	authURL, err := h.oauthService.GetGoogleLoginURL(c)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	c.Redirect(http.StatusTemporaryRedirect, authURL)
}

func (h *Handler) googleCallback(c *gin.Context) {
	code := c.Query("code")
	state := c.Query("state")
	if errorParam := c.Query("error"); errorParam != "" {
		errorDesc := c.Query("error_description")
		h.logger.Error("Google OAuth callback error", zap.String("error", errorParam), zap.String("description", errorDesc))
		common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Google login failed: "+errorDesc))
		return
	}

	if code == "" || state == "" {
		h.logger.Warn("Google callback missing code or state")
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Missing authorization code or state from Google."))
		return
	}

	appUser, err := h.oauthService.HandleGoogleCallback(c, code, state)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}

	tokenResponse, err := h.sessionService.Issue(c.Request.Context(), appUser, clientInfoFromRequest(c))
	if err != nil {
		common.RespondWithError(c, err)
		return
	}

	response := gin.H{
		"user":  user.ToUserResponse(appUser),
		"token": tokenResponse,
	}
	common.RespondOK(c, "Google login processed successfully.", response)
}
