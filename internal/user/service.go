// File: internal/user/service.go
package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"rent_a_ride_backend/internal/common"
	"rent_a_ride_backend/internal/config"
	"rent_a_ride_backend/internal/platform/crypto"
	"rent_a_ride_backend/internal/shared"
)

// Service defines the interface for user-related business logic.
type Service interface {
	Register(ctx context.Context, req CreateUserRequest) (*shared.User, error)
	Authenticate(ctx context.Context, email, password string) (*shared.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*shared.User, error)
	GetUserByEmail(ctx context.Context, email string) (*shared.User, error)
	FindOrCreateOrLinkOAuthUser(ctx context.Context, profile shared.OAuthUserProfile) (usr *shared.User, wasCreated bool, err error)
	UpdateProfile(ctx context.Context, id uuid.UUID, req UpdateProfileRequest) (*shared.User, error)
}

// ServiceImplementation implements the user Service interface.
type ServiceImplementation struct {
	repo   Repository
	cfg    *config.Config
	logger *zap.Logger
}

var _ Service = (*ServiceImplementation)(nil)
var _ shared.UserProvider = (*ServiceImplementation)(nil)

// NewService creates a new user service.
func NewService(repo Repository, cfg *config.Config, logger *zap.Logger) *ServiceImplementation {
	return &ServiceImplementation{
		repo:   repo,
		cfg:    cfg,
		logger: logger,
	}
}

// Register creates a new credential-backed user account. Token issuance is
// handled by the auth layer so that a session record is always created
// alongside the refresh token.
func (s *ServiceImplementation) Register(ctx context.Context, req CreateUserRequest) (*shared.User, error) {
	if len(req.Password) < s.cfg.PasswordMinLength {
		return nil, common.ErrBadRequest.WithMessage(
			fmt.Sprintf("Password must be at least %d characters long.", s.cfg.PasswordMinLength))
	}

	// Existence checks keep the response identical whichever field collides.
	if _, err := s.repo.FindByEmail(ctx, req.Email); err == nil {
		return nil, common.ErrBadRequest.WithMessage("User already exists.")
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing user by email: %w", err)
	}
	if _, err := s.repo.FindByUsername(ctx, req.Username); err == nil {
		return nil, common.ErrBadRequest.WithMessage("User already exists.")
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing user by username: %w", err)
	}

	hashedPassword, err := common.HashPassword(req.Password)
	if err != nil {
		s.logger.Error("Failed to hash password during registration", zap.Error(err))
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	dbUser := &User{
		Username:     strings.TrimSpace(req.Username),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: &hashedPassword,
		AuthProvider: "email",
		Role:         common.RoleUser,
	}

	if err := s.repo.Create(ctx, dbUser); err != nil {
		s.logger.Error("Failed to create user in repository", zap.Error(err), zap.String("email", dbUser.Email))
		if apiErr, ok := common.IsAPIError(err); ok && apiErr.StatusCode == common.ErrConflict.StatusCode {
			// A concurrent insert won the race; respond as if the check had caught it.
			return nil, common.ErrBadRequest.WithMessage("User already exists.")
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("User registered successfully", zap.String("userID", dbUser.ID.String()))
	return DBToShared(dbUser), nil
}

// Authenticate verifies the email/password pair. Unknown accounts and wrong
// passwords produce the same generic unauthorized error so the endpoint never
// reveals whether an email is registered.
func (s *ServiceImplementation) Authenticate(ctx context.Context, email, password string) (*shared.User, error) {
	dbUser, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			s.logger.Info("User not found during login", zap.String("email", email))
			return nil, common.ErrUnauthorized.WithMessage("Invalid email or password.")
		}
		s.logger.Error("Error finding user by email during login", zap.Error(err), zap.String("email", email))
		return nil, common.ErrInternalServer.WithDetails("Login failed due to an internal error.")
	}

	if dbUser.PasswordHash == nil || *dbUser.PasswordHash == "" {
		s.logger.Warn("Password login attempted for account without password hash",
			zap.String("userID", dbUser.ID.String()), zap.String("authProvider", dbUser.AuthProvider))
		return nil, common.ErrUnauthorized.WithMessage("Invalid email or password.")
	}

	if !common.CheckPasswordHash(password, *dbUser.PasswordHash) {
		s.logger.Warn("Invalid password attempt", zap.String("userID", dbUser.ID.String()))
		return nil, common.ErrUnauthorized.WithMessage("Invalid email or password.")
	}

	now := time.Now()
	dbUser.LastLoginAt = &now
	if err := s.repo.Update(ctx, dbUser); err != nil {
		// Not critical for authentication, log and proceed.
		s.logger.Error("Failed to update last login time", zap.Error(err), zap.String("userID", dbUser.ID.String()))
	}

	s.logger.Info("User authenticated successfully", zap.String("userID", dbUser.ID.String()))
	return DBToShared(dbUser), nil
}

func (s *ServiceImplementation) GetUserByID(ctx context.Context, id uuid.UUID) (*shared.User, error) {
	dbUser, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			s.logger.Info("User not found by ID", zap.String("userID", id.String()))
		} else {
			s.logger.Error("Error finding user by ID", zap.Error(err), zap.String("userID", id.String()))
		}
		return nil, err
	}
	return DBToShared(dbUser), nil
}

func (s *ServiceImplementation) GetUserByEmail(ctx context.Context, email string) (*shared.User, error) {
	dbUser, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			s.logger.Info("User not found by email", zap.String("email", email))
		} else {
			s.logger.Error("Error finding user by email", zap.Error(err), zap.String("email", email))
		}
		return nil, err
	}
	return DBToShared(dbUser), nil
}

// FindOrCreateOrLinkOAuthUser resolves an OAuth profile to a local account:
// match on provider ID first, then link by verified email, otherwise create
// a new account.
func (s *ServiceImplementation) FindOrCreateOrLinkOAuthUser(ctx context.Context, profile shared.OAuthUserProfile) (*shared.User, bool, error) {
	s.logger.Info("Processing OAuth user profile",
		zap.String("provider", profile.Provider),
		zap.String("providerID", profile.ProviderID),
		zap.String("email", profile.Email),
	)

	dbUser, err := s.repo.FindByProvider(ctx, profile.Provider, profile.ProviderID)
	if err == nil && dbUser != nil {
		now := time.Now()
		dbUser.LastLoginAt = &now
		if profile.PictureURL != "" {
			pictureCopy := profile.PictureURL
			dbUser.ProfilePictureURL = &pictureCopy
		}
		if profile.EmailVerified {
			dbUser.IsEmailVerified = true
		}
		if err := s.repo.Update(ctx, dbUser); err != nil {
			s.logger.Error("Failed to update existing OAuth user profile", zap.Error(err), zap.String("userID", dbUser.ID.String()))
			return nil, false, common.ErrInternalServer.WithDetails("Could not update user profile.")
		}
		return DBToShared(dbUser), false, nil
	}
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		s.logger.Error("Error finding user by provider ID", zap.Error(err),
			zap.String("provider", profile.Provider), zap.String("providerID", profile.ProviderID))
		return nil, false, err
	}

	if profile.Email != "" && profile.EmailVerified {
		emailLower := strings.ToLower(strings.TrimSpace(profile.Email))
		dbUserByEmail, emailErr := s.repo.FindByEmail(ctx, emailLower)

		if emailErr == nil && dbUserByEmail != nil {
			if dbUserByEmail.Role != common.RoleUser {
				// Vendor and admin accounts authenticate with credentials only.
				s.logger.Warn("OAuth sign-in refused for privileged account",
					zap.String("userID", dbUserByEmail.ID.String()),
					zap.String("role", dbUserByEmail.Role))
				return nil, false, common.ErrConflict.WithDetails(
					"This email belongs to a partner account. Please sign in with your password.")
			}
			if dbUserByEmail.AuthProvider != "email" && dbUserByEmail.AuthProvider != profile.Provider {
				s.logger.Warn("User found by email but already linked to a different OAuth provider",
					zap.String("userID", dbUserByEmail.ID.String()),
					zap.String("existingProvider", dbUserByEmail.AuthProvider),
					zap.String("newProvider", profile.Provider))
				return nil, false, common.ErrConflict.WithDetails(
					fmt.Sprintf("This email is already associated with an account using %s.", dbUserByEmail.AuthProvider))
			}
			if dbUserByEmail.AuthProvider == profile.Provider &&
				(dbUserByEmail.ProviderID == nil || *dbUserByEmail.ProviderID != profile.ProviderID) {
				s.logger.Warn("User found by email, same provider, but different provider ID",
					zap.String("userID", dbUserByEmail.ID.String()),
					zap.String("newProviderID", profile.ProviderID))
				return nil, false, common.ErrConflict.WithDetails(
					fmt.Sprintf("This email is already linked to a %s account with a different identity.", profile.Provider))
			}

			s.logger.Info("Linking OAuth identity to existing email user",
				zap.String("userID", dbUserByEmail.ID.String()), zap.String("provider", profile.Provider))

			providerIDCopy := profile.ProviderID
			dbUserByEmail.AuthProvider = profile.Provider
			dbUserByEmail.ProviderID = &providerIDCopy
			dbUserByEmail.IsEmailVerified = true
			if profile.PictureURL != "" && dbUserByEmail.ProfilePictureURL == nil {
				pictureCopy := profile.PictureURL
				dbUserByEmail.ProfilePictureURL = &pictureCopy
			}
			now := time.Now()
			dbUserByEmail.LastLoginAt = &now

			if err := s.repo.Update(ctx, dbUserByEmail); err != nil {
				s.logger.Error("Failed to link OAuth account to existing user by email", zap.Error(err), zap.String("userID", dbUserByEmail.ID.String()))
				return nil, false, common.ErrInternalServer.WithDetails("Could not link OAuth account.")
			}
			return DBToShared(dbUserByEmail), false, nil
		}
		if emailErr != nil && !errors.Is(emailErr, common.ErrNotFound) {
			s.logger.Error("Error finding user by email for OAuth linking", zap.Error(emailErr), zap.String("email", profile.Email))
			return nil, false, emailErr
		}
	}

	if profile.Email == "" {
		return nil, false, common.ErrBadRequest.WithDetails("OAuth profile did not include an email address.")
	}

	s.logger.Info("Creating new user from OAuth profile",
		zap.String("provider", profile.Provider), zap.String("email", profile.Email))

	// OAuth accounts never use the password path; the stored hash is of a
	// random string so the column stays non-null for these rows.
	randomSecret, err := crypto.GenerateSecureRandomString(32)
	if err != nil {
		return nil, false, fmt.Errorf("failed to generate placeholder secret: %w", err)
	}
	placeholderHash, err := common.HashPassword(randomSecret)
	if err != nil {
		return nil, false, fmt.Errorf("failed to hash placeholder secret: %w", err)
	}

	emailLower := strings.ToLower(strings.TrimSpace(profile.Email))
	providerIDCopy := profile.ProviderID
	dbNewUser := &User{
		BaseModel: common.BaseModel{
			ID: uuid.New(),
		},
		Username:        usernameFromProfile(&profile, emailLower),
		Email:           emailLower,
		PasswordHash:    &placeholderHash,
		AuthProvider:    profile.Provider,
		ProviderID:      &providerIDCopy,
		IsEmailVerified: profile.EmailVerified,
		Role:            common.RoleUser,
	}
	now := time.Now()
	dbNewUser.LastLoginAt = &now
	if profile.PictureURL != "" {
		pictureCopy := profile.PictureURL
		dbNewUser.ProfilePictureURL = &pictureCopy
	}

	if err := s.repo.Create(ctx, dbNewUser); err != nil {
		s.logger.Error("Failed to create new OAuth user in repository", zap.Error(err), zap.String("email", profile.Email))
		if apiErr, ok := common.IsAPIError(err); ok {
			return nil, false, apiErr
		}
		return nil, false, common.ErrInternalServer.WithDetails("Could not create new user account.")
	}

	s.logger.Info("New OAuth user created successfully", zap.String("userID", dbNewUser.ID.String()))
	return DBToShared(dbNewUser), true, nil
}

// UpdateProfile applies user-editable profile changes.
func (s *ServiceImplementation) UpdateProfile(ctx context.Context, id uuid.UUID, req UpdateProfileRequest) (*shared.User, error) {
	dbUser, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Username != nil {
		dbUser.Username = strings.TrimSpace(*req.Username)
	}
	if req.ProfilePictureURL != nil {
		dbUser.ProfilePictureURL = req.ProfilePictureURL
	}

	if err := s.repo.Update(ctx, dbUser); err != nil {
		s.logger.Error("Failed to update user profile", zap.Error(err), zap.String("userID", id.String()))
		return nil, err
	}

	s.logger.Info("User profile updated", zap.String("userID", id.String()))
	return DBToShared(dbUser), nil
}

func usernameFromProfile(profile *shared.OAuthUserProfile, email string) string {
	name := strings.TrimSpace(profile.Name)
	if name == "" {
		if at := strings.Index(email, "@"); at > 0 {
			name = email[:at]
		} else {
			name = email
		}
	}
	// Suffix with part of the provider ID to keep usernames unique without
	// a retry loop on the unique index.
	suffix := profile.ProviderID
	if len(suffix) > 6 {
		suffix = suffix[len(suffix)-6:]
	}
	return fmt.Sprintf("%s-%s", name, suffix)
}
