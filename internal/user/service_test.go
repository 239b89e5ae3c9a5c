package user

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"rent_a_ride_backend/internal/common"
	"rent_a_ride_backend/internal/config"
	"rent_a_ride_backend/internal/shared"
)

// mockRepository implements Repository with per-test function fields.
type mockRepository struct {
	createFunc         func(ctx context.Context, user *User) error
	findByEmailFunc    func(ctx context.Context, email string) (*User, error)
	findByUsernameFunc func(ctx context.Context, username string) (*User, error)
	findByIDFunc       func(ctx context.Context, id uuid.UUID) (*User, error)
	updateFunc         func(ctx context.Context, user *User) error
	findByProviderFunc func(ctx context.Context, authProvider, providerID string) (*User, error)
}

func (m *mockRepository) Create(ctx context.Context, user *User) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, user)
	}
	return nil
}

func (m *mockRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	if m.findByEmailFunc != nil {
		return m.findByEmailFunc(ctx, email)
	}
	return nil, common.ErrNotFound
}

func (m *mockRepository) FindByUsername(ctx context.Context, username string) (*User, error) {
	if m.findByUsernameFunc != nil {
		return m.findByUsernameFunc(ctx, username)
	}
	return nil, common.ErrNotFound
}

func (m *mockRepository) FindByID(ctx context.Context, id uuid.UUID) (*User, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, common.ErrNotFound
}

func (m *mockRepository) Update(ctx context.Context, user *User) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, user)
	}
	return nil
}

func (m *mockRepository) FindByProvider(ctx context.Context, authProvider, providerID string) (*User, error) {
	if m.findByProviderFunc != nil {
		return m.findByProviderFunc(ctx, authProvider, providerID)
	}
	return nil, common.ErrNotFound
}

func newTestService(repo Repository) *ServiceImplementation {
	logger := zap.NewNop()
	cfg := &config.Config{PasswordMinLength: 4}
	return NewService(repo, cfg, logger)
}

func existingUser(email string) *User {
	hash, _ := common.HashPassword("correct-password")
	return &User{
		BaseModel:    common.BaseModel{ID: uuid.New()},
		Username:     "existing",
		Email:        email,
		PasswordHash: &hash,
		AuthProvider: "email",
		Role:         common.RoleUser,
	}
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("creates user with hashed password", func(t *testing.T) {
		var created *User
		repo := &mockRepository{
			createFunc: func(ctx context.Context, user *User) error {
				created = user
				return nil
			},
		}
		svc := newTestService(repo)

		usr, err := svc.Register(ctx, CreateUserRequest{
			Username: "alice",
			Email:    "Alice@Example.com",
			Password: "secret",
		})
		require.NoError(t, err)
		require.NotNil(t, created)
		assert.Equal(t, "alice@example.com", created.Email)
		assert.Equal(t, common.RoleUser, created.Role)
		require.NotNil(t, created.PasswordHash)
		assert.True(t, common.CheckPasswordHash("secret", *created.PasswordHash))
		assert.NotEqual(t, "secret", *created.PasswordHash)
		assert.Equal(t, "alice@example.com", usr.Email)
	})

	t.Run("duplicate email is a bad request", func(t *testing.T) {
		repo := &mockRepository{
			findByEmailFunc: func(ctx context.Context, email string) (*User, error) {
				return existingUser(email), nil
			},
		}
		svc := newTestService(repo)

		_, err := svc.Register(ctx, CreateUserRequest{Username: "bob", Email: "taken@example.com", Password: "secret"})
		require.Error(t, err)
		apiErr, ok := common.IsAPIError(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
		assert.Equal(t, "User already exists.", apiErr.Message)
	})

	t.Run("duplicate username matches duplicate email response", func(t *testing.T) {
		repo := &mockRepository{
			findByUsernameFunc: func(ctx context.Context, username string) (*User, error) {
				return existingUser("other@example.com"), nil
			},
		}
		svc := newTestService(repo)

		_, err := svc.Register(ctx, CreateUserRequest{Username: "existing", Email: "fresh@example.com", Password: "secret"})
		require.Error(t, err)
		apiErr, ok := common.IsAPIError(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
		assert.Equal(t, "User already exists.", apiErr.Message)
	})

	t.Run("short password rejected", func(t *testing.T) {
		svc := newTestService(&mockRepository{})

		_, err := svc.Register(ctx, CreateUserRequest{Username: "carol", Email: "carol@example.com", Password: "abc"})
		require.Error(t, err)
		apiErr, ok := common.IsAPIError(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	})

	t.Run("concurrent insert conflict maps to bad request", func(t *testing.T) {
		repo := &mockRepository{
			createFunc: func(ctx context.Context, user *User) error {
				return common.ErrConflict.WithDetails("User with this email already exists.")
			},
		}
		svc := newTestService(repo)

		_, err := svc.Register(ctx, CreateUserRequest{Username: "dave", Email: "dave@example.com", Password: "secret"})
		require.Error(t, err)
		apiErr, ok := common.IsAPIError(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
		assert.Equal(t, "User already exists.", apiErr.Message)
	})
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()

	t.Run("valid credentials", func(t *testing.T) {
		repo := &mockRepository{
			findByEmailFunc: func(ctx context.Context, email string) (*User, error) {
				return existingUser(email), nil
			},
		}
		svc := newTestService(repo)

		usr, err := svc.Authenticate(ctx, "known@example.com", "correct-password")
		require.NoError(t, err)
		assert.Equal(t, "known@example.com", usr.Email)
	})

	t.Run("unknown email and wrong password are indistinguishable", func(t *testing.T) {
		unknownRepo := &mockRepository{}
		wrongPassRepo := &mockRepository{
			findByEmailFunc: func(ctx context.Context, email string) (*User, error) {
				return existingUser(email), nil
			},
		}

		_, errUnknown := newTestService(unknownRepo).Authenticate(ctx, "nobody@example.com", "whatever")
		_, errWrongPass := newTestService(wrongPassRepo).Authenticate(ctx, "known@example.com", "not-the-password")

		require.Error(t, errUnknown)
		require.Error(t, errWrongPass)

		apiErrUnknown, ok := common.IsAPIError(errUnknown)
		require.True(t, ok)
		apiErrWrongPass, ok := common.IsAPIError(errWrongPass)
		require.True(t, ok)

		assert.Equal(t, http.StatusUnauthorized, apiErrUnknown.StatusCode)
		assert.Equal(t, http.StatusUnauthorized, apiErrWrongPass.StatusCode)
		assert.Equal(t, apiErrUnknown.Message, apiErrWrongPass.Message)
	})

	t.Run("account without password hash is unauthorized", func(t *testing.T) {
		repo := &mockRepository{
			findByEmailFunc: func(ctx context.Context, email string) (*User, error) {
				usr := existingUser(email)
				usr.PasswordHash = nil
				usr.AuthProvider = "google"
				return usr, nil
			},
		}
		svc := newTestService(repo)

		_, err := svc.Authenticate(ctx, "oauth@example.com", "anything")
		require.Error(t, err)
		apiErr, ok := common.IsAPIError(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	})
}

func TestFindOrCreateOrLinkOAuthUser(t *testing.T) {
	ctx := context.Background()

	profile := shared.OAuthUserProfile{
		Provider:      "google",
		ProviderID:    "google-uid-123456",
		Email:         "oauth@example.com",
		Name:          "OAuth User",
		EmailVerified: true,
	}

	t.Run("creates new account with placeholder password", func(t *testing.T) {
		var created *User
		repo := &mockRepository{
			createFunc: func(ctx context.Context, user *User) error {
				created = user
				return nil
			},
		}
		svc := newTestService(repo)

		usr, wasCreated, err := svc.FindOrCreateOrLinkOAuthUser(ctx, profile)
		require.NoError(t, err)
		assert.True(t, wasCreated)
		require.NotNil(t, created)
		assert.Equal(t, "google", created.AuthProvider)
		require.NotNil(t, created.ProviderID)
		assert.Equal(t, profile.ProviderID, *created.ProviderID)
		require.NotNil(t, created.PasswordHash)
		assert.NotEmpty(t, *created.PasswordHash)
		assert.Equal(t, "oauth@example.com", usr.Email)
	})

	t.Run("links verified email to existing credential account", func(t *testing.T) {
		existing := existingUser("oauth@example.com")
		var updated *User
		repo := &mockRepository{
			findByEmailFunc: func(ctx context.Context, email string) (*User, error) {
				return existing, nil
			},
			updateFunc: func(ctx context.Context, user *User) error {
				updated = user
				return nil
			},
		}
		svc := newTestService(repo)

		_, wasCreated, err := svc.FindOrCreateOrLinkOAuthUser(ctx, profile)
		require.NoError(t, err)
		assert.False(t, wasCreated)
		require.NotNil(t, updated)
		assert.Equal(t, "google", updated.AuthProvider)
		require.NotNil(t, updated.ProviderID)
		assert.Equal(t, profile.ProviderID, *updated.ProviderID)
		assert.True(t, updated.IsEmailVerified)
	})

	t.Run("privileged account email conflicts without a write", func(t *testing.T) {
		vendor := existingUser("oauth@example.com")
		vendor.Role = common.RoleVendor
		repo := &mockRepository{
			findByEmailFunc: func(ctx context.Context, email string) (*User, error) {
				return vendor, nil
			},
			updateFunc: func(ctx context.Context, user *User) error {
				t.Fatal("update must not be called on conflict")
				return nil
			},
			createFunc: func(ctx context.Context, user *User) error {
				t.Fatal("create must not be called on conflict")
				return nil
			},
		}
		svc := newTestService(repo)

		_, _, err := svc.FindOrCreateOrLinkOAuthUser(ctx, profile)
		require.Error(t, err)
		apiErr, ok := common.IsAPIError(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
	})

	t.Run("unverified email never links", func(t *testing.T) {
		existing := existingUser("oauth@example.com")
		unverified := profile
		unverified.EmailVerified = false

		var created *User
		repo := &mockRepository{
			findByEmailFunc: func(ctx context.Context, email string) (*User, error) {
				return existing, nil
			},
			createFunc: func(ctx context.Context, user *User) error {
				created = user
				return common.ErrConflict.WithDetails("User with this email already exists.")
			},
		}
		svc := newTestService(repo)

		_, _, err := svc.FindOrCreateOrLinkOAuthUser(ctx, unverified)
		require.Error(t, err)
		// The create path was attempted instead of silently linking.
		require.NotNil(t, created)
		assert.False(t, created.IsEmailVerified)
	})
}
