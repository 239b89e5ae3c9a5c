// File: internal/user/model.go
package user

import (
	"time"

	"github.com/google/uuid"

	"rent_a_ride_backend/internal/common"
)

// User represents the user model in the database.
type User struct {
	common.BaseModel          // Embeds ID, CreatedAt, UpdatedAt
	Username          string  `gorm:"type:varchar(100);not null;uniqueIndex"`
	Email             string  `gorm:"type:varchar(255);not null;uniqueIndex"`
	PasswordHash      *string `gorm:"type:varchar(255)"` // OAuth-only accounts carry an unguessable placeholder hash
	ProfilePictureURL *string `gorm:"type:text"`
	AuthProvider      string  `gorm:"type:varchar(50);not null;default:'email'"`
	ProviderID        *string `gorm:"type:varchar(255);index:idx_auth_provider_provider_id,unique"`
	IsEmailVerified   bool    `gorm:"not null;default:false"`
	Role              string  `gorm:"type:varchar(50);not null;default:'user'"`
	LastLoginAt       *time.Time
}

// TableName specifies the table name for the User model.
func (User) TableName() string {
	return "users"
}

// Sanitize removes sensitive information like the password hash.
func (u *User) Sanitize() {
	u.PasswordHash = nil
}

func (u *User) GetID() uuid.UUID { return u.ID }

func (u *User) GetEmail() string { return u.Email }

func (u *User) GetRole() string { return u.Role }

// --- DTOs for API requests/responses ---

// CreateUserRequest defines the structure for registering a new user.
type CreateUserRequest struct {
	Username string `json:"username" binding:"required,min=2,max=100"`
	Email    string `json:"email" binding:"required,email"`
	// Minimum length is checked by the service, not the binding tag, so a
	// short password yields 400 rather than 422. bcrypt max is 72 bytes.
	Password string `json:"password" binding:"required,max=72"`
}

// UpdateProfileRequest defines the fields a user may change on their profile.
type UpdateProfileRequest struct {
	Username          *string `json:"username,omitempty" binding:"omitempty,min=2,max=100"`
	ProfilePictureURL *string `json:"profile_picture_url,omitempty" binding:"omitempty,url"`
}

// UserResponse defines the structure for user data sent in API responses.
type UserResponse struct {
	ID                uuid.UUID  `json:"id"`
	Username          string     `json:"username"`
	Email             string     `json:"email"`
	ProfilePictureURL *string    `json:"profile_picture_url,omitempty"`
	AuthProvider      string     `json:"auth_provider"`
	IsEmailVerified   bool       `json:"is_email_verified"`
	Role              string     `json:"role"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
	LastLoginAt       *time.Time `json:"last_login_at,omitempty"`
}
