// File: internal/user/adapter.go
package user

import (
	"rent_a_ride_backend/internal/shared"
)

// DBToShared converts a GORM user.User model to a shared.User DTO.
func DBToShared(dbUser *User) *shared.User {
	if dbUser == nil {
		return nil
	}
	return &shared.User{
		ID:                dbUser.ID,
		Username:          dbUser.Username,
		Email:             dbUser.Email,
		Role:              dbUser.Role,
		ProfilePictureURL: dbUser.ProfilePictureURL,
		AuthProvider:      dbUser.AuthProvider,
		ProviderID:        dbUser.ProviderID,
		IsEmailVerified:   dbUser.IsEmailVerified,
		CreatedAt:         dbUser.CreatedAt,
		UpdatedAt:         dbUser.UpdatedAt,
		LastLoginAt:       dbUser.LastLoginAt,
	}
}

// ToUserResponse converts a shared.User to a UserResponse DTO.
func ToUserResponse(svUser *shared.User) UserResponse {
	return UserResponse{
		ID:                svUser.ID,
		Username:          svUser.Username,
		Email:             svUser.Email,
		ProfilePictureURL: svUser.ProfilePictureURL,
		AuthProvider:      svUser.AuthProvider,
		IsEmailVerified:   svUser.IsEmailVerified,
		Role:              svUser.Role,
		CreatedAt:         svUser.CreatedAt,
		UpdatedAt:         svUser.UpdatedAt,
		LastLoginAt:       svUser.LastLoginAt,
	}
}
