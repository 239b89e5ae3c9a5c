// File: internal/common/roles.go
package common

const (
	// RoleUser is the default role assigned on registration.
	RoleUser = "user"
	// RoleVendor identifies partner accounts that list vehicles.
	RoleVendor = "vendor"
	// RoleAdmin identifies back-office accounts.
	RoleAdmin = "admin"
)

// IsValidRole reports whether role is one of the known account roles.
func IsValidRole(role string) bool {
	switch role {
	case RoleUser, RoleVendor, RoleAdmin:
		return true
	}
	return false
}
