package session

// IsValidRole checks if the role is one of the predefined valid roles
func IsValidRole(r UserRole) bool {
	switch r {
	case RoleUser, RoleAdmin, RoleTechnician:
		return true
	default:
		return false
	}
}

// ParseRole safely parses a string into a UserRole type
func ParseRole(roleStr string) (UserRole, bool) {
	role := UserRole(roleStr)
	return role, IsValidRole(role)
}

// AllRoles returns all predefined roles
func AllRoles() []UserRole {
	return []UserRole{RoleUser, RoleAdmin, RoleTechnician}
}

// IsValidProvider checks if the provider tag is part of the closed set
func IsValidProvider(p ProviderKind) bool {
	switch p {
	case ProviderEmail, ProviderGoogle, ProviderFacebook:
		return true
	default:
		return false
	}
}

// SocialScopes returns the OAuth scopes requested for an interactive
// social sign-in with the given provider.
func SocialScopes(kind ProviderKind) []string {
	switch kind {
	case ProviderGoogle:
		return []string{"email", "profile"}
	case ProviderFacebook:
		return []string{"email"}
	default:
		return nil
	}
}
