package domain

import "fmt"

// Role is the closed set of roles a user may hold. A user has exactly one role.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Roles returns the set of valid user roles.
func Roles() []Role {
	return []Role{RoleUser, RoleAdmin}
}

// ParseRole converts a raw string into a Role, rejecting unknown values.
func ParseRole(raw string) (Role, error) {
	switch Role(raw) {
	case RoleUser:
		return RoleUser, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", fmt.Errorf("unknown role %q", raw)
	}
}
