package model

import "fmt"

// Role is a coarse identity classification with a fixed dominance ordering.
type Role string

const (
	RoleClient   Role = "client"
	RoleEmployee Role = "employee"
	RoleAdmin    Role = "admin"
)

// Roles lists every known role. The set is closed; adding a role means
// extending the hierarchy closure as well.
var Roles = []Role{RoleClient, RoleEmployee, RoleAdmin}

// ParseRole converts a stored or transmitted string into a Role.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleClient, RoleEmployee, RoleAdmin:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}
