package domain

import "strings"

// Role is the closed set of account roles.
type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleNormal Role = "NORMAL"
)

// ParseRole accepts the literal role names, case-insensitively. Anything else yields ok=false.
func ParseRole(raw string) (Role, bool) {
	switch Role(strings.ToUpper(strings.TrimSpace(raw))) {
	case RoleAdmin:
		return RoleAdmin, true
	case RoleNormal:
		return RoleNormal, true
	default:
		return "", false
	}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleNormal:
		return true
	default:
		return false
	}
}

// Identity is the authenticated caller as carried by the session token.
type Identity struct {
	UserID   int64
	Username string
	Role     Role
	Area     string
}

// IsAdmin reports whether the identity holds the ADMIN role.
func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == RoleAdmin
}

// IsNormal reports whether the identity holds the NORMAL role.
func (i *Identity) IsNormal() bool {
	return i != nil && i.Role == RoleNormal
}
