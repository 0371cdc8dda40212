// Package identity holds the role model and the user profile shared by the
// session, guard and authorization layers. Everything here is derived from
// unverified client-side data; the backend remains the authority on all of it.
package identity

import "strings"

// Role is the privilege tier of the current identity.
type Role string

const (
	RoleStudent    Role = "STUDENT"
	RoleAdmin      Role = "ADMIN"
	RoleSuperAdmin Role = "SUPER_ADMIN"
)

// roleLevels orders roles by privilege. Unknown roles have level 0 and
// satisfy nothing.
var roleLevels = map[Role]int{
	RoleStudent:    1,
	RoleAdmin:      2,
	RoleSuperAdmin: 3,
}

// ParseRole normalizes a role claim. Comparison is case-insensitive and both
// the SUPER_ADMIN and SUPERADMIN spellings seen across backend versions are
// accepted. ok is false for anything outside the closed enumeration.
func ParseRole(s string) (Role, bool) {
	normalized := strings.ToUpper(strings.TrimSpace(s))
	if normalized == "SUPERADMIN" {
		normalized = string(RoleSuperAdmin)
	}
	role := Role(normalized)
	_, ok := roleLevels[role]
	return role, ok
}

// Level returns the privilege level, 0 for unknown roles.
func (r Role) Level() int {
	return roleLevels[r]
}

// Known reports whether the role is part of the closed enumeration.
func (r Role) Known() bool {
	return roleLevels[r] > 0
}

// Satisfies implements the privilege ordering for role checks: SUPER_ADMIN
// passes every check, ADMIN passes ADMIN and STUDENT checks, STUDENT passes
// only STUDENT checks. An anonymous or unknown role satisfies nothing.
func (r Role) Satisfies(required Role) bool {
	if r == RoleSuperAdmin {
		return true
	}
	level := r.Level()
	requiredLevel := required.Level()
	if level == 0 || requiredLevel == 0 {
		return false
	}
	return level >= requiredLevel
}
