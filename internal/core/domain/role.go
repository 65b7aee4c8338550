package domain

import "fmt"

// Role is the closed set of actor roles on the platform.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleRecruiter Role = "recruiter"
	RoleCandidate Role = "candidate"

	// RoleAny is only meaningful as a requirement: any authenticated actor.
	RoleAny Role = "*"
)

// Roles lists every concrete role.
var Roles = []Role{RoleAdmin, RoleRecruiter, RoleCandidate}

// ParseRole returns the Role for s or ErrInvalidRole.
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleAdmin, RoleRecruiter, RoleCandidate:
		return r, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
}

// Valid reports whether r is one of the concrete roles.
func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

// RequiresOnboarding reports whether actors of this role must finish the
// onboarding step before most protected actions. Admins have none.
func (r Role) RequiresOnboarding() bool {
	return r == RoleRecruiter || r == RoleCandidate
}

func (r Role) String() string { return string(r) }
