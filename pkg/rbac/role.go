package rbac

import (
	"errors"
	"fmt"
)

// Role is an assigned access level stored in profiles.role
type Role string

const (
	RoleStudent    Role = "student"
	RoleStaff      Role = "staff"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"

	// RoleNone means no role could be determined for the subject
	RoleNone Role = ""
)

// ErrNoRoleAssigned indicates the subject has no profile row or a null role
var ErrNoRoleAssigned = errors.New("no role assigned")

// ParseRole validates a raw role string from storage or input
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleStudent, RoleStaff, RoleAdmin, RoleSuperAdmin:
		return Role(s), nil
	}
	return RoleNone, fmt.Errorf("unknown role %q", s)
}

// Known reports whether the role is one of the defined access levels
func (r Role) Known() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

func (r Role) String() string { return string(r) }

// AtLeast reports whether the role grants the privileges of min.
// Ordering is student < staff < admin < super_admin.
func (r Role) AtLeast(min Role) bool {
	return r.rank() >= min.rank()
}

func (r Role) rank() int {
	switch r {
	case RoleStudent:
		return 1
	case RoleStaff:
		return 2
	case RoleAdmin:
		return 3
	case RoleSuperAdmin:
		return 4
	}
	return 0
}
