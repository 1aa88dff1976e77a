package rbac

import (
	"errors"

	"github.com/campushire/portal/pkg/auth"
)

// PanelKind identifies which panel a subject is routed to
type PanelKind string

const (
	PanelLogin      PanelKind = "login"
	PanelAdmin      PanelKind = "admin"
	PanelStaff      PanelKind = "staff"
	PanelStudent    PanelKind = "student"
	PanelSuperAdmin PanelKind = "superadmin"
)

// ErrForbiddenPanel is returned when a session requests a panel its role
// does not grant
var ErrForbiddenPanel = errors.New("panel not permitted for role")

// Decision is the outcome of panel selection. SubjectID is set only for
// the student panel, which is scoped to the subject's own records.
type Decision struct {
	Panel     PanelKind
	SubjectID string
}

// SelectPanel maps a session and its resolved role to exactly one panel.
//
// The table is evaluated top to bottom:
//
//	no session                      -> login
//	super_admin role or pinned email -> superadmin
//	admin                           -> admin
//	staff                           -> staff
//	student                         -> student, scoped to the subject
//	anything else                   -> login
//
// The pinned-email override is deliberate: the legacy super admin is
// recognized even when its profile row is missing or carries another role.
// Unknown roles fall through to login rather than erroring, so a corrupt
// role value degrades to the unauthenticated view instead of a 500.
func SelectPanel(session *auth.Session, role Role, pinnedEmail string) Decision {
	if session == nil {
		return Decision{Panel: PanelLogin}
	}
	if role == RoleSuperAdmin || (pinnedEmail != "" && session.Email == pinnedEmail) {
		return Decision{Panel: PanelSuperAdmin}
	}
	switch role {
	case RoleAdmin:
		return Decision{Panel: PanelAdmin}
	case RoleStaff:
		return Decision{Panel: PanelStaff}
	case RoleStudent:
		return Decision{Panel: PanelStudent, SubjectID: session.Subject}
	}
	return Decision{Panel: PanelLogin}
}

// PanelForRole reports whether a role may access the given panel kind.
// The login panel is always accessible.
func PanelForRole(role Role, panel PanelKind) bool {
	switch panel {
	case PanelLogin:
		return true
	case PanelSuperAdmin:
		return role == RoleSuperAdmin
	case PanelAdmin:
		return role == RoleAdmin || role == RoleSuperAdmin
	case PanelStaff:
		return role == RoleStaff || role == RoleAdmin || role == RoleSuperAdmin
	case PanelStudent:
		return role == RoleStudent
	}
	return false
}
