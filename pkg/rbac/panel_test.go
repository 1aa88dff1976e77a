package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/campushire/portal/pkg/auth"
)

func session(subject, email string) *auth.Session {
	return &auth.Session{Subject: subject, Email: email, Source: auth.SourceDemo}
}

func TestSelectPanelTable(t *testing.T) {
	tests := []struct {
		name    string
		session *auth.Session
		role    Role
		want    Decision
	}{
		{"no session", nil, RoleNone, Decision{Panel: PanelLogin}},
		{"no session ignores role", nil, RoleAdmin, Decision{Panel: PanelLogin}},
		{"super admin role", session("9", "x@example.com"), RoleSuperAdmin, Decision{Panel: PanelSuperAdmin}},
		{"admin", session("1", "admin@example.com"), RoleAdmin, Decision{Panel: PanelAdmin}},
		{"staff", session("2", "staff@example.com"), RoleStaff, Decision{Panel: PanelStaff}},
		{"student scoped to subject", session("3", "student@example.com"), RoleStudent, Decision{Panel: PanelStudent, SubjectID: "3"}},
		{"no role", session("7", "new@example.com"), RoleNone, Decision{Panel: PanelLogin}},
		{"unknown role", session("7", "new@example.com"), Role("intern"), Decision{Panel: PanelLogin}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SelectPanel(tt.session, tt.role, auth.DefaultSuperAdminEmail)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSelectPanelPinnedEmailOverride(t *testing.T) {
	// The pinned email wins even when the profile lookup said something else
	pinned := session("0", auth.DefaultSuperAdminEmail)

	for _, role := range []Role{RoleNone, RoleStudent, RoleAdmin, Role("broken")} {
		got := SelectPanel(pinned, role, auth.DefaultSuperAdminEmail)
		assert.Equal(t, PanelSuperAdmin, got.Panel, "role %q", role)
	}

	// With the pin disabled the same session falls through the table
	got := SelectPanel(pinned, RoleAdmin, "")
	assert.Equal(t, PanelAdmin, got.Panel)
}

func TestSelectPanelIdempotent(t *testing.T) {
	s := session("3", "student@example.com")
	first := SelectPanel(s, RoleStudent, auth.DefaultSuperAdminEmail)
	second := SelectPanel(s, RoleStudent, auth.DefaultSuperAdminEmail)
	assert.Equal(t, first, second)
}

func TestPanelForRole(t *testing.T) {
	assert.True(t, PanelForRole(RoleStudent, PanelStudent))
	assert.False(t, PanelForRole(RoleStudent, PanelAdmin))
	assert.True(t, PanelForRole(RoleAdmin, PanelStaff))
	assert.False(t, PanelForRole(RoleAdmin, PanelSuperAdmin))
	assert.True(t, PanelForRole(RoleSuperAdmin, PanelAdmin))
	assert.True(t, PanelForRole(RoleNone, PanelLogin))
	assert.False(t, PanelForRole(RoleSuperAdmin, PanelStudent))
}
