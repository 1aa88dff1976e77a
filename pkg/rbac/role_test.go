package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	for _, valid := range []string{"student", "staff", "admin", "super_admin"} {
		role, err := ParseRole(valid)
		require.NoError(t, err)
		assert.Equal(t, valid, role.String())
	}

	for _, invalid := range []string{"", "root", "Administrator", "STUDENT"} {
		_, err := ParseRole(invalid)
		assert.Error(t, err, "expected %q to be rejected", invalid)
	}
}

func TestRoleAtLeast(t *testing.T) {
	assert.True(t, RoleSuperAdmin.AtLeast(RoleAdmin))
	assert.True(t, RoleAdmin.AtLeast(RoleStaff))
	assert.True(t, RoleStaff.AtLeast(RoleStaff))
	assert.False(t, RoleStudent.AtLeast(RoleStaff))
	assert.False(t, RoleNone.AtLeast(RoleStudent))
}

func TestRoleKnown(t *testing.T) {
	assert.True(t, RoleStudent.Known())
	assert.False(t, Role("intern").Known())
	assert.False(t, RoleNone.Known())
}
