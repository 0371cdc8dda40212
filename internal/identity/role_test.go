package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_ParseRole_Normalization(t *testing.T) {
	cases := []struct {
		in   string
		want Role
		ok   bool
	}{
		{"STUDENT", RoleStudent, true},
		{"student", RoleStudent, true},
		{"  Admin ", RoleAdmin, true},
		{"SUPER_ADMIN", RoleSuperAdmin, true},
		{"SUPERADMIN", RoleSuperAdmin, true},
		{"superadmin", RoleSuperAdmin, true},
		{"MODERATOR", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		role, ok := ParseRole(tc.in)
		require.Equal(t, tc.ok, ok, "input %q", tc.in)
		if ok {
			assert.Equal(t, tc.want, role, "input %q", tc.in)
		}
	}
}

func Test_Role_Satisfies(t *testing.T) {
	assert.True(t, RoleStudent.Satisfies(RoleStudent))
	assert.False(t, RoleStudent.Satisfies(RoleAdmin))
	assert.False(t, RoleStudent.Satisfies(RoleSuperAdmin))

	assert.True(t, RoleAdmin.Satisfies(RoleStudent))
	assert.True(t, RoleAdmin.Satisfies(RoleAdmin))
	assert.False(t, RoleAdmin.Satisfies(RoleSuperAdmin))

	assert.True(t, RoleSuperAdmin.Satisfies(RoleStudent))
	assert.True(t, RoleSuperAdmin.Satisfies(RoleAdmin))
	assert.True(t, RoleSuperAdmin.Satisfies(RoleSuperAdmin))
}

func Test_Role_Satisfies_UnknownRoles(t *testing.T) {
	assert.False(t, Role("").Satisfies(RoleStudent))
	assert.False(t, Role("MODERATOR").Satisfies(RoleStudent))
	assert.False(t, RoleAdmin.Satisfies(Role("MODERATOR")))
	assert.False(t, Role("").Satisfies(Role("")))
}

func Test_Role_Known(t *testing.T) {
	assert.True(t, RoleStudent.Known())
	assert.True(t, RoleAdmin.Known())
	assert.True(t, RoleSuperAdmin.Known())
	assert.False(t, Role("GUEST").Known())
	assert.False(t, Role("").Known())
}
