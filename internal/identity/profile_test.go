package identity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_ID_Unmarshal_AcceptsNumbersAndStrings(t *testing.T) {
	var p Profile
	err := json.Unmarshal([]byte(`{"studentId": 42, "administratorId": "7", "superAdminId": null}`), &p)
	require.NoError(t, err)
	assert.Equal(t, ID("42"), p.StudentID)
	assert.Equal(t, ID("7"), p.AdministratorID)
	assert.True(t, p.SuperAdminID.IsZero())
}

func Test_ID_Marshal_PreservesNumericForm(t *testing.T) {
	out, err := json.Marshal(Profile{StudentID: "42", Name: "Ada"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"studentId": 42, "name": "Ada"}`, string(out))

	out, err = json.Marshal(Profile{StudentID: "stu-42"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"studentId": "stu-42"}`, string(out))
}

func Test_Profile_EntityID(t *testing.T) {
	p := Profile{StudentID: "1", AdministratorID: "2", SuperAdminID: "3"}
	assert.Equal(t, ID("1"), p.EntityID(RoleStudent))
	assert.Equal(t, ID("2"), p.EntityID(RoleAdmin))
	assert.Equal(t, ID("3"), p.EntityID(RoleSuperAdmin))
	assert.Equal(t, ID(""), p.EntityID(Role("GUEST")))
}

func Test_Profile_IsZero(t *testing.T) {
	assert.True(t, Profile{}.IsZero())
	assert.False(t, Profile{Email: "a@campus.edu"}.IsZero())
}
