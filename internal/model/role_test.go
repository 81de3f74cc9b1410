package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleUnmarshalBothWireShapes(t *testing.T) {
	var u User
	payload := `{
		"userId": 7,
		"firstName": "Ana",
		"lastName": "Ruiz",
		"email": "ana@example.com",
		"roles": ["ROLE_PRACTITIONER", {"name": "ROLE_ADMIN"}, "ROLE_BOGUS"]
	}`
	require.NoError(t, json.Unmarshal([]byte(payload), &u))

	assert.Equal(t, []Role{RolePractitioner, RoleAdmin, RoleUnassigned}, u.Roles)
	assert.True(t, u.HasRole(RolePractitioner))
	assert.True(t, u.HasRole(RoleAdmin))
}

func TestRoleMarshalIsAlwaysString(t *testing.T) {
	data, err := json.Marshal([]Role{RoleAdmin, RolePractitioner})
	require.NoError(t, err)
	assert.JSONEq(t, `["ROLE_ADMIN", "ROLE_PRACTITIONER"]`, string(data))
}

func TestParseRoleUnknownIsUnassigned(t *testing.T) {
	assert.Equal(t, RoleUnassigned, ParseRole("ROLE_SUPERUSER"))
	assert.Equal(t, RoleUnassigned, ParseRole(""))
	assert.Equal(t, RoleAdmin, ParseRole("ROLE_ADMIN"))
}
