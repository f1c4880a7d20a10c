package permissions_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vetdesk/vetdesk-backend/pkg/permissions"
)

func TestValidRole(t *testing.T) {
	assert.True(t, permissions.ValidRole(permissions.RoleVet))
	assert.True(t, permissions.ValidRole(permissions.RoleNurse))
	assert.True(t, permissions.ValidRole(permissions.RoleACA))
	assert.True(t, permissions.ValidRole(permissions.RoleReceptionist))

	assert.False(t, permissions.ValidRole("vet"))
	assert.False(t, permissions.ValidRole("Admin"))
	assert.False(t, permissions.ValidRole(""))
}

func TestCanAdministerDrugs(t *testing.T) {
	assert.True(t, permissions.CanAdministerDrugs(permissions.RoleVet))

	assert.False(t, permissions.CanAdministerDrugs(permissions.RoleNurse))
	assert.False(t, permissions.CanAdministerDrugs(permissions.RoleACA))
	assert.False(t, permissions.CanAdministerDrugs(permissions.RoleReceptionist))
}

func TestCanMonitorAnaesthetic(t *testing.T) {
	assert.True(t, permissions.CanMonitorAnaesthetic(permissions.RoleVet))
	assert.True(t, permissions.CanMonitorAnaesthetic(permissions.RoleNurse))

	assert.False(t, permissions.CanMonitorAnaesthetic(permissions.RoleACA))
	assert.False(t, permissions.CanMonitorAnaesthetic(permissions.RoleReceptionist))
}
