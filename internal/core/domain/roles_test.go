package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRole(t *testing.T) {
	r, ok := ParseRole(" committee ")
	assert.True(t, ok)
	assert.Equal(t, RoleCommittee, r)

	_, ok = ParseRole("SUPERUSER")
	assert.False(t, ok)
}

func TestAllow(t *testing.T) {
	admin := Actor{UserID: 1, Role: RoleAdmin}
	resident := Actor{UserID: 2, Role: RoleResident}
	committee := Actor{UserID: 3, Role: RoleCommittee}

	tests := []struct {
		name  string
		actor Actor
		roles []Role
		perms []Permission
		want  bool
	}{
		{"resident denied on admin only", resident, []Role{RoleAdmin}, nil, false},
		{"admin allowed by role", admin, []Role{RoleAdmin}, nil, true},
		{"admin allowed by all_access", admin, []Role{RoleStaff}, []Permission{PermManageVisitors}, true},
		{"committee allowed by permission", committee, nil, []Permission{PermManageMaintenance}, true},
		{"resident lacks permission", resident, nil, []Permission{PermViewAudit}, false},
		{"resident holds pay_maintenance", resident, []Role{RoleAdmin}, []Permission{PermPayMaintenance}, true},
		{"no requirement", resident, nil, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Allow(tt.actor, tt.roles, tt.perms))
		})
	}
}

func TestOverridesExtendRole(t *testing.T) {
	a := Actor{Role: RoleResident, Overrides: ParseOverrides([]string{"view_audit", "fly_to_moon"})}

	assert.Len(t, a.Overrides, 1)
	assert.True(t, a.Can(PermViewAudit))
	assert.True(t, a.Can(PermBookAmenities))
	assert.False(t, a.Can(PermManageUsers))

	// overrides never leak into the shared role mapping
	assert.False(t, PermissionsOf(RoleResident).Has(PermViewAudit))
}

func TestAllAccessIsNeverAnOverride(t *testing.T) {
	parsed := ParseOverrides([]string{"all_access", "view_audit"})
	assert.Equal(t, []Permission{PermViewAudit}, parsed)

	a := Actor{Role: RoleCommittee, Overrides: []Permission{PermAllAccess}}
	assert.False(t, a.Permissions().Has(PermAllAccess))
	assert.False(t, a.Can(PermManageUsers))
	assert.False(t, Allow(a, []Role{RoleAdmin}, []Permission{PermManageUsers}))

	assert.True(t, Actor{Role: RoleAdmin}.Can(PermManageUsers))
}

func TestPermissionListIsSorted(t *testing.T) {
	got := PermissionsOf(RoleSecurity).List()
	assert.Equal(t, []Permission{PermManageVisitors, PermReceiveSOS, PermViewDashboard, PermViewEmergency}, got)
}
