package domain

import (
	"maps"
	"slices"
	"strings"
)

// Role represents user role in the society
type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleCommittee Role = "COMMITTEE"
	RoleStaff     Role = "STAFF"
	RoleSecurity  Role = "SECURITY"
	RoleResident  Role = "RESIDENT"
)

// Roles lists every role in declaration order
var Roles = []Role{RoleAdmin, RoleCommittee, RoleStaff, RoleSecurity, RoleResident}

// ParseRole parses a role name, case-insensitively
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Roles {
		if r == known {
			return r, true
		}
	}
	return "", false
}

// Permission is a single capability granted by a role
type Permission string

const (
	PermAllAccess             Permission = "all_access"
	PermManageUsers           Permission = "manage_users"
	PermViewAudit             Permission = "view_audit"
	PermManageTreasury        Permission = "manage_treasury"
	PermPostNotices           Permission = "post_notices"
	PermViewDashboard         Permission = "view_dashboard"
	PermManageMaintenance     Permission = "manage_maintenance"
	PermViewExpenses          Permission = "view_expenses"
	PermScheduleMeetings      Permission = "schedule_meetings"
	PermManageHelpdesk        Permission = "manage_helpdesk"
	PermUpdateAssets          Permission = "update_assets"
	PermManageVisitors        Permission = "manage_visitors"
	PermViewEmergency         Permission = "view_emergency"
	PermReceiveSOS            Permission = "receive_sos"
	PermViewPersonalDashboard Permission = "view_personal_dashboard"
	PermPayMaintenance        Permission = "pay_maintenance"
	PermBookAmenities         Permission = "book_amenities"
	PermRaiseComplaint        Permission = "raise_complaint"
)

var knownPermissions = map[Permission]struct{}{
	PermAllAccess: {}, PermManageUsers: {}, PermViewAudit: {}, PermManageTreasury: {},
	PermPostNotices: {}, PermViewDashboard: {}, PermManageMaintenance: {}, PermViewExpenses: {},
	PermScheduleMeetings: {}, PermManageHelpdesk: {}, PermUpdateAssets: {}, PermManageVisitors: {},
	PermViewEmergency: {}, PermReceiveSOS: {}, PermViewPersonalDashboard: {}, PermPayMaintenance: {},
	PermBookAmenities: {}, PermRaiseComplaint: {},
}

// ParsePermission parses a permission name
func ParsePermission(s string) (Permission, bool) {
	p := Permission(strings.ToLower(strings.TrimSpace(s)))
	_, ok := knownPermissions[p]
	return p, ok
}

// PermissionSet is a set of permissions
type PermissionSet map[Permission]struct{}

func newPermissionSet(perms ...Permission) PermissionSet {
	s := make(PermissionSet, len(perms))
	for _, p := range perms {
		s[p] = struct{}{}
	}
	return s
}

// Has reports whether p is in the set
func (s PermissionSet) Has(p Permission) bool {
	_, ok := s[p]
	return ok
}

// List returns the permissions in sorted order
func (s PermissionSet) List() []Permission {
	return slices.Sorted(maps.Keys(s))
}

// rolePermissions is the static role to permission mapping
var rolePermissions = map[Role]PermissionSet{
	RoleAdmin:     newPermissionSet(PermAllAccess, PermManageUsers, PermViewAudit, PermManageTreasury, PermPostNotices),
	RoleCommittee: newPermissionSet(PermViewDashboard, PermManageMaintenance, PermPostNotices, PermViewExpenses, PermScheduleMeetings),
	RoleStaff:     newPermissionSet(PermViewDashboard, PermManageHelpdesk, PermUpdateAssets),
	RoleSecurity:  newPermissionSet(PermViewDashboard, PermManageVisitors, PermViewEmergency, PermReceiveSOS),
	RoleResident:  newPermissionSet(PermViewPersonalDashboard, PermPayMaintenance, PermBookAmenities, PermRaiseComplaint),
}

// PermissionsOf returns a copy of the role's permission set
func PermissionsOf(r Role) PermissionSet {
	base := rolePermissions[r]
	out := make(PermissionSet, len(base))
	for p := range base {
		out[p] = struct{}{}
	}
	return out
}

// Actor is the resolved identity behind a request
type Actor struct {
	UserID    uint
	Name      string
	Email     string
	Role      Role
	FlatID    string
	Overrides []Permission
	IPAddress string
}

// SystemActor is used for scheduled jobs and seeding
var SystemActor = Actor{Name: "System"}

// Permissions returns the role permissions plus the actor's overrides
func (a Actor) Permissions() PermissionSet {
	set := PermissionsOf(a.Role)
	for _, p := range a.Overrides {
		if p == PermAllAccess {
			continue
		}
		set[p] = struct{}{}
	}
	return set
}

// Can reports whether the actor holds p, directly or through all_access
func (a Actor) Can(p Permission) bool {
	perms := a.Permissions()
	return perms.Has(PermAllAccess) || perms.Has(p)
}

// Allow implements the role & permission gate. It allows when the actor's
// role is listed, when any required permission is held, or when the actor
// holds all_access. No requirement at all allows any authenticated actor.
func Allow(a Actor, roles []Role, perms []Permission) bool {
	if len(roles) == 0 && len(perms) == 0 {
		return true
	}
	for _, r := range roles {
		if a.Role == r {
			return true
		}
	}
	held := a.Permissions()
	if held.Has(PermAllAccess) {
		return true
	}
	for _, p := range perms {
		if held.Has(p) {
			return true
		}
	}
	return false
}

// ParseOverrides keeps the known permissions from a freeform list.
// all_access belongs to ADMIN alone and is never granted as an override.
func ParseOverrides(raw []string) []Permission {
	out := make([]Permission, 0, len(raw))
	for _, s := range raw {
		if p, ok := ParsePermission(s); ok && p != PermAllAccess {
			out = append(out, p)
		}
	}
	return out
}
