package models

// Permission is a bit set of coarse capabilities granted by a role.
// Relationship checks (is this my team lead, my manager) happen in the
// services on top of these.
type Permission int64

const (
	PermReadEmployees    Permission = 1 << iota // list and view other users
	PermWriteEmployees                          // create, update, deactivate users
	PermManageAttendance                        // correct attendance records
	PermReadReports                             // summaries and exports for anyone
	PermActApprovals                            // may appear as an approver
	PermAdmin                                   // everything
)

// Has reports whether p grants perm. PermAdmin grants everything.
func (p Permission) Has(perm Permission) bool {
	if p&PermAdmin != 0 {
		return true
	}
	return p&perm != 0
}

var rolePermissions = map[Role]Permission{
	RoleAdmin:    PermAdmin,
	RoleManager:  PermReadEmployees | PermManageAttendance | PermReadReports | PermActApprovals,
	RoleTeamLead: PermReadEmployees | PermActApprovals,
	RoleEmployee: 0,
	RoleIntern:   0,
}

// Permissions returns what the role grants.
func (r Role) Permissions() Permission {
	return rolePermissions[r]
}
