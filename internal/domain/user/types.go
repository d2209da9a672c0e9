package user

type Role string

const (
	RoleAdmin       Role = "admin"
	RoleTeacher     Role = "teacher"
	RoleStudent     Role = "student"
	RoleParent      Role = "parent"
	RoleMaintenance Role = "maintenance"
)

func (r Role) String() string {
	return string(r)
}

func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleTeacher, RoleStudent, RoleParent, RoleMaintenance:
		return true
	default:
		return false
	}
}

func NewRole(s string) (Role, error) {
	role := Role(s)
	if !role.IsValid() {
		return "", ErrInvalidRole
	}
	return role, nil
}

// Recipient groups for the operational batch notices.
var (
	StockAlertRoles  = []Role{RoleAdmin}
	MaintenanceRoles = []Role{RoleAdmin, RoleMaintenance}
)
