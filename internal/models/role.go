package models

// Role represents the closed set of user roles.
type Role string

const (
	RoleStudent   Role = "student"
	RoleRegistrar Role = "registrar"
	RoleCashier   Role = "cashier"
	RoleFaculty   Role = "faculty"
	RoleAdmin     Role = "admin"
)

// Roles lists every declared role.
func Roles() []Role {
	return []Role{RoleStudent, RoleRegistrar, RoleCashier, RoleFaculty, RoleAdmin}
}

// Valid reports whether r is one of the declared roles.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleRegistrar, RoleCashier, RoleFaculty, RoleAdmin:
		return true
	}
	return false
}
