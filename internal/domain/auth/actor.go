package auth

const (
	RoleAdmin    = "admin"
	RoleEmployee = "employee"
)

// Actor is the authorization context the middleware attaches to every engine
// call. The engine trusts it; authentication happens upstream.
type Actor struct {
	EmployeeID string
	Role       string
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// CanActFor reports whether the actor may operate on employeeID's records.
func (a Actor) CanActFor(employeeID string) bool {
	return a.IsAdmin() || a.EmployeeID == employeeID
}
