package actor

// Role identifies the kind of caller invoking a workflow operation
type Role string

const (
	RoleSupplier      Role = "SUPPLIER"
	RoleManager       Role = "MANAGER"
	RoleAdministrator Role = "ADMINISTRATOR"
)

var validRoles = map[Role]bool{
	RoleSupplier:      true,
	RoleManager:       true,
	RoleAdministrator: true,
}

// IsValid returns true if the role is a known role
func (r Role) IsValid() bool {
	return validRoles[r]
}

// CanModerate returns true if the role may act on moderation queues
func (r Role) CanModerate() bool {
	return r == RoleManager || r == RoleAdministrator
}

// String returns the string representation of the role
func (r Role) String() string {
	return string(r)
}

// Actor is the resolved identity of the caller for a single request.
// It is constructed per call and never shared.
type Actor struct {
	ID   int64
	Role Role
}
