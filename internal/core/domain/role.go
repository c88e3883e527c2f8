package domain

// Well-known role ids seeded at bootstrap. Ids are stable: once assigned to a
// name they are never reused for a different one.
const (
	RoleAdmin   int64 = 1
	RoleDoctor  int64 = 2
	RolePatient int64 = 3
)

// Role is an immutable reference entity used to gate access to operations.
type Role struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// DefaultRoles returns the closed set of roles required before any user can
// be registered.
func DefaultRoles() []Role {
	return []Role{
		{ID: RoleAdmin, Name: "admin"},
		{ID: RoleDoctor, Name: "doctor"},
		{ID: RolePatient, Name: "patient"},
	}
}
