package entity

// Role is the single coarse-grained authorization tag carried by a user and
// by the tokens issued for that user.
const (
	RoleReader    = "reader"
	RoleLibrarian = "librarian"
	RoleAdmin     = "admin"
)

// DefaultRole is assigned when a registration does not ask for one.
const DefaultRole = RoleReader

// SelfServiceRole reports whether a role may be requested at registration.
// Admin accounts are only created by cmd/seed.
func SelfServiceRole(role string) bool {
	switch role {
	case RoleReader, RoleLibrarian:
		return true
	}
	return false
}
