package rbac

// Role names. Keep these stable; they are part of auth/RBAC contracts.
const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// IsAdmin reports whether role may perform irreversible operations such as permanent deletes.
func IsAdmin(role string) bool { return role == RoleAdmin }
