package rbac

// Role is carried in access tokens and on user records.
// Guarded routes accept any valid token; the role is informational for handlers.
type Role string

// Role names. Keep these stable; they are part of the token and API contracts.
const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleUser:
		return true
	default:
		return false
	}
}

func (r Role) String() string { return string(r) }
