package auth

import "github.com/golang-jwt/jwt/v5"

// Claims are the only supported JWT claims shape for this service.
// Subject carries the user id; iat and exp are always set.
// Claims are derived from the user at login and never stored.
type Claims struct {
	jwt.RegisteredClaims

	Email string `json:"email"`
	Role  string `json:"role"`
}

// Identity is the verified caller attached to a guarded request.
type Identity struct {
	UserID string
	Email  string
	Role   string
}

func (c Claims) Identity() Identity {
	return Identity{UserID: c.Subject, Email: c.Email, Role: c.Role}
}
