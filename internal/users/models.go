package users

import (
	"time"

	"catalog-api/internal/rbac"
)

// User is a stored account.
// Invariant: Email is unique across all users; the store enforces it.
// PasswordHash never leaves the process (json:"-").
type User struct {
	ID           string    `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         rbac.Role `json:"role" db:"role"`
	IsActive     bool      `json:"isActive" db:"is_active"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

type CreateRequest struct {
	Name     string
	Email    string
	Password string
	Role     rbac.Role
}
