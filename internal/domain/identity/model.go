// Package identity holds user profiles and the role model that scopes what
// each signed-in user may see.
package identity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Role is the closed set of account roles. Code that branches on Role must
// treat any value outside this set as granting nothing.
type Role string

const (
	RoleCustomer  Role = "customer"
	RoleCaregiver Role = "caregiver"
	RoleAdmin     Role = "admin"
)

// ParseRole validates a raw role string against the closed set.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleCustomer, RoleCaregiver, RoleAdmin:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown role: %q", s)
	}
}

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

// Profile maps to the profiles table. PasswordHash never leaves the server.
type Profile struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	DisplayName  string    `db:"display_name" json:"display_name"`
	Role         Role      `db:"role" json:"role"`
	Language     *string   `db:"language" json:"language,omitempty"`
	Phone        *string   `db:"phone" json:"phone,omitempty"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}
