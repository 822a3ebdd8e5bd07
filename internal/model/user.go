package model

import "time"

// Role is the access level carried by a user and embedded in bearer
// tokens.
type Role string

const (
	RoleUser  Role = "user"  // default role assigned at registration
	RoleAdmin Role = "admin" // may read and mutate every user and contact
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User mirrors the `users` table. PasswordHash is never serialized so a
// User can be returned from admin endpoints as is.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// PublicUser is the reduced user view returned alongside access tokens.
type PublicUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// Public returns the token-response view of u.
func (u User) Public() PublicUser {
	return PublicUser{ID: u.ID, Email: u.Email, Role: u.Role}
}
