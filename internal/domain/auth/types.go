// Package auth contains domain-level types for the client-side session.
// It is pure and free of transport/adapter concerns.
package auth

// Role represents an application's authorization role as issued by the
// library API. Keep string form for easy comparison against token claims.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// Identity is the principal derived from the session token's claims.
// It is recomputed whenever the token changes and never stored.
type Identity struct {
	Email string
	Role  Role
}

// IsAdmin returns true if the identity carries the admin role.
func (i Identity) IsAdmin() bool { return i.Role == RoleAdmin }
