package model

import "time"

// Roles recognised by the API. Sessions are issued by the hosted auth
// provider; this service only resolves tokens to roles.
const (
	RoleAdmin    = "admin"
	RoleKasir    = "kasir"
	RoleCustomer = "customer"
)

// Session is an authenticated caller resolved from a bearer token.
type Session struct {
	Token     string    `json:"-" db:"token"`
	UserID    string    `json:"userId" db:"user_id"`
	Role      string    `json:"role" db:"role"`
	ExpiresAt time.Time `json:"expiresAt" db:"expires_at"`
}

// HasRole reports whether the session's role is one of the given roles.
func (s *Session) HasRole(roles ...string) bool {
	for _, r := range roles {
		if s.Role == r {
			return true
		}
	}
	return false
}
