package auth

// Package auth contains domain-level types for authentication and sessions.
// It is pure and free of framework/adapter concerns.

import "time"

// Role represents an application's authorization role.
// Keep string form for easy persistence and cookies.
// Valid values are defined as constants below.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
	RoleGuest Role = "GUEST"
)

// Valid reports whether r is one of the defined roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleUser, RoleGuest:
		return true
	}
	return false
}

// Principal is the minimal authenticated identity carried in a session.
// It is derived from a User at login time and never persisted beyond
// the session's lifetime.
type Principal struct {
	UserID string `json:"id"`
	Role   Role   `json:"role"`
}

// Identity represents the profile returned by a federated identity provider.
// Adapters map provider-specific claims into this shape.
type Identity struct {
	Subject   string // stable provider-side identifier (sub claim)
	Email     string
	Name      string
	FirstName string
	LastName  string
	Groups    []string
	ExpiresAt time.Time // absolute expiry from IdP token
}

// Session is the server-side record we persist for an authenticated user.
// ID is an opaque session identifier (e.g., random URL-safe string).
//
// A session moves Unauthenticated -> Authenticated when established and
// Authenticated -> Terminated on destroy or TTL expiry; there is no way
// back without establishing a new session.
type Session struct {
	ID        string    `json:"id"`
	Principal Principal `json:"principal"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session's TTL has elapsed at time now.
func (s Session) Expired(now time.Time) bool { return now.After(s.ExpiresAt) }

// FailureReason classifies why a strategy rejected a credential.
type FailureReason string

const (
	// FailureUnknownUser means no user matched the login identifier.
	FailureUnknownUser FailureReason = "no such user"
	// FailureInvalidCredentials means the password did not match.
	FailureInvalidCredentials FailureReason = "invalid credentials"
	// FailureProvider means the identity provider rejected the exchange
	// or returned an unusable profile.
	FailureProvider FailureReason = "provider rejected login"
)

// AuthResult is the verdict of an authentication strategy: either a
// resolved principal or a failure reason. It is transient, consumed by
// the controller immediately and never stored.
type AuthResult struct {
	Principal Principal
	Reason    FailureReason
}

// Success returns a positive AuthResult carrying the principal.
func Success(p Principal) AuthResult { return AuthResult{Principal: p} }

// Failure returns a negative AuthResult carrying the reason.
func Failure(reason FailureReason) AuthResult { return AuthResult{Reason: reason} }

// OK reports whether the result is a success.
func (r AuthResult) OK() bool { return r.Reason == "" }
