package ports

// Package ports defines interfaces (hexagonal ports) for auth-related behavior.
// Implementations live in internal/adapters and internal/data; orchestration
// in internal/service.

import (
	"context"

	domainauth "github.com/quillhq/quill/internal/domain/auth"
	"github.com/quillhq/quill/internal/domain/model"
)

// PasswordHasher is a one-way salted hash over user passwords.
// Implementations never log or return the plaintext.
type PasswordHasher interface {
	// Hash returns the salted hash of the plaintext. A failure here is
	// fatal to the calling operation.
	Hash(plaintext string) (string, error)

	// Verify reports whether plaintext matches the stored hash.
	// A mismatch is a normal negative result, not an error.
	Verify(plaintext, hash string) bool
}

// UserRepository persists and retrieves user records.
type UserRepository interface {
	Create(ctx context.Context, req *model.CreateUserRequest) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByName(ctx context.Context, name string) (*model.User, error)
	// ExistsByEmailOrName reports whether any user already holds the email
	// or the name. It is an optimization only; the unique constraints in
	// the store remain the source of truth under concurrency.
	ExistsByEmailOrName(ctx context.Context, email, name string) (bool, error)
}

// SessionStore persists and retrieves user sessions with TTL semantics.
type SessionStore interface {
	Save(ctx context.Context, sess domainauth.Session) error
	Get(ctx context.Context, id string) (domainauth.Session, error)
	// Delete removes a session. Deleting an absent session is not an error.
	Delete(ctx context.Context, id string) error
}

// ExchangeInput groups parameters for the code/token exchange.
type ExchangeInput struct {
	Code  string
	State string
	Nonce string
}

// AuthProvider initiates and completes an authentication flow against an IdP.
type AuthProvider interface {
	// Begin starts the login flow and returns the provider auth URL, an
	// opaque state, and a nonce. The redirect URL is fixed at provider
	// construction and must match what the IdP has registered.
	Begin(ctx context.Context) (authURL, state, nonce string, err error)

	// Exchange completes the login flow, verifying state and nonce, and returns the federated identity.
	Exchange(ctx context.Context, in ExchangeInput) (domainauth.Identity, error)
}

// RoleMapper maps provider groups to an application role for users
// created via federated login.
type RoleMapper interface {
	Map(groups []string) domainauth.Role
}
