package auth

// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/quillhq/quill/internal/data"
	domainauth "github.com/quillhq/quill/internal/domain/auth"
	"github.com/quillhq/quill/internal/domain/model"
	"github.com/quillhq/quill/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.AuthProvider   = (*MockAuthProvider)(nil)
	_ ports.SessionStore   = (*MemorySessionStore)(nil)
	_ ports.UserRepository = (*MemoryUserStore)(nil)
	_ ports.PasswordHasher = (*PlainHasher)(nil)
	_ ports.RoleMapper     = (*StaticRoleMapper)(nil)
)

// MockAuthProvider simulates an IdP for tests with deterministic state/nonce handling.
type MockAuthProvider struct {
	BeginFunc    func(ctx context.Context) (authURL, state, nonce string, err error)
	ExchangeFunc func(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error)

	// Deterministic values for predictable testing
	AuthURL         string
	StatePrefix     string
	NoncePrefix     string
	DefaultIdentity domainauth.Identity

	// Internal state tracking for deterministic behavior
	callCount int
}

// NewMockAuthProvider creates a MockAuthProvider with sensible defaults.
func NewMockAuthProvider() *MockAuthProvider {
	return &MockAuthProvider{
		AuthURL:     "https://mock-idp/auth",
		StatePrefix: "state",
		NoncePrefix: "nonce",
		DefaultIdentity: domainauth.Identity{
			Subject:   "mock-sub-1",
			Email:     "mock.user@example.com",
			Name:      "mockuser",
			FirstName: "Mock",
			LastName:  "User",
			Groups:    []string{"users"},
			ExpiresAt: time.Now().Add(time.Hour),
		},
	}
}

func (m *MockAuthProvider) Begin(ctx context.Context) (string, string, string, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}

	m.callCount++
	authURL := m.AuthURL
	if authURL == "" {
		authURL = "https://mock-idp/auth"
	}

	statePrefix := m.StatePrefix
	if statePrefix == "" {
		statePrefix = "state"
	}
	noncePrefix := m.NoncePrefix
	if noncePrefix == "" {
		noncePrefix = "nonce"
	}

	state := fmt.Sprintf("%s-%d", statePrefix, m.callCount)
	nonce := fmt.Sprintf("%s-%d", noncePrefix, m.callCount)

	return authURL, state, nonce, nil
}

func (m *MockAuthProvider) Exchange(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error) {
	if m.ExchangeFunc != nil {
		return m.ExchangeFunc(ctx, in)
	}

	// Return a copy of the default identity with a fresh expiration time
	id := m.DefaultIdentity
	if id.Subject == "" {
		id = domainauth.Identity{
			Subject:   "mock-sub-1",
			Email:     "mock.user@example.com",
			Name:      "mockuser",
			FirstName: "Mock",
			LastName:  "User",
			Groups:    []string{"users"},
		}
	}
	id.ExpiresAt = time.Now().Add(time.Hour)

	return id, nil
}

// MemorySessionStore is an in-memory session store for unit tests.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]domainauth.Session
}

// NewMemorySessionStore creates a new in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]domainauth.Session),
	}
}

func (m *MemorySessionStore) Save(_ context.Context, sess domainauth.Session) error {
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sess.ID] = sess
	return nil
}

func (m *MemorySessionStore) Get(_ context.Context, id string) (domainauth.Session, error) {
	if id == "" {
		return domainauth.Session{}, ErrNotFound
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[id]
	if !ok {
		return domainauth.Session{}, ErrNotFound
	}
	return sess, nil
}

func (m *MemorySessionStore) Delete(_ context.Context, id string) error {
	if id == "" {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// Len reports the number of stored sessions.
func (m *MemorySessionStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// ErrNotFound is returned by mocks when an entity is not present.
type notFoundError struct{}

func (notFoundError) Error() string { return "not found" }

var ErrNotFound error = notFoundError{}

// MemoryUserStore is an in-memory UserRepository for unit tests. It returns
// the data-layer sentinel errors so services exercise the same mapping paths
// as against Postgres.
type MemoryUserStore struct {
	mu    sync.Mutex
	users map[string]*model.User // keyed by ID

	// CreateErr forces the next Create call to fail, simulating a lost
	// register race (unique constraint fired despite the pre-check).
	CreateErr error
}

// NewMemoryUserStore creates a new in-memory user store.
func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[string]*model.User)}
}

func (m *MemoryUserStore) Create(_ context.Context, req *model.CreateUserRequest) (*model.User, error) {
	if req == nil {
		return nil, errors.New("create user request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.CreateErr != nil {
		err := m.CreateErr
		m.CreateErr = nil
		return nil, err
	}

	email := strings.TrimSpace(req.Email)
	name := strings.TrimSpace(req.Name)
	for _, u := range m.users {
		if u.Email == email || u.Name == name {
			return nil, data.ErrUserExists
		}
	}

	role := req.Role
	if role == "" {
		role = domainauth.RoleUser
	}
	now := time.Now().UTC()
	u := &model.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: req.PasswordHash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	m.users[u.ID] = u
	cp := *u
	return &cp, nil
}

func (m *MemoryUserStore) GetByID(_ context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, data.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *MemoryUserStore) GetByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == strings.TrimSpace(email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, data.ErrUserNotFound
}

func (m *MemoryUserStore) GetByName(_ context.Context, name string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Name == strings.TrimSpace(name) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, data.ErrUserNotFound
}

func (m *MemoryUserStore) ExistsByEmailOrName(_ context.Context, email, name string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == strings.TrimSpace(email) || u.Name == strings.TrimSpace(name) {
			return true, nil
		}
	}
	return false, nil
}

// PlainHasher is a transparent PasswordHasher for tests. Hashes are the
// plaintext with a recognizable prefix so assertions stay readable.
type PlainHasher struct {
	// HashErr forces Hash to fail when set.
	HashErr error
}

func (p *PlainHasher) Hash(plaintext string) (string, error) {
	if p.HashErr != nil {
		return "", p.HashErr
	}
	return "plain:" + plaintext, nil
}

func (p *PlainHasher) Verify(plaintext, hash string) bool {
	return hash == "plain:"+plaintext
}

// StaticRoleMapper maps groups by simple string membership rules.
type StaticRoleMapper struct {
	AdminGroup string
	UserGroup  string
}

func (m StaticRoleMapper) Map(groups []string) domainauth.Role {
	for _, g := range groups {
		if m.AdminGroup != "" && g == m.AdminGroup {
			return domainauth.RoleAdmin
		}
	}
	for _, g := range groups {
		if m.UserGroup != "" && g == m.UserGroup {
			return domainauth.RoleUser
		}
	}
	return domainauth.RoleGuest
}
