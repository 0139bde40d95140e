package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/quillhq/quill/internal/data"
	domainauth "github.com/quillhq/quill/internal/domain/auth"
	"github.com/quillhq/quill/internal/domain/model"
	apperrors "github.com/quillhq/quill/internal/errors"
	"github.com/quillhq/quill/internal/ports"
)

// DefaultSessionTTL is the session lifetime when none is configured.
const DefaultSessionTTL = 24 * time.Hour

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Users    ports.UserRepository
	Sessions ports.SessionStore
	Hasher   ports.PasswordHasher
	Provider ports.AuthProvider // optional; nil disables federated login
	Roles    ports.RoleMapper

	// LoginByName switches the local login identifier from email to name.
	LoginByName bool
	// SessionTTL defaults to DefaultSessionTTL when zero.
	SessionTTL time.Duration
}

// AuthService orchestrates credential verification, user persistence, and
// session lifecycle for both local and federated login.
type AuthService struct {
	users       ports.UserRepository
	sessions    ports.SessionStore
	hasher      ports.PasswordHasher
	provider    ports.AuthProvider
	roles       ports.RoleMapper
	loginByName bool
	ttl         time.Duration
}

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) *AuthService {
	ttl := opts.SessionTTL
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &AuthService{
		users:       opts.Users,
		sessions:    opts.Sessions,
		hasher:      opts.Hasher,
		provider:    opts.Provider,
		roles:       opts.Roles,
		loginByName: opts.LoginByName,
		ttl:         ttl,
	}
}

// HasProvider reports whether a federated auth provider is configured.
func (s *AuthService) HasProvider() bool { return s.provider != nil }

// RegisterInput carries fields for creating a local account.
type RegisterInput struct {
	Email     string
	Name      string
	Password  string
	FirstName string
	LastName  string
	Role      domainauth.Role
}

// Register creates a local account and establishes a session for it
// (registration logs the user in). The existence pre-check gives a friendly
// early conflict; the store's unique constraints decide races, so the
// constraint-violation path maps to the same conflict.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*model.User, domainauth.Session, error) {
	if strings.TrimSpace(in.Password) == "" {
		return nil, domainauth.Session{}, apperrors.Validation("password is required")
	}

	req := &model.CreateUserRequest{
		Email:     strings.TrimSpace(in.Email),
		Name:      strings.TrimSpace(in.Name),
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Role:      in.Role,
	}
	if err := req.Validate(); err != nil {
		return nil, domainauth.Session{}, apperrors.Validation(err.Error())
	}

	exists, err := s.users.ExistsByEmailOrName(ctx, req.Email, req.Name)
	if err != nil {
		return nil, domainauth.Session{}, apperrors.Wrap(err, apperrors.ErrCodeInternal, "check user existence")
	}
	if exists {
		return nil, domainauth.Session{}, apperrors.ConflictField("register", "User name/email taken")
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, domainauth.Session{}, apperrors.Wrap(err, apperrors.ErrCodeInternal, "hash password")
	}
	req.PasswordHash = hash

	user, err := s.users.Create(ctx, req)
	if err != nil {
		if errors.Is(err, data.ErrUserExists) {
			// Lost the race after the pre-check; same outcome for the caller.
			return nil, domainauth.Session{}, apperrors.ConflictField("register", "User name/email taken")
		}
		return nil, domainauth.Session{}, apperrors.Wrap(err, apperrors.ErrCodeInternal, "create user")
	}

	sess, err := s.EstablishSession(ctx, user.Principal())
	if err != nil {
		return nil, domainauth.Session{}, err
	}
	return user, sess, nil
}

// Authenticate verifies a local credential pair and returns the verdict.
// An error is returned only for store failures; a bad credential is a
// normal Failure result.
func (s *AuthService) Authenticate(ctx context.Context, identifier, password string) (domainauth.AuthResult, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return domainauth.Failure(domainauth.FailureInvalidCredentials), nil
	}

	var (
		user *model.User
		err  error
	)
	if s.loginByName {
		user, err = s.users.GetByName(ctx, identifier)
	} else {
		user, err = s.users.GetByEmail(ctx, identifier)
	}
	if err != nil {
		if errors.Is(err, data.ErrUserNotFound) {
			return domainauth.Failure(domainauth.FailureUnknownUser), nil
		}
		return domainauth.AuthResult{}, fmt.Errorf("lookup user: %w", err)
	}

	// Accounts created via federated login carry no password hash and can
	// never authenticate locally.
	if user.PasswordHash == "" || !s.hasher.Verify(password, user.PasswordHash) {
		return domainauth.Failure(domainauth.FailureInvalidCredentials), nil
	}

	return domainauth.Success(user.Principal()), nil
}

// Login authenticates a local credential pair and establishes a session.
// An unknown identifier and a wrong password map to distinct errors,
// matching the API's historical behavior.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (domainauth.Session, error) {
	res, err := s.Authenticate(ctx, identifier, password)
	if err != nil {
		return domainauth.Session{}, apperrors.Wrap(err, apperrors.ErrCodeInternal, "authenticate")
	}
	if !res.OK() {
		if res.Reason == domainauth.FailureUnknownUser {
			return domainauth.Session{}, apperrors.NotFound(string(res.Reason))
		}
		return domainauth.Session{}, apperrors.Unauthorized(string(res.Reason))
	}
	return s.EstablishSession(ctx, res.Principal)
}

// EstablishSession creates and persists a fresh session for the principal.
func (s *AuthService) EstablishSession(ctx context.Context, p domainauth.Principal) (domainauth.Session, error) {
	sess := domainauth.Session{
		ID:        uuid.NewString(),
		Principal: p,
		ExpiresAt: time.Now().Add(s.ttl),
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return domainauth.Session{}, apperrors.Wrap(err, apperrors.ErrCodeInternal, "save session")
	}
	return sess, nil
}

// GetSession resolves a session ID to a live session. Missing, unknown, and
// expired sessions all resolve to Unauthorized so callers treat the request
// as anonymous.
func (s *AuthService) GetSession(ctx context.Context, sessionID string) (domainauth.Session, error) {
	if sessionID == "" {
		return domainauth.Session{}, apperrors.Unauthorized("no session")
	}

	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return domainauth.Session{}, apperrors.Wrap(err, apperrors.ErrCodeUnauthorized, "session not found")
	}

	if sess.Expired(time.Now()) {
		// Clean up eagerly; the store TTL would collect it anyway.
		if deleteErr := s.sessions.Delete(ctx, sessionID); deleteErr != nil {
			return domainauth.Session{}, apperrors.Wrap(deleteErr, apperrors.ErrCodeUnauthorized, "session expired")
		}
		return domainauth.Session{}, apperrors.Unauthorized("session expired")
	}

	return sess, nil
}

// Logout removes a session. Logging out without a session is a no-op.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "delete session")
	}
	return nil
}

// BeginLoginResult contains the result of beginning a federated login flow.
type BeginLoginResult struct {
	AuthURL string
	State   string
	Nonce   string
}

// BeginOAuth initiates a federated login flow and returns the provider auth
// URL with state and nonce for the handler to pin in cookies. The redirect
// URL is part of the provider's configuration, not a per-request input.
func (s *AuthService) BeginOAuth(ctx context.Context) (*BeginLoginResult, error) {
	if s.provider == nil {
		return nil, apperrors.Internal("federated login is not configured")
	}

	authURL, state, nonce, err := s.provider.Begin(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "begin auth flow")
	}

	return &BeginLoginResult{AuthURL: authURL, State: state, Nonce: nonce}, nil
}

// CompleteLoginInput groups parameters for completing a federated login flow.
type CompleteLoginInput struct {
	Code  string
	State string
	Nonce string
}

// CompleteOAuth exchanges the authorization code for an identity, finds or
// creates the matching local user by email, and establishes a session.
func (s *AuthService) CompleteOAuth(ctx context.Context, in CompleteLoginInput) (*model.User, domainauth.Session, error) {
	if s.provider == nil {
		return nil, domainauth.Session{}, apperrors.Internal("federated login is not configured")
	}
	if in.Code == "" {
		return nil, domainauth.Session{}, apperrors.Validation("authorization code is required")
	}
	if in.State == "" {
		return nil, domainauth.Session{}, apperrors.Validation("state parameter is required")
	}
	if in.Nonce == "" {
		return nil, domainauth.Session{}, apperrors.Validation("nonce parameter is required")
	}

	identity, err := s.provider.Exchange(ctx, ports.ExchangeInput{
		Code:  in.Code,
		State: in.State,
		Nonce: in.Nonce,
	})
	if err != nil {
		return nil, domainauth.Session{}, apperrors.Wrap(err, apperrors.ErrCodeUnauthorized, string(domainauth.FailureProvider))
	}
	if identity.Email == "" {
		return nil, domainauth.Session{}, apperrors.Unauthorized("provider returned no email")
	}

	user, err := s.findOrCreateFederatedUser(ctx, identity)
	if err != nil {
		return nil, domainauth.Session{}, err
	}

	sess, err := s.EstablishSession(ctx, user.Principal())
	if err != nil {
		return nil, domainauth.Session{}, err
	}
	return user, sess, nil
}

// CurrentUser returns the stored user record for the principal.
func (s *AuthService) CurrentUser(ctx context.Context, p domainauth.Principal) (*model.User, error) {
	user, err := s.users.GetByID(ctx, p.UserID)
	if err != nil {
		if errors.Is(err, data.ErrUserNotFound) {
			return nil, apperrors.NotFound("User not found")
		}
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "get user")
	}
	return user, nil
}

func (s *AuthService) findOrCreateFederatedUser(ctx context.Context, identity domainauth.Identity) (*model.User, error) {
	user, err := s.users.GetByEmail(ctx, identity.Email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, data.ErrUserNotFound) {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "lookup federated user")
	}

	role := domainauth.RoleGuest
	if s.roles != nil {
		role = s.roles.Map(identity.Groups)
	}

	req := &model.CreateUserRequest{
		Email:     identity.Email,
		Name:      federatedUserName(identity),
		FirstName: identity.FirstName,
		LastName:  identity.LastName,
		Role:      role,
		// no PasswordHash: federated accounts cannot log in locally
	}
	user, err = s.users.Create(ctx, req)
	if err != nil && errors.Is(err, data.ErrUserExists) {
		// Either a register race on the email or the derived name is taken
		// by someone else. Retry the lookup, then retry with a unique name.
		if existing, lookupErr := s.users.GetByEmail(ctx, identity.Email); lookupErr == nil {
			return existing, nil
		}
		req.Name = req.Name + "-" + uuid.NewString()[:8]
		user, err = s.users.Create(ctx, req)
	}
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "create federated user")
	}
	return user, nil
}

// federatedUserName derives a local user name from a federated identity.
// Provider display names may contain characters the name rules reject, so
// the result is sanitized; the email local part is the fallback.
func federatedUserName(identity domainauth.Identity) string {
	name := sanitizeUserName(identity.Name)
	if name == "" {
		if at := strings.IndexByte(identity.Email, '@'); at > 0 {
			name = sanitizeUserName(identity.Email[:at])
		}
	}
	if name == "" {
		name = sanitizeUserName(identity.Subject)
	}
	return name
}

func sanitizeUserName(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '.', r == '-':
			b.WriteRune(r)
		case r == ' ':
			b.WriteByte('.')
		}
	}
	out := strings.Trim(b.String(), ".-")
	if len(out) > 64 {
		out = out[:64]
	}
	return out
}
