package config

import (
	"fmt"
	"strings"
	"time"
)

// AuthMode represents the federated authentication mode for the application.
// Local (email/password) authentication is always available; the mode only
// selects which identity-provider adapter handles the OAuth flow.
type AuthMode string

const (
	// AuthModeOAuth uses a real OAuth/OIDC identity provider.
	AuthModeOAuth AuthMode = "oauth"
	// AuthModeMock uses mock/dev authentication (for development only).
	AuthModeMock AuthMode = "mock"
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	switch v {
	case "oauth", "mock":
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: oauth, mock)", v)
	}
}

// LoginField selects which user column the local strategy matches the
// login identifier against.
type LoginField string

const (
	// LoginFieldEmail matches the identifier against the email column.
	LoginFieldEmail LoginField = "email"
	// LoginFieldName matches the identifier against the name column.
	LoginFieldName LoginField = "name"
)

// UnmarshalText implements encoding.TextUnmarshaler for LoginField.
func (f *LoginField) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	switch v {
	case "email", "name":
		*f = LoginField(v)
		return nil
	default:
		return fmt.Errorf("invalid LoginField: %q (valid options: email, name)", v)
	}
}

// OAuthConfig contains OAuth/OIDC identity-provider configuration.
type OAuthConfig struct {
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	RedirectURL  string `env:"REDIRECT_URL"  envDefault:"http://localhost:8080/auth/google/callback"`
	Scope        string `env:"SCOPE"         envDefault:"openid profile email"`
	DiscoveryURL string `env:"DISCOVERY_URL"`
}

// DevAuthConfig controls the mock/dev identity used when AUTH_MODE=mock.
type DevAuthConfig struct {
	Email     string   `env:"EMAIL"      envDefault:"dev@example.com"`
	FirstName string   `env:"FIRST_NAME" envDefault:"Dev"`
	LastName  string   `env:"LAST_NAME"  envDefault:"User"`
	Groups    []string `env:"GROUPS"     envDefault:"users"            envSeparator:";"`
}

// SessionConfig groups session and cookie settings.
//
// The reference configuration is deliberately permissive: the cookie is
// http-only but not TLS-only and SameSite defaults to lax. Deployments
// terminate TLS in front of the app and set SESSION_COOKIE_SECURE=true.
type SessionConfig struct {
	// CookieName is the session cookie name.
	CookieName string `env:"SESSION_COOKIE_NAME" envDefault:"qid"`

	// Secret signs the session cookie value so a client cannot forge
	// or swap session identifiers.
	Secret string `env:"SESSION_SECRET" envDefault:"quill-insecure-dev-secret"`

	// TTL is the server-side session lifetime.
	TTL time.Duration `env:"SESSION_TTL" envDefault:"24h"`

	// CookieSecure scopes the cookie to TLS connections.
	CookieSecure bool `env:"SESSION_COOKIE_SECURE" envDefault:"false"`

	// CookieSameSite is one of "lax", "strict", "none".
	CookieSameSite string `env:"SESSION_COOKIE_SAMESITE" envDefault:"lax"`
}

// Sanitize applies guardrails to session configuration values.
func (s *SessionConfig) Sanitize() {
	if s.CookieName == "" {
		s.CookieName = "qid"
	}
	if s.TTL <= 0 {
		s.TTL = 24 * time.Hour
	}
	switch strings.ToLower(s.CookieSameSite) {
	case "lax", "strict", "none":
		s.CookieSameSite = strings.ToLower(s.CookieSameSite)
	default:
		s.CookieSameSite = "lax"
	}
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// Mode determines which federated auth provider to use.
	Mode AuthMode `env:"AUTH_MODE" envDefault:"oauth"`

	// LocalField selects the user column matched by the local strategy.
	LocalField LoginField `env:"LOCAL_LOGIN_FIELD" envDefault:"email"`

	// OAuth configuration (used when Mode=oauth).
	OAuth OAuthConfig `envPrefix:"OAUTH_"`

	// DevAuth configuration (used when Mode=mock).
	DevAuth DevAuthConfig `envPrefix:"DEV_AUTH_"`

	// AdminGroup is the IdP group that maps to the admin role for
	// users created via federated login.
	AdminGroup string `env:"ADMIN_GROUP" envDefault:"admins"`

	// UserGroup is the IdP group that maps to the regular user role.
	UserGroup string `env:"USER_GROUP" envDefault:"users"`

	// Session configuration.
	Session SessionConfig
}

// Sanitize applies guardrails to auth configuration values.
func (a *AuthConfig) Sanitize() {
	a.Session.Sanitize()
	if a.LocalField == "" {
		a.LocalField = LoginFieldEmail
	}
}
