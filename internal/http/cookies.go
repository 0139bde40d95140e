package httpx

import (
	"crypto/sha256"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/securecookie"

	domainauth "github.com/quillhq/quill/internal/domain/auth"
)

const (
	oauthStateCookie = "oauth_state"
	oauthNonceCookie = "oauth_nonce"

	// OAuth cookies only need to survive the round trip to the IdP.
	oauthCookieMaxAge = 600
)

// CookieConfig describes how session cookies are issued.
type CookieConfig struct {
	// Name is the session cookie name.
	Name string
	// Secret signs cookie values so clients cannot forge session IDs.
	Secret string
	// Domain optionally scopes cookies to a parent domain.
	Domain string
	// Secure forces the Secure attribute even on plain HTTP requests.
	Secure bool
	// SameSite applies to every cookie this manager issues.
	SameSite http.SameSite
}

// SessionCookies signs, reads, and clears the session cookie plus the
// short-lived OAuth state and nonce cookies.
type SessionCookies struct {
	cfg CookieConfig
	sc  *securecookie.SecureCookie
}

// NewSessionCookies builds a cookie manager from cfg. The signing key is
// derived from cfg.Secret so operators configure a single opaque string.
func NewSessionCookies(cfg CookieConfig) *SessionCookies {
	if cfg.Name == "" {
		cfg.Name = "qid"
	}
	if cfg.SameSite == 0 {
		cfg.SameSite = http.SameSiteLaxMode
	}
	hashKey := sha256.Sum256([]byte(cfg.Secret))
	sc := securecookie.New(hashKey[:], nil)
	sc.MaxAge(0) // session expiry is enforced server-side
	return &SessionCookies{cfg: cfg, sc: sc}
}

// Name returns the session cookie name.
func (c *SessionCookies) Name() string { return c.cfg.Name }

// Set writes the signed session cookie with an expiry matching the session.
func (c *SessionCookies) Set(w http.ResponseWriter, r *http.Request, s domainauth.Session) error {
	encoded, err := c.sc.Encode(c.cfg.Name, s.ID)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     c.cfg.Name,
		Value:    encoded,
		Path:     "/",
		Domain:   c.cfg.Domain,
		HttpOnly: true,
		Secure:   c.isSecure(r),
		SameSite: c.cfg.SameSite,
		MaxAge:   int(time.Until(s.ExpiresAt).Seconds()),
	})
	return nil
}

// Read returns the session ID from the request's signed cookie.
// A missing or tampered cookie returns an empty ID.
func (c *SessionCookies) Read(r *http.Request) string {
	cookie, err := r.Cookie(c.cfg.Name)
	if err != nil {
		return ""
	}
	var sessionID string
	if err := c.sc.Decode(c.cfg.Name, cookie.Value, &sessionID); err != nil {
		return ""
	}
	return sessionID
}

// Clear expires the session cookie on the client.
func (c *SessionCookies) Clear(w http.ResponseWriter, r *http.Request) {
	c.clearCookie(w, r, c.cfg.Name)
}

// SetOAuthCookies stores the OAuth state and nonce for the callback to verify.
func (c *SessionCookies) SetOAuthCookies(w http.ResponseWriter, r *http.Request, state, nonce string) {
	isSecure := c.isSecure(r)
	for name, value := range map[string]string{
		oauthStateCookie: state,
		oauthNonceCookie: nonce,
	} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    value,
			Path:     "/",
			Domain:   c.cfg.Domain,
			HttpOnly: true,
			Secure:   isSecure,
			SameSite: http.SameSiteLaxMode,
			MaxAge:   oauthCookieMaxAge,
		})
	}
}

// ReadOAuthCookies returns the stored OAuth state and nonce values.
func (c *SessionCookies) ReadOAuthCookies(r *http.Request) (state, nonce string) {
	if cookie, err := r.Cookie(oauthStateCookie); err == nil {
		state = cookie.Value
	}
	if cookie, err := r.Cookie(oauthNonceCookie); err == nil {
		nonce = cookie.Value
	}
	return state, nonce
}

// ClearOAuthCookies removes the state and nonce cookies after the callback.
func (c *SessionCookies) ClearOAuthCookies(w http.ResponseWriter, r *http.Request) {
	c.clearCookie(w, r, oauthStateCookie)
	c.clearCookie(w, r, oauthNonceCookie)
}

// clearCookie expires a cookie immediately, mirroring the attributes used
// when setting it so browsers match the cookie being deleted.
func (c *SessionCookies) clearCookie(w http.ResponseWriter, r *http.Request, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Domain:   c.cfg.Domain,
		HttpOnly: true,
		Secure:   c.isSecure(r),
		SameSite: c.cfg.SameSite,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0).UTC(),
	})
}

// isSecure reports whether the request arrived over TLS, directly or via
// a terminating proxy.
func (c *SessionCookies) isSecure(r *http.Request) bool {
	if c.cfg.Secure {
		return true
	}
	return r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}

// SameSiteFromString maps a config value to http.SameSite, defaulting to lax.
func SameSiteFromString(v string) http.SameSite {
	switch strings.ToLower(v) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
