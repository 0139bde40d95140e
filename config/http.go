package config

import "strings"

// HTTPConfig contains HTTP server configuration.
type HTTPConfig struct {
	// Addr is the address to bind the HTTP server to.
	Addr string `env:"HTTP_ADDR" envDefault:":8080"`

	// BaseURL is the base URL of the application (e.g., "https://app.example.com").
	BaseURL string `env:"APP_BASE_URL" envDefault:"http://localhost:8080"`

	// ClientOrigin is the browser client's origin. It is the CORS allow-origin
	// and the post-login redirect target for the OAuth callback.
	ClientOrigin string `env:"CLIENT_ORIGIN" envDefault:"http://localhost:3000"`

	// CookieDomain is the domain for session cookies.
	// Leave empty to use the request domain.
	CookieDomain string `env:"APP_COOKIE_DOMAIN" envDefault:""`
}

// Sanitize applies guardrails to HTTP configuration values.
func (h *HTTPConfig) Sanitize() {
	if h.Addr == "" {
		h.Addr = ":8080"
	}
	h.ClientOrigin = strings.TrimRight(h.ClientOrigin, "/")
	if h.ClientOrigin == "" {
		h.ClientOrigin = "http://localhost:3000"
	}
}
