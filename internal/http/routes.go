package httpx

import (
	"log/slog"
	"net/http"

	"github.com/quillhq/quill/internal/observability/statsd"
	"github.com/quillhq/quill/internal/service"
)

// RouterServices holds everything the HTTP router needs.
type RouterServices struct {
	Auth    *service.AuthService
	Cookies *SessionCookies
	// ClientOrigin is the browser app origin, used for CORS and as the
	// post-login redirect target for federated logins.
	ClientOrigin string
	Logger       *slog.Logger
	// Metrics is optional; nil disables metric emission.
	Metrics statsd.Sink
}

// NewRouter creates and configures the HTTP router.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()

	authHandlers := &AuthHandlers{
		Svc:          services.Auth,
		Cookies:      services.Cookies,
		ClientOrigin: services.ClientOrigin,
		Logger:       logger,
	}
	authMW := &AuthMiddleware{Svc: services.Auth, Cookies: services.Cookies}

	registerAuthRoutes(mux, authHandlers, authMW)
	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))

	var handler http.Handler = mux
	handler = CORS(services.ClientOrigin)(handler)
	handler = Metrics(services.Metrics)(handler)
	handler = Logging(logger)(handler)
	handler = Recover(logger)(handler)
	return handler
}

func registerAuthRoutes(mux *http.ServeMux, h *AuthHandlers, mw *AuthMiddleware) {
	mux.HandleFunc("POST /api/auth/register", h.Register)
	mux.HandleFunc("POST /api/auth/login", h.Login)
	mux.HandleFunc("POST /api/auth/logout", h.Logout)
	mux.HandleFunc("GET /api/auth/session", h.Session)
	mux.Handle("GET /api/auth/me", mw.RequireAuth(http.HandlerFunc(h.Me)))

	// Federated login routes are skipped entirely when no provider is
	// configured, so the endpoints 404 instead of erroring at runtime.
	if h.Svc.HasProvider() {
		mux.HandleFunc("GET /auth/google", h.OAuthStart)
		mux.HandleFunc("GET /auth/google/callback", h.OAuthCallback)
	}
}
