package bootstrap

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/quillhq/quill/config"
	httpx "github.com/quillhq/quill/internal/http"
	"github.com/quillhq/quill/internal/observability/statsd"
	"github.com/quillhq/quill/internal/service"
)

// HTTPServerConfig contains configuration for the HTTP server.
type HTTPServerConfig struct {
	Config  *config.AppConfig
	Auth    *service.AuthService
	Metrics statsd.Sink
	Logger  *slog.Logger
}

// NewHTTPServer builds the HTTP server without starting it.
func NewHTTPServer(cfg *HTTPServerConfig) *http.Server {
	if cfg == nil {
		return nil
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	appCfg := cfg.Config
	if appCfg == nil {
		appCfg = &config.AppConfig{}
	}

	cookies := httpx.NewSessionCookies(httpx.CookieConfig{
		Name:     appCfg.Auth.Session.CookieName,
		Secret:   appCfg.Auth.Session.Secret,
		Domain:   appCfg.HTTP.CookieDomain,
		Secure:   appCfg.Auth.Session.CookieSecure,
		SameSite: httpx.SameSiteFromString(appCfg.Auth.Session.CookieSameSite),
	})

	handler := httpx.NewRouter(httpx.RouterServices{
		Auth:         cfg.Auth,
		Cookies:      cookies,
		ClientOrigin: appCfg.HTTP.ClientOrigin,
		Logger:       logger,
		Metrics:      cfg.Metrics,
	})

	addr := appCfg.HTTP.Addr
	// Guard against empty addr to avoid listening on Go default
	if addr == "" {
		addr = ":8080"
	}

	return &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
}

// ShutdownHTTPServer gracefully shuts down the HTTP server.
func ShutdownHTTPServer(ctx context.Context, server *http.Server, logger *slog.Logger) error {
	if server == nil {
		return nil
	}

	if logger != nil {
		logger.Info("shutting down HTTP server")
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if logger != nil {
		logger.Info("HTTP server stopped")
	}

	return nil
}
