package bootstrap

import (
	"database/sql"
	"log/slog"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/quillhq/quill/config"
	"github.com/quillhq/quill/internal/adapters/authroles"
	"github.com/quillhq/quill/internal/adapters/bcrypthash"
	"github.com/quillhq/quill/internal/adapters/devauth"
	"github.com/quillhq/quill/internal/adapters/oidc"
	redisadapter "github.com/quillhq/quill/internal/adapters/redis"
	"github.com/quillhq/quill/internal/data"
	"github.com/quillhq/quill/internal/ports"
	"github.com/quillhq/quill/internal/service"
)

// AuthDeps contains dependencies for building the auth service.
type AuthDeps struct {
	Config config.AuthConfig
	DB     *sql.DB
	Redis  redis.UniversalClient
	Logger *slog.Logger
}

// BuildAuthService wires the auth service from configuration.
//
// Local credential login always works; the federated provider is optional
// and selected by the configured auth mode. A misconfigured provider
// degrades to local-only auth rather than failing startup.
func BuildAuthService(deps AuthDeps) *service.AuthService {
	sessionStore := redisadapter.NewSessionStoreWithPrefix(deps.Redis, "session:")

	return service.NewAuthService(service.AuthServiceOptions{
		Users:    data.NewUserRepo(deps.DB),
		Sessions: sessionStore,
		Hasher:   bcrypthash.New(),
		Provider: buildProvider(deps),
		Roles: authroles.StaticRoleMapper{
			AdminGroup: deps.Config.AdminGroup,
			UserGroup:  deps.Config.UserGroup,
		},
		LoginByName: deps.Config.LocalField == config.LoginFieldName,
		SessionTTL:  deps.Config.Session.TTL,
	})
}

//nolint:ireturn // the provider port is intentionally abstract here.
func buildProvider(deps AuthDeps) ports.AuthProvider {
	switch deps.Config.Mode {
	case config.AuthModeMock:
		return buildDevProvider(deps)
	case config.AuthModeOAuth:
		return buildOIDCProvider(deps)
	default:
		return nil
	}
}

//nolint:ireturn // the provider port is intentionally abstract here.
func buildDevProvider(deps AuthDeps) ports.AuthProvider {
	dev := deps.Config.DevAuth
	name := dev.Email
	if i := strings.Index(name, "@"); i > 0 {
		name = name[:i]
	}

	prov, err := devauth.NewProvider(devauth.Config{
		Subject: "dev-" + name,
		Email:   dev.Email,
		Name:    name,
		Groups:  dev.Groups,
	})
	if err != nil {
		if deps.Logger != nil {
			deps.Logger.Warn("failed to create dev auth provider, federated login disabled", "error", err)
		}
		return nil
	}
	return prov
}

//nolint:ireturn // the provider port is intentionally abstract here.
func buildOIDCProvider(deps AuthDeps) ports.AuthProvider {
	oauth := deps.Config.OAuth
	if oauth.DiscoveryURL == "" || oauth.ClientID == "" || oauth.ClientSecret == "" {
		if deps.Logger != nil {
			deps.Logger.Warn("oauth mode selected but required config missing; federated login disabled",
				"discovery_url_empty", oauth.DiscoveryURL == "",
				"client_id_empty", oauth.ClientID == "",
				"client_secret_empty", oauth.ClientSecret == "",
			)
		}
		return nil
	}

	prov, err := oidc.NewProvider(oidc.ProviderConfig{
		ClientID:     oauth.ClientID,
		ClientSecret: oauth.ClientSecret,
		RedirectURL:  oauth.RedirectURL,
		Scope:        oauth.Scope,
		DiscoveryURL: oauth.DiscoveryURL,
	})
	if err != nil {
		if deps.Logger != nil {
			deps.Logger.Warn("failed to create OIDC provider, federated login disabled", "error", err)
		}
		return nil
	}
	return prov
}
