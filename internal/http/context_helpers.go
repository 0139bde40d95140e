package httpx

import (
	"context"

	domainauth "github.com/quillhq/quill/internal/domain/auth"
)

// sessionKey is an unexported context key type for the authenticated session.
type sessionKey struct{}

// SetSessionInContext returns a copy of ctx carrying the session.
func SetSessionInContext(ctx context.Context, s *domainauth.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// GetSessionFromContext returns the session stored in ctx, if any.
func GetSessionFromContext(ctx context.Context) (*domainauth.Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(*domainauth.Session)
	if !ok || s == nil {
		return nil, false
	}
	return s, true
}

// IsGuest reports whether the request has no session or a guest one.
func IsGuest(ctx context.Context) bool {
	s, ok := GetSessionFromContext(ctx)
	return !ok || s.Principal.Role == domainauth.RoleGuest
}
