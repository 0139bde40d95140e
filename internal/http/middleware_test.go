package httpx

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/quillhq/quill/internal/domain/auth"
	apperrors "github.com/quillhq/quill/internal/errors"
)

func newTestMiddleware(svc AuthSessionService) *AuthMiddleware {
	return &AuthMiddleware{Svc: svc, Cookies: newTestCookies()}
}

func okHandler(sawSession *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if sawSession != nil {
			_, *sawSession = GetSessionFromContext(r.Context())
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireAuth_ValidSession(t *testing.T) {
	mw := newTestMiddleware(&mockAuthService{})

	var sawSession bool
	handler := mw.RequireAuth(okHandler(&sawSession))

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	attachSessionCookie(t, mw.Cookies, req, testSession())
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, sawSession, "session should be attached to the request context")
}

func TestRequireAuth_NoCookie(t *testing.T) {
	mw := newTestMiddleware(&mockAuthService{})

	handler := mw.RequireAuth(okHandler(nil))

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	resp := decodeBody(t, w)
	assert.Equal(t, "authentication_required", resp["error"])
}

func TestRequireAuth_TamperedCookie(t *testing.T) {
	mw := newTestMiddleware(&mockAuthService{})

	handler := mw.RequireAuth(okHandler(nil))

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: "qid", Value: "forged-session-id"})
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuth_ExpiredSession(t *testing.T) {
	svc := &mockAuthService{
		getSessionFunc: func(_ context.Context, _ string) (domainauth.Session, error) {
			return domainauth.Session{}, apperrors.Unauthorized("session expired")
		},
	}
	mw := newTestMiddleware(svc)

	handler := mw.RequireAuth(okHandler(nil))

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	attachSessionCookie(t, mw.Cookies, req, testSession())
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name         string
		userRole     domainauth.Role
		requiredRole domainauth.Role
		wantStatus   int
	}{
		{"admin accessing admin route", domainauth.RoleAdmin, domainauth.RoleAdmin, http.StatusOK},
		{"admin accessing user route", domainauth.RoleAdmin, domainauth.RoleUser, http.StatusOK},
		{"user accessing admin route", domainauth.RoleUser, domainauth.RoleAdmin, http.StatusForbidden},
		{"user accessing user route", domainauth.RoleUser, domainauth.RoleUser, http.StatusOK},
		{"guest accessing user route", domainauth.RoleGuest, domainauth.RoleUser, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockAuthService{
				getSessionFunc: func(_ context.Context, sessionID string) (domainauth.Session, error) {
					s := testSession()
					s.ID = sessionID
					s.Principal.Role = tt.userRole
					return s, nil
				},
			}
			mw := newTestMiddleware(svc)

			handler := mw.RequireRole(tt.requiredRole)(okHandler(nil))

			req := httptest.NewRequest(http.MethodGet, "/api/admin", nil)
			attachSessionCookie(t, mw.Cookies, req, testSession())
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestRequireRole_NoSession(t *testing.T) {
	mw := newTestMiddleware(&mockAuthService{})

	handler := mw.RequireRole(domainauth.RoleAdmin)(okHandler(nil))

	req := httptest.NewRequest(http.MethodGet, "/api/admin", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOptionalAuth(t *testing.T) {
	mw := newTestMiddleware(&mockAuthService{})

	t.Run("with session", func(t *testing.T) {
		var sawSession bool
		handler := mw.OptionalAuth(okHandler(&sawSession))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		attachSessionCookie(t, mw.Cookies, req, testSession())
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, sawSession)
	})

	t.Run("without session", func(t *testing.T) {
		var sawSession bool
		handler := mw.OptionalAuth(okHandler(&sawSession))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.False(t, sawSession)
	})
}

func TestHasRequiredRole(t *testing.T) {
	assert.True(t, hasRequiredRole(domainauth.RoleAdmin, domainauth.RoleGuest))
	assert.True(t, hasRequiredRole(domainauth.RoleUser, domainauth.RoleUser))
	assert.False(t, hasRequiredRole(domainauth.RoleGuest, domainauth.RoleUser))
	assert.False(t, hasRequiredRole(domainauth.Role("BOGUS"), domainauth.RoleGuest))
}

func TestCORS(t *testing.T) {
	const origin = "http://localhost:3000"

	t.Run("matching origin", func(t *testing.T) {
		handler := CORS(origin)(okHandler(nil))

		req := httptest.NewRequest(http.MethodGet, "/api/auth/session", nil)
		req.Header.Set("Origin", origin)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, origin, w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("preflight", func(t *testing.T) {
		handler := CORS(origin)(okHandler(nil))

		req := httptest.NewRequest(http.MethodOptions, "/api/auth/login", nil)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "POST")
	})

	t.Run("foreign origin gets no CORS headers", func(t *testing.T) {
		handler := CORS(origin)(okHandler(nil))

		req := httptest.NewRequest(http.MethodGet, "/api/auth/session", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestLogging(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusTeapot, w.Code)
}

func TestRecover(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := Recover(logger)(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		panic("boom")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	require.NotPanics(t, func() { handler.ServeHTTP(w, req) })
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
