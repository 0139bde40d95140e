package httpx

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mocks "github.com/quillhq/quill/internal/mocks/auth"
	"github.com/quillhq/quill/internal/service"
)

type routerFixture struct {
	handler  http.Handler
	cookies  *SessionCookies
	sessions *mocks.MemorySessionStore
}

func newRouterFixture(t *testing.T, withProvider bool) *routerFixture {
	t.Helper()

	sessions := mocks.NewMemorySessionStore()
	opts := service.AuthServiceOptions{
		Users:    mocks.NewMemoryUserStore(),
		Sessions: sessions,
		Hasher:   &mocks.PlainHasher{},
		Roles:    &mocks.StaticRoleMapper{AdminGroup: "admins", UserGroup: "users"},
	}
	if withProvider {
		opts.Provider = mocks.NewMockAuthProvider()
	}

	cookies := newTestCookies()
	handler := NewRouter(RouterServices{
		Auth:         service.NewAuthService(opts),
		Cookies:      cookies,
		ClientOrigin: "http://localhost:3000",
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	return &routerFixture{handler: handler, cookies: cookies, sessions: sessions}
}

func (f *routerFixture) do(method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)
	return w
}

func sessionCookieFrom(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	cookie := findCookie(t, w, "qid")
	require.NotNil(t, cookie, "response should carry a session cookie")
	return cookie
}

func TestRouter_Health(t *testing.T) {
	f := newRouterFixture(t, false)

	w := f.do(http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = f.do(http.MethodHead, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestRouter_RegisterLoginLogoutFlow(t *testing.T) {
	f := newRouterFixture(t, false)

	// Register a user; registration logs in, so /me works right away.
	w := f.do(http.MethodPost, "/api/auth/register",
		`{"email":"alice@example.com","name":"alice","password":"pw123"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	cookie := sessionCookieFrom(t, w)

	w = f.do(http.MethodGet, "/api/auth/me", "", cookie)
	require.Equal(t, http.StatusOK, w.Code)
	var me struct {
		Data struct {
			Email string `json:"email"`
			Name  string `json:"name"`
			Role  string `json:"role"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&me))
	assert.Equal(t, "alice@example.com", me.Data.Email)
	assert.Equal(t, "alice", me.Data.Name)
	assert.Equal(t, "USER", me.Data.Role)

	// Session check reports the principal.
	w = f.do(http.MethodGet, "/api/auth/session", "", cookie)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody(t, w)
	assert.Equal(t, true, resp["success"])

	// Logout invalidates the session server-side.
	w = f.do(http.MethodPost, "/api/auth/logout", "", cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, f.sessions.Len())

	// The old cookie no longer authenticates.
	w = f.do(http.MethodGet, "/api/auth/me", "", cookie)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_LoginWithRegisteredUser(t *testing.T) {
	f := newRouterFixture(t, false)

	w := f.do(http.MethodPost, "/api/auth/register",
		`{"email":"bob@example.com","name":"bob","password":"hunter2"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(http.MethodPost, "/api/auth/login",
		`{"identifier":"bob@example.com","password":"hunter2"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	sessionCookieFrom(t, w)

	w = f.do(http.MethodPost, "/api/auth/login",
		`{"identifier":"bob@example.com","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = f.do(http.MethodPost, "/api/auth/login",
		`{"identifier":"nobody@example.com","password":"hunter2"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_DuplicateRegistration(t *testing.T) {
	f := newRouterFixture(t, false)

	body := `{"email":"carol@example.com","name":"carol","password":"pw"}`
	w := f.do(http.MethodPost, "/api/auth/register", body)
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(http.MethodPost, "/api/auth/register", body)
	assert.Equal(t, http.StatusConflict, w.Code)
	resp := decodeBody(t, w)
	assert.Equal(t, "User name/email taken", resp["message"])
}

func TestRouter_OAuthFlow(t *testing.T) {
	f := newRouterFixture(t, true)

	// Kick off the provider redirect.
	w := f.do(http.MethodGet, "/auth/google", "")
	require.Equal(t, http.StatusFound, w.Code)
	assert.Contains(t, w.Header().Get("Location"), "https://mock-idp/auth")

	resp := w.Result()
	defer resp.Body.Close()
	var stateCookie, nonceCookie *http.Cookie
	for _, cookie := range resp.Cookies() {
		switch cookie.Name {
		case "oauth_state":
			stateCookie = cookie
		case "oauth_nonce":
			nonceCookie = cookie
		}
	}
	require.NotNil(t, stateCookie)
	require.NotNil(t, nonceCookie)

	// Complete the callback with the state round-tripped by the IdP.
	w = f.do(http.MethodGet,
		"/auth/google/callback?code=dev&state="+stateCookie.Value, "",
		stateCookie, nonceCookie)
	require.Equal(t, http.StatusFound, w.Code, w.Body.String())
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Location"))
	cookie := sessionCookieFrom(t, w)

	// The federated user exists and is logged in.
	w = f.do(http.MethodGet, "/api/auth/me", "", cookie)
	require.Equal(t, http.StatusOK, w.Code)
	var me struct {
		Data struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&me))
	assert.Equal(t, "mock.user@example.com", me.Data.Email)
	assert.Empty(t, me.Data.Password, "federated accounts have no local password")
}

func TestRouter_OAuthRoutesAbsentWithoutProvider(t *testing.T) {
	f := newRouterFixture(t, false)

	w := f.do(http.MethodGet, "/auth/google", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(http.MethodGet, "/auth/google/callback?code=x&state=y", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_CORSHeaders(t *testing.T) {
	f := newRouterFixture(t, false)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/session", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)

	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	f := newRouterFixture(t, false)

	w := f.do(http.MethodGet, "/api/auth/login", "")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
