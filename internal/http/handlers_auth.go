package httpx

import (
	"context"
	"errors"
	"html"
	"log/slog"
	"net/http"

	domainauth "github.com/quillhq/quill/internal/domain/auth"
	"github.com/quillhq/quill/internal/domain/model"
	"github.com/quillhq/quill/internal/service"
)

// AuthServiceInterface defines the auth service operations the handlers use.
type AuthServiceInterface interface {
	Register(ctx context.Context, in service.RegisterInput) (*model.User, domainauth.Session, error)
	Login(ctx context.Context, identifier, password string) (domainauth.Session, error)
	Logout(ctx context.Context, sessionID string) error
	GetSession(ctx context.Context, sessionID string) (domainauth.Session, error)
	CurrentUser(ctx context.Context, p domainauth.Principal) (*model.User, error)
	BeginOAuth(ctx context.Context) (*service.BeginLoginResult, error)
	CompleteOAuth(ctx context.Context, in service.CompleteLoginInput) (*model.User, domainauth.Session, error)
	HasProvider() bool
}

// AuthHandlers provides HTTP handlers for authentication operations.
type AuthHandlers struct {
	Svc     AuthServiceInterface
	Cookies *SessionCookies
	// ClientOrigin is where the browser lands after a federated login.
	ClientOrigin string
	Logger       *slog.Logger
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// registerRequest is the body for POST /api/auth/register.
type registerRequest struct {
	Email     string `json:"email"`
	Name      string `json:"name"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Register handles new local account creation.
// POST /api/auth/register.
//
// A successful registration also logs the new user in, so the response
// carries the session cookie.
func (h *AuthHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	_, session, err := h.Svc.Register(r.Context(), service.RegisterInput{
		Email:     req.Email,
		Name:      req.Name,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		WriteAppError(w, err)
		return
	}

	if err := h.Cookies.Set(w, r, session); err != nil {
		h.logger().ErrorContext(r.Context(), "setting session cookie failed", slog.Any("error", err))
		WriteError(w, ErrorParams{
			Code:    http.StatusInternalServerError,
			ErrCode: "session_cookie_failed",
			Err:     errors.New("internal server error"),
		})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"success": true})
}

// loginRequest is the body for POST /api/auth/login. The identifier is
// matched against email or name depending on server configuration.
type loginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// Login handles local credential login.
// POST /api/auth/login.
//
// An unknown identifier yields 404 and a bad password 401, matching the
// behavior clients already depend on.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	session, err := h.Svc.Login(r.Context(), req.Identifier, req.Password)
	if err != nil {
		WriteAppError(w, err)
		return
	}

	if err := h.Cookies.Set(w, r, session); err != nil {
		h.logger().ErrorContext(r.Context(), "setting session cookie failed", slog.Any("error", err))
		WriteError(w, ErrorParams{
			Code:    http.StatusInternalServerError,
			ErrCode: "session_cookie_failed",
			Err:     errors.New("internal server error"),
		})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"success": true})
}

// Logout invalidates the server-side session and clears the cookie.
// POST /api/auth/logout.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	sessionID := h.Cookies.Read(r)
	if err := h.Svc.Logout(r.Context(), sessionID); err != nil {
		h.logger().WarnContext(r.Context(), "logout failed", slog.Any("error", err))
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "logout_failed",
			Err:     errors.New("logout failed"),
		})
		return
	}

	h.Cookies.Clear(w, r)
	WriteJSON(w, http.StatusOK, map[string]any{"success": true})
}

// Session reports whether the request carries a valid session.
// GET /api/auth/session.
func (h *AuthHandlers) Session(w http.ResponseWriter, r *http.Request) {
	sessionID := h.Cookies.Read(r)
	session, err := h.Svc.GetSession(r.Context(), sessionID)
	if err != nil {
		// Stale cookies get cleaned up on the way out.
		if sessionID != "" {
			h.Cookies.Clear(w, r)
		}
		WriteAppError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"user":    session.Principal,
	})
}

// Me returns the full user record for the authenticated session.
// GET /api/auth/me.
func (h *AuthHandlers) Me(w http.ResponseWriter, r *http.Request) {
	session, ok := GetSessionFromContext(r.Context())
	if !ok {
		WriteError(w, ErrorParams{
			Code:    http.StatusUnauthorized,
			ErrCode: "authentication_required",
			Err:     errors.New("authentication required"),
		})
		return
	}

	user, err := h.Svc.CurrentUser(r.Context(), session.Principal)
	if err != nil {
		WriteAppError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"data": user})
}

// OAuthStart redirects the browser to the identity provider.
// GET /auth/google.
func (h *AuthHandlers) OAuthStart(w http.ResponseWriter, r *http.Request) {
	result, err := h.Svc.BeginOAuth(r.Context())
	if err != nil {
		WriteAppError(w, err)
		return
	}

	h.Cookies.SetOAuthCookies(w, r, result.State, result.Nonce)
	http.Redirect(w, r, result.AuthURL, http.StatusFound)
}

// OAuthCallback completes the federated login.
// GET /auth/google/callback?code=<code>&state=<state>.
//
// Failures render a minimal HTML page because the IdP navigates the whole
// browser here; there is no API client to consume a JSON error.
func (h *AuthHandlers) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	cookieState, nonce := h.Cookies.ReadOAuthCookies(r)

	if code == "" || state == "" {
		h.callbackFailure(w, r, "missing code or state parameter")
		return
	}
	if cookieState == "" || cookieState != state {
		h.callbackFailure(w, r, "invalid or missing state parameter")
		return
	}

	_, session, err := h.Svc.CompleteOAuth(r.Context(), service.CompleteLoginInput{
		Code:  code,
		State: state,
		Nonce: nonce,
	})
	if err != nil {
		h.logger().WarnContext(r.Context(), "federated login failed", slog.Any("error", err))
		h.callbackFailure(w, r, appErrorMessage(err))
		return
	}

	h.Cookies.ClearOAuthCookies(w, r)
	if err := h.Cookies.Set(w, r, session); err != nil {
		h.logger().ErrorContext(r.Context(), "setting session cookie failed", slog.Any("error", err))
		h.callbackFailure(w, r, "internal server error")
		return
	}

	redirect := h.ClientOrigin
	if redirect == "" {
		redirect = "/"
	}
	http.Redirect(w, r, redirect, http.StatusFound)
}

// callbackFailure writes the 401 HTML page shown when a federated login
// is rejected.
func (h *AuthHandlers) callbackFailure(w http.ResponseWriter, r *http.Request, message string) {
	h.Cookies.ClearOAuthCookies(w, r)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusUnauthorized)
	if _, err := w.Write([]byte("<h1>" + html.EscapeString(message) + "</h1>")); err != nil {
		h.logger().DebugContext(r.Context(), "writing callback failure failed", slog.Any("error", err))
	}
}
