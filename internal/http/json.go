package httpx

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	apperrors "github.com/quillhq/quill/internal/errors"
)

// DecodeJSON decodes the request body into dst, rejecting unknown fields.
// On failure it writes a 400 response and returns false.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "invalid_json",
			Err:     err,
		})
		return false
	}
	return true
}

// WriteJSON encodes v to a buffer first so an encoding failure never
// produces a half-written 200 response.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		slog.Default().Error("encoding response failed", slog.Any("error", err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		// Client likely went away mid-write.
		slog.Default().Debug("writing response failed", slog.Any("error", err))
	}
}

// ErrorParams describes a JSON error response.
type ErrorParams struct {
	Code    int
	ErrCode string
	Err     error
}

// WriteError writes a JSON error body of the form
// {"error": "<code>", "message": "<detail>"}.
func WriteError(w http.ResponseWriter, p ErrorParams) {
	msg := "unknown error"
	if p.Err != nil {
		msg = p.Err.Error()
	}
	WriteJSON(w, p.Code, map[string]string{
		"error":   p.ErrCode,
		"message": msg,
	})
}

// WriteAppError maps an application error to an HTTP status and writes it.
// Errors without an application code are treated as internal.
func WriteAppError(w http.ResponseWriter, err error) {
	code := apperrors.GetCode(err)
	if code == "" {
		code = apperrors.ErrCodeInternal
	}
	WriteError(w, ErrorParams{
		Code:    statusForError(err),
		ErrCode: string(code),
		Err:     errors.New(appErrorMessage(err)),
	})
}

// statusForError maps application error codes to HTTP status codes.
func statusForError(err error) int {
	switch {
	case apperrors.IsNotFound(err):
		return http.StatusNotFound
	case apperrors.IsConflict(err):
		return http.StatusConflict
	case apperrors.IsUnauthorized(err):
		return http.StatusUnauthorized
	case apperrors.IsValidation(err):
		return http.StatusBadRequest
	case apperrors.IsTimeout(err):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// appErrorMessage returns the user-facing message for an application error,
// hiding wrapped internals behind a generic message for 500s.
func appErrorMessage(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Code != apperrors.ErrCodeInternal {
		return appErr.Message
	}
	return "internal server error"
}
