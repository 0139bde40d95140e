package httpx

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/quillhq/quill/internal/errors"
)

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	t.Run("valid body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"alice"}`))
		w := httptest.NewRecorder()

		var p payload
		require.True(t, DecodeJSON(w, req, &p))
		assert.Equal(t, "alice", p.Name)
	})

	t.Run("unknown field", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"alice","extra":1}`))
		w := httptest.NewRecorder()

		var p payload
		assert.False(t, DecodeJSON(w, req, &p))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`))
		w := httptest.NewRecorder()

		var p payload
		assert.False(t, DecodeJSON(w, req, &p))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestWriteJSON(t *testing.T) {
	w := httptest.NewRecorder()
	WriteJSON(w, http.StatusCreated, map[string]string{"hello": "world"})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"hello":"world"}`, w.Body.String())
}

func TestWriteJSON_EncodingFailure(t *testing.T) {
	w := httptest.NewRecorder()
	WriteJSON(w, http.StatusOK, make(chan int))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestWriteError(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, ErrorParams{
		Code:    http.StatusConflict,
		ErrCode: "conflict",
		Err:     errors.New("User name/email taken"),
	})

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.JSONEq(t, `{"error":"conflict","message":"User name/email taken"}`, w.Body.String())
}

func TestWriteAppError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantCode    string
		wantMessage string
	}{
		{
			name:        "not found",
			err:         apperrors.NotFound("no such user"),
			wantStatus:  http.StatusNotFound,
			wantCode:    "not_found",
			wantMessage: "no such user",
		},
		{
			name:        "conflict",
			err:         apperrors.ConflictField("register", "User name/email taken"),
			wantStatus:  http.StatusConflict,
			wantCode:    "conflict",
			wantMessage: "User name/email taken",
		},
		{
			name:        "unauthorized",
			err:         apperrors.Unauthorized("invalid credentials"),
			wantStatus:  http.StatusUnauthorized,
			wantCode:    "unauthorized",
			wantMessage: "invalid credentials",
		},
		{
			name:        "validation",
			err:         apperrors.Validation("email is required"),
			wantStatus:  http.StatusBadRequest,
			wantCode:    "validation",
			wantMessage: "email is required",
		},
		{
			name:        "internal hides details",
			err:         apperrors.Wrap(errors.New("pq: connection refused"), apperrors.ErrCodeInternal, "query users"),
			wantStatus:  http.StatusInternalServerError,
			wantCode:    "internal",
			wantMessage: "internal server error",
		},
		{
			name:        "plain error maps to 500",
			err:         errors.New("boom"),
			wantStatus:  http.StatusInternalServerError,
			wantCode:    "internal",
			wantMessage: "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteAppError(w, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			resp := decodeBody(t, w)
			assert.Equal(t, tt.wantCode, resp["error"])
			assert.Equal(t, tt.wantMessage, resp["message"])
		})
	}
}
