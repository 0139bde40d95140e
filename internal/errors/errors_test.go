package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "error without cause",
			err: &AppError{
				Code:    ErrCodeNotFound,
				Message: "user not found",
			},
			want: "user not found",
		},
		{
			name: "error with cause",
			err: &AppError{
				Code:    ErrCodeInternal,
				Message: "failed to process",
				Cause:   errors.New("underlying error"),
			},
			want: "failed to process: underlying error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("AppError.Error() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := &AppError{
		Code:    ErrCodeInternal,
		Message: "wrapped error",
		Cause:   cause,
	}

	if unwrapped := err.Unwrap(); !errors.Is(unwrapped, cause) {
		t.Errorf("AppError.Unwrap() = %v, want %v", unwrapped, cause)
	}

	// errors.Is should see through the AppError wrapper.
	if !errors.Is(err, cause) {
		t.Error("errors.Is should match the wrapped cause")
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		wantCode ErrorCode
		check    func(error) bool
	}{
		{name: "not found", err: NotFound("x"), wantCode: ErrCodeNotFound, check: IsNotFound},
		{name: "conflict", err: Conflict("x"), wantCode: ErrCodeConflict, check: IsConflict},
		{name: "unauthorized", err: Unauthorized("x"), wantCode: ErrCodeUnauthorized, check: IsUnauthorized},
		{name: "validation", err: Validation("x"), wantCode: ErrCodeValidation, check: IsValidation},
		{name: "internal", err: Internal("x"), wantCode: ErrCodeInternal, check: IsInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.wantCode {
				t.Errorf("code = %v, want %v", tt.err.Code, tt.wantCode)
			}
			if !tt.check(tt.err) {
				t.Errorf("predicate did not match %v", tt.wantCode)
			}
		})
	}
}

func TestConflictField(t *testing.T) {
	err := ConflictField("email", "already taken")
	if err.Field != "email" {
		t.Errorf("Field = %q, want %q", err.Field, "email")
	}
	if GetField(err) != "email" {
		t.Errorf("GetField() = %q, want %q", GetField(err), "email")
	}
}

func TestWrap(t *testing.T) {
	if Wrap(nil, ErrCodeInternal, "x") != nil {
		t.Error("Wrap(nil) should return nil")
	}

	cause := errors.New("boom")
	err := Wrapf(cause, ErrCodeInternal, "stage %d failed", 2)
	if err.Message != "stage 2 failed" {
		t.Errorf("Message = %q", err.Message)
	}
	if !errors.Is(err, cause) {
		t.Error("wrapped cause lost")
	}
}

func TestGetCode_NonAppError(t *testing.T) {
	if GetCode(fmt.Errorf("plain")) != "" {
		t.Error("GetCode of plain error should be empty")
	}
	if GetCode(nil) != "" {
		t.Error("GetCode of nil should be empty")
	}
}
