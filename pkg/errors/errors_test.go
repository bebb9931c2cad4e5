package errors

import (
	"errors"
	"net/http"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(CodeValidation, "validation failed", http.StatusUnprocessableEntity)

	if err.Code != CodeValidation {
		t.Errorf("expected code %s, got %s", CodeValidation, err.Code)
	}
	if err.Message != "validation failed" {
		t.Errorf("expected message 'validation failed', got %s", err.Message)
	}
	if err.HTTPStatus != http.StatusUnprocessableEntity {
		t.Errorf("expected status %d, got %d", http.StatusUnprocessableEntity, err.HTTPStatus)
	}
}

func TestNewWithDomainCode(t *testing.T) {
	err := New("INSUFFICIENT_SEATS", "not enough seats left", http.StatusConflict)

	if err.Code != "INSUFFICIENT_SEATS" {
		t.Errorf("expected domain code to be preserved, got %s", err.Code)
	}
	if err.HTTPStatus != http.StatusConflict {
		t.Errorf("expected status %d, got %d", http.StatusConflict, err.HTTPStatus)
	}
}

func TestWrap(t *testing.T) {
	originalErr := errors.New("connection refused")
	wrapped := Wrap(originalErr, CodeInternal, "internal error", http.StatusInternalServerError)

	if wrapped.Err != originalErr {
		t.Errorf("expected wrapped error to contain original error")
	}
	if wrapped.Code != CodeInternal {
		t.Errorf("expected code %s, got %s", CodeInternal, wrapped.Code)
	}
	if !errors.Is(wrapped, originalErr) {
		t.Errorf("expected errors.Is to unwrap to the original error")
	}
}

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name: "without underlying error",
			appErr: &AppError{
				Code:    CodeNotFound,
				Message: "resource not found",
			},
			expected: "NOT_FOUND: resource not found",
		},
		{
			name: "with underlying error",
			appErr: &AppError{
				Code:    CodeInternal,
				Message: "internal error",
				Err:     errors.New("connection refused"),
			},
			expected: "INTERNAL_ERROR: internal error (caused by: connection refused)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.appErr.Error(); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestNotFoundWithID(t *testing.T) {
	err := NotFoundWithID("Booking", "abc123")

	if err.Code != CodeNotFound {
		t.Errorf("expected code %s, got %s", CodeNotFound, err.Code)
	}
	if err.Details["id"] != "abc123" {
		t.Errorf("expected id detail abc123, got %v", err.Details["id"])
	}
	if err.HTTPStatus != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", err.HTTPStatus)
	}
}

func TestConflict(t *testing.T) {
	err := Conflict("state transition not allowed")

	if err.Code != CodeConflict {
		t.Errorf("expected code %s, got %s", CodeConflict, err.Code)
	}
	if err.HTTPStatus != http.StatusConflict {
		t.Errorf("expected status 409, got %d", err.HTTPStatus)
	}
}

func TestIsAppError(t *testing.T) {
	if !IsAppError(Conflict("boom")) {
		t.Errorf("expected AppError to be recognized")
	}
	if IsAppError(errors.New("plain")) {
		t.Errorf("expected plain error to not be recognized")
	}
}

func TestAsAppError(t *testing.T) {
	appErr := NotFound("Trip")
	if got := AsAppError(appErr); got != appErr {
		t.Errorf("expected AsAppError to return the same AppError")
	}

	plain := errors.New("plain")
	converted := AsAppError(plain)
	if converted.Code != CodeInternal {
		t.Errorf("expected plain error to convert to internal, got %s", converted.Code)
	}
	if converted.Err != plain {
		t.Errorf("expected converted error to wrap the original")
	}
}

func TestWithDetails(t *testing.T) {
	err := Conflict("not enough seats").WithDetails(map[string]any{
		"requested": 3,
		"available": 1,
	})

	if err.Details["requested"] != 3 {
		t.Errorf("expected requested detail 3, got %v", err.Details["requested"])
	}
}
