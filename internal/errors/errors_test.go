package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	cause := errors.New("no such file")
	err := New(DatabaseUnavailable, "cannot open database", cause)

	if err.Code != DatabaseUnavailable {
		t.Errorf("Code = %v, want %v", err.Code, DatabaseUnavailable)
	}
	if err.Message != "cannot open database" {
		t.Errorf("Message = %q, want %q", err.Message, "cannot open database")
	}
	if err.Unwrap() != cause {
		t.Errorf("Unwrap() = %v, want %v", err.Unwrap(), cause)
	}
}

func TestError_Error(t *testing.T) {
	tests := []struct {
		name      string
		code      ErrorCode
		message   string
		cause     error
		wantParts []string
	}{
		{
			name:      "with cause",
			code:      LookupUnavailable,
			message:   "dial lookup server",
			cause:     errors.New("connection refused"),
			wantParts: []string{"LOOKUP_UNAVAILABLE", "dial lookup server", "connection refused"},
		},
		{
			name:      "without cause",
			code:      NotFound,
			message:   "/missing.html",
			wantParts: []string{"NOT_FOUND", "/missing.html"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := New(tt.code, tt.message, tt.cause).Error()
			for _, part := range tt.wantParts {
				if !strings.Contains(got, part) {
					t.Errorf("Error() = %q, want to contain %q", got, part)
				}
			}
		})
	}
}

func TestCodeOf(t *testing.T) {
	wrapped := fmt.Errorf("serve: %w", New(ProtocolError, "stream ended", nil))

	if got := CodeOf(wrapped); got != ProtocolError {
		t.Errorf("CodeOf(wrapped) = %v, want %v", got, ProtocolError)
	}
	if got := CodeOf(errors.New("plain")); got != InternalError {
		t.Errorf("CodeOf(plain) = %v, want %v", got, InternalError)
	}
	if !Is(wrapped, ProtocolError) {
		t.Error("Is(wrapped, ProtocolError) = false, want true")
	}
	if Is(wrapped, NotFound) {
		t.Error("Is(wrapped, NotFound) = true, want false")
	}
}

func TestWithDetails(t *testing.T) {
	err := New(BadRequest, "traversal", nil)
	if got := err.WithDetails("/a/../b"); got != err {
		t.Error("WithDetails should return the same error for chaining")
	}
	if err.Details != "/a/../b" {
		t.Errorf("Details = %v, want %q", err.Details, "/a/../b")
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want int
	}{
		{BadRequest, http.StatusBadRequest},
		{Forbidden, http.StatusForbidden},
		{NotFound, http.StatusNotFound},
		{NotImplemented, http.StatusNotImplemented},
		{LookupUnavailable, http.StatusServiceUnavailable},
		{ProtocolError, http.StatusBadGateway},
		{InternalError, http.StatusInternalServerError},
		{ErrorCode("UNKNOWN"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			if got := StatusFor(tt.code); got != tt.want {
				t.Errorf("StatusFor(%v) = %d, want %d", tt.code, got, tt.want)
			}
		})
	}
}
