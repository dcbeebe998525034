package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"
)

type statusErr int

func (s statusErr) Error() string   { return fmt.Sprintf("status %d", int(s)) }
func (s statusErr) HTTPStatus() int { return int(s) }

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"nil", nil, ErrorTypeSuccess},
		{"canceled", context.Canceled, ErrorTypeCanceled},
		{"wrapped canceled", fmt.Errorf("fetch: %w", context.Canceled), ErrorTypeCanceled},
		{"deadline", context.DeadlineExceeded, ErrorTypeNetwork},
		{"401", statusErr(401), ErrorTypeCredential},
		{"403 wrapped", fmt.Errorf("approve: %w", statusErr(403)), ErrorTypeCredential},
		{"404", statusErr(404), ErrorTypeFatal},
		{"429", statusErr(429), ErrorTypeRetryable},
		{"503", statusErr(503), ErrorTypeRetryable},
		{"net error", &net.OpError{Op: "dial", Err: errors.New("refused")}, ErrorTypeNetwork},
		{"connection reset text", errors.New("read: connection reset by peer"), ErrorTypeNetwork},
		{"retries exhausted", errors.New("GET https://x giving up after 4 attempt(s)"), ErrorTypeRetryable},
		{"token text", errors.New("token expired"), ErrorTypeCredential},
		{"unknown", errors.New("bad request body"), ErrorTypeFatal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyError(tt.err); got != tt.want {
				t.Errorf("ClassifyError(%v) = %s, want %s", tt.err, ErrorTypeName(got), ErrorTypeName(tt.want))
			}
		})
	}
}

func TestErrorTypeName(t *testing.T) {
	if ErrorTypeName(ErrorTypeCredential) != "credential" {
		t.Error("credential name")
	}
	if ErrorTypeName(ErrorType(99)) != "unknown" {
		t.Error("unknown name")
	}
}
