package api

import (
	"errors"
	"fmt"
	nethttp "net/http"
)

// Sentinel errors matched by errors.Is against *Error.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrEmptyBaseURL = errors.New("API base URL is empty")
)

// Error is a non-success response from the platform.
// It is returned both for HTTP error statuses and for envelopes with success=false.
type Error struct {
	StatusCode int
	Message    string
	Path       string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: status %d", e.Path, e.StatusCode)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Path, e.StatusCode, e.Message)
}

// HTTPStatus returns the response status code.
func (e *Error) HTTPStatus() int {
	return e.StatusCode
}

// Is maps status codes onto the package sentinels.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == nethttp.StatusUnauthorized
	case ErrForbidden:
		return e.StatusCode == nethttp.StatusForbidden
	case ErrNotFound:
		return e.StatusCode == nethttp.StatusNotFound
	}
	return false
}
