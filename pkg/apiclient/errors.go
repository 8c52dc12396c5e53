package apiclient

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrMissingAPIKey    = errors.New("apiclient: api key is required")
	ErrInvalidServerURL = errors.New("apiclient: invalid server url")
	ErrInvalidID        = errors.New("apiclient: notification id is required")
	ErrRequestFailed    = errors.New("apiclient: request failed")
	ErrDecodeResponse   = errors.New("apiclient: failed to decode response")

	ErrUnauthorized = errors.New("apiclient: unauthorized")
	ErrForbidden    = errors.New("apiclient: forbidden")
	ErrNotFound     = errors.New("apiclient: not found")
	ErrServer       = errors.New("apiclient: server error")
)

// Error is a non-2xx response.
type Error struct {
	StatusCode int
	Method     string
	Path       string
	RequestID  string
	Body       string
}

func (e *Error) Error() string {
	return fmt.Sprintf("request failed with status code %d", e.StatusCode)
}

// Is matches the status class sentinels.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case ErrForbidden:
		return e.StatusCode == http.StatusForbidden
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrServer:
		return e.StatusCode >= http.StatusInternalServerError
	default:
		return false
	}
}
