package fred

import (
	"errors"
	"fmt"
	"time"
)

// ErrorKind splits fetch failures into the two classes the retry policy
// cares about.
type ErrorKind int

const (
	// KindTransient marks failures worth retrying: network errors,
	// timeouts, HTTP 5xx/408/429 and in-band rate-limit codes.
	KindTransient ErrorKind = iota
	// KindPermanent marks everything else; retrying cannot help.
	KindPermanent
)

// APIError is a classified failure from the FRED API, decided once at the
// response-parsing boundary.
type APIError struct {
	Kind       ErrorKind
	StatusCode int
	Code       int // in-band API error code, 0 when absent
	Message    string
	RetryAfter time.Duration // server-supplied retry delay, 0 when absent
}

func (e *APIError) Error() string {
	switch {
	case e.Code != 0:
		return fmt.Sprintf("fred: error code %d (status %d): %s", e.Code, e.StatusCode, e.Message)
	case e.StatusCode != 0:
		return fmt.Sprintf("fred: status %d: %s", e.StatusCode, e.Message)
	default:
		return fmt.Sprintf("fred: %s", e.Message)
	}
}

// ErrRetriesExhausted is returned once the retry budget for a call is spent.
// The failure is transient in nature but fatal for the current call.
var ErrRetriesExhausted = errors.New("fred: retries exhausted")

// IsTransient reports whether err is a retryable fetch failure.
func IsTransient(err error) bool {
	if errors.Is(err, ErrRetriesExhausted) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind == KindTransient
	}
	return false
}
