package models

import (
	"errors"
	"fmt"
)

// ErrInvalidInput marks caller bugs: missing or malformed address or
// coordinate input. Never retried.
var ErrInvalidInput = errors.New("invalid input")

// ProviderError wraps a failure of an external geocoding or distance
// provider: transport errors, quota exhaustion, malformed upstream
// responses. StatusCode is zero when the failure happened before an HTTP
// status was received.
type ProviderError struct {
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("provider error (status %d): %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("provider error: %v", e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
