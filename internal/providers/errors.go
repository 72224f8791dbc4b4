package providers

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingCredential means a required API key is not configured. It is
	// raised before any network call is attempted.
	ErrMissingCredential = errors.New("missing credential")

	// ErrTimeout means the upstream call exceeded its deadline.
	ErrTimeout = errors.New("upstream timeout")

	// ErrMalformedResponse means the upstream body could not be decoded.
	ErrMalformedResponse = errors.New("malformed upstream response")
)

// RemoteError is a non-2xx upstream status, kept with the body for
// diagnostics.
type RemoteError struct {
	Provider string
	Status   int
	Body     string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s returned %d: %s", e.Provider, e.Status, e.Body)
}
