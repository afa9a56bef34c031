package client

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized means the server rejected the auth cookie.
	ErrUnauthorized = errors.New("not logged in")
	// ErrRateLimited means too many login attempts were made.
	ErrRateLimited = errors.New("too many login attempts")
	// ErrStreamTruncated means the stream ended without done or error.
	ErrStreamTruncated = errors.New("response stream ended unexpectedly")
)

// StatusError is a non-success HTTP response.
type StatusError struct {
	Operation  string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: server returned %d: %s", e.Operation, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: server returned %d", e.Operation, e.StatusCode)
}

// RemoteStreamError is an error event sent by the server mid-stream.
type RemoteStreamError struct {
	Message string
}

func (e *RemoteStreamError) Error() string { return e.Message }
