package session

import (
	"errors"
	"fmt"
)

var ErrSessionNotFound = errors.New("session not found")

type ErrorType string

const (
	ErrTypeValidation ErrorType = "VALIDATION"
	ErrTypeStorage    ErrorType = "STORAGE"
	ErrTypeEncoding   ErrorType = "ENCODING"
)

// StoreError reports a storage failure: the medium exists but the
// operation did not complete.
type StoreError struct {
	Type      ErrorType
	Operation string
	SessionID string
	Message   string
	Cause     error
}

func (e *StoreError) Error() string {
	target := ""
	if e.SessionID != "" {
		target = fmt.Sprintf(" (session %s)", e.SessionID)
	}
	if e.Cause != nil {
		return fmt.Sprintf("session store %s error in %s%s: %s (caused by: %v)",
			e.Type, e.Operation, target, e.Message, e.Cause)
	}
	return fmt.Sprintf("session store %s error in %s%s: %s", e.Type, e.Operation, target, e.Message)
}

func (e *StoreError) Unwrap() error { return e.Cause }

func newStorageError(operation, id, msg string, cause error) *StoreError {
	return &StoreError{Type: ErrTypeStorage, Operation: operation, SessionID: id, Message: msg, Cause: cause}
}

func newValidationError(operation, msg string) *StoreError {
	return &StoreError{Type: ErrTypeValidation, Operation: operation, Message: msg}
}

// IsStorageFailure reports whether err is a StoreError, as opposed to a
// not-found signal or a context cancellation.
func IsStorageFailure(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}
