// File: internal/services/chat/errors.go
package chat

import (
	"errors"
	"fmt"
)

// Submit rejections. They are returned wrapped in a *ChatError of type
// ErrTypeValidation, so both errors.Is and errors.As work.
var (
	ErrEmptyInput       = errors.New("message is empty")
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrSendInFlight     = errors.New("a message is already being sent")
	ErrCancelled        = errors.New("send cancelled")
)

type ErrorType string

const (
	ErrTypeValidation ErrorType = "VALIDATION"
	ErrTypeTransport  ErrorType = "TRANSPORT"
	ErrTypeStorage    ErrorType = "STORAGE"
)

type ChatError struct {
	Type      ErrorType
	Operation string
	Message   string
	SessionID string
	Cause     error
}

func (e *ChatError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("Chat %s error in %s: %s (caused by: %v)",
			e.Type, e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("Chat %s error in %s: %s", e.Type, e.Operation, e.Message)
}

func (e *ChatError) Unwrap() error { return e.Cause }

func NewValidationError(operation string, cause error) *ChatError {
	return &ChatError{Type: ErrTypeValidation, Operation: operation, Message: cause.Error(), Cause: cause}
}

func NewTransportError(sessionID string, cause error) *ChatError {
	return &ChatError{Type: ErrTypeTransport, Operation: "stream", Message: "response stream failed", SessionID: sessionID, Cause: cause}
}

func NewStorageError(operation, sessionID string, cause error) *ChatError {
	return &ChatError{Type: ErrTypeStorage, Operation: operation, Message: "session could not be saved", SessionID: sessionID, Cause: cause}
}

// IsType reports whether err is a *ChatError of type t.
func IsType(err error, t ErrorType) bool {
	var ce *ChatError
	return errors.As(err, &ce) && ce.Type == t
}
