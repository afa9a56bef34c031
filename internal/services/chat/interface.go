// File: internal/services/chat/interface.go
package chat

import (
	"context"

	"github.com/iyunix/go-chatfront/internal/domain"
)

// StreamRequest is one turn sent to the transport: the whole conversation
// so far, ending with the new user message.
type StreamRequest struct {
	Model    string
	Messages []domain.Message
}

// Transport delivers incremental model output. Stream returns nil once the
// response completes; onDelta returning an error aborts the stream.
type Transport interface {
	Stream(ctx context.Context, req StreamRequest, onDelta func(string) error) error
}

// Authorizer is consulted synchronously before a submit is accepted.
type Authorizer interface {
	CanSubmit() bool
}

// State is the controller's send lifecycle.
type State int

const (
	StateIdle State = iota
	StateSending
	StateStreaming
	StateErrored
)

func (s State) String() string {
	switch s {
	case StateSending:
		return "sending"
	case StateStreaming:
		return "streaming"
	case StateErrored:
		return "errored"
	default:
		return "idle"
	}
}

// InFlight reports whether a send is active.
func (s State) InFlight() bool { return s == StateSending || s == StateStreaming }

// Update is delivered to the controller's listener on every state change
// and every streamed fragment.
type Update struct {
	State State
	Delta string
	Err   error
}
