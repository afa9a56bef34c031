// File: internal/services/chat/streaming.go
package chat

import (
	"context"
	"errors"
	"strings"

	"github.com/iyunix/go-chatfront/internal/domain"
)

// errStale aborts a stream whose send has been abandoned.
var errStale = errors.New("send abandoned")

// run drives one accepted send to its terminal state.
func (c *Controller) run(ctx context.Context, gen uint64, id string, req StreamRequest) error {
	var reply strings.Builder
	streamErr := c.transport.Stream(ctx, req, func(delta string) error {
		if delta == "" {
			return nil
		}
		if !c.appendDelta(gen, delta) {
			return errStale
		}
		reply.WriteString(delta)
		return nil
	})

	c.mu.Lock()
	if c.gen != gen {
		c.mu.Unlock()
		c.logger.Debug("discarding abandoned send", "session_id", id)
		return ErrCancelled
	}

	if streamErr != nil {
		c.state = StateErrored
		c.cancel = nil
		c.lastErr = NewTransportError(id, streamErr)
		err := c.lastErr
		c.mu.Unlock()

		c.logger.Error("stream failed", "session_id", id, "error", streamErr, "partial_length", reply.Len())
		c.emit(Update{State: StateErrored, Err: err})
		return err
	}

	// The send stays in flight until the save returns so a following
	// submit cannot race this save with an older snapshot. Cancel is a
	// no-op from here on.
	c.saving = true
	messages := domain.CloneMessages(c.messages)
	c.mu.Unlock()

	err := c.save(id, messages)

	c.mu.Lock()
	current := c.gen == gen
	if current {
		c.state = StateIdle
		c.cancel = nil
		c.saving = false
		if err == nil {
			c.surfaced = true
		}
	}
	c.mu.Unlock()

	if !current {
		c.logger.Debug("send abandoned during save", "session_id", id)
		return err
	}
	c.logger.Info("stream completed", "session_id", id, "response_length", reply.Len())
	c.emit(Update{State: StateIdle, Err: err})
	return err
}

// appendDelta applies one fragment, moving sending to streaming on the
// first. It reports false when the send is no longer current.
func (c *Controller) appendDelta(gen uint64, delta string) bool {
	c.mu.Lock()
	if c.gen != gen || !c.state.InFlight() {
		c.mu.Unlock()
		return false
	}
	first := c.state == StateSending
	if first {
		c.messages = append(c.messages, domain.NewTextMessage(domain.RoleAssistant, ""))
		c.state = StateStreaming
	}
	c.messages[len(c.messages)-1].AppendText(delta)
	c.mu.Unlock()

	c.emit(Update{State: StateStreaming, Delta: delta})
	return true
}

// save persists a completed conversation. It gets its own timeout because
// the stream context may be close to expiring.
func (c *Controller) save(id string, messages []domain.Message) error {
	ctx, cancel := context.WithTimeout(context.Background(), c.config.SaveTimeout)
	defer cancel()

	if _, err := c.store.Save(ctx, id, messages); err != nil {
		c.logger.Error("failed to save session", "session_id", id, "error", err)
		return NewStorageError("save", id, err)
	}
	return nil
}
