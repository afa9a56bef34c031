// File: internal/services/chat/controller.go
package chat

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/iyunix/go-chatfront/internal/domain"
	"github.com/iyunix/go-chatfront/internal/logging"
	"github.com/iyunix/go-chatfront/internal/repository/session"
)

// Controller owns the lifecycle of one active conversation. Only a
// completed send writes to the store; every other transition stays in
// memory.
type Controller struct {
	config    *Config
	store     session.Store
	transport Transport
	gate      Authorizer
	logger    logging.Logger

	mu       sync.Mutex
	id       string
	surfaced bool
	messages []domain.Message
	state    State
	lastErr  error
	model    string
	listener func(Update)

	// gen advances whenever the in-flight send is abandoned (cancel, load,
	// new conversation). A send whose generation is stale leaves state alone.
	gen    uint64
	cancel context.CancelFunc
	saving bool
}

// NewController starts on a fresh, unsaved conversation.
func NewController(config *Config, store session.Store, transport Transport, gate Authorizer, logger logging.Logger) *Controller {
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = &logging.NoOpLogger{}
	}
	return &Controller{
		config:    config,
		store:     store,
		transport: transport,
		gate:      gate,
		logger:    logger,
		id:        uuid.NewString(),
		messages:  []domain.Message{},
		model:     config.DefaultModel,
	}
}

// SetListener installs fn to receive updates. It is called without the
// controller lock held, so it may read the controller.
func (c *Controller) SetListener(fn func(Update)) {
	c.mu.Lock()
	c.listener = fn
	c.mu.Unlock()
}

func (c *Controller) emit(u Update) {
	c.mu.Lock()
	fn := c.listener
	c.mu.Unlock()
	if fn != nil {
		fn(u)
	}
}

// ID returns the conversation identifier.
func (c *Controller) ID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.id
}

// Surfaced reports whether the id is known outside this controller,
// either because it was loaded by id or because a save succeeded.
func (c *Controller) Surfaced() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.surfaced
}

// Messages returns a copy of the in-memory conversation.
func (c *Controller) Messages() []domain.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return domain.CloneMessages(c.messages)
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Err returns the failure that moved the controller to errored, if any.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

func (c *Controller) Model() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.model
}

// SetModel changes the model for subsequent sends. An empty id restores
// the configured default.
func (c *Controller) SetModel(model string) {
	model = strings.TrimSpace(model)
	if model == "" {
		model = c.config.DefaultModel
	}
	c.mu.Lock()
	c.model = model
	c.mu.Unlock()
}

// Submit validates text and, if accepted, starts a send in the background.
// Any attempt clears a previous failure first; other rejections happen
// before any state change or transport call. The returned channel yields
// the send's outcome once and is then closed.
func (c *Controller) Submit(ctx context.Context, text string) (<-chan error, error) {
	text = strings.TrimSpace(text)

	c.mu.Lock()
	recovered := c.state == StateErrored
	if recovered {
		c.state = StateIdle
		c.lastErr = nil
	}
	var rejected error
	switch {
	case text == "":
		rejected = ErrEmptyInput
	case c.state.InFlight():
		rejected = ErrSendInFlight
	case c.gate == nil || !c.gate.CanSubmit():
		rejected = ErrNotAuthenticated
	}
	if rejected != nil {
		c.mu.Unlock()
		if recovered {
			c.emit(Update{State: StateIdle})
		}
		return nil, NewValidationError("submit", rejected)
	}

	c.messages = append(c.messages, domain.NewTextMessage(domain.RoleUser, text))
	c.state = StateSending
	c.lastErr = nil
	c.gen++
	gen := c.gen
	streamCtx, cancel := context.WithTimeout(ctx, c.config.StreamTimeout)
	c.cancel = cancel
	req := StreamRequest{Model: c.model, Messages: domain.CloneMessages(c.messages)}
	id := c.id
	c.mu.Unlock()

	c.logger.Info("submitting message", "session_id", id, "model", req.Model, "history", len(req.Messages))
	c.emit(Update{State: StateSending})

	done := make(chan error, 1)
	go func() {
		defer close(done)
		defer cancel()
		done <- c.run(streamCtx, gen, id, req)
	}()
	return done, nil
}

// Cancel abandons the in-flight send, if any. The partial assistant
// message is dropped and nothing is saved.
func (c *Controller) Cancel() bool {
	c.mu.Lock()
	if !c.state.InFlight() || c.saving {
		c.mu.Unlock()
		return false
	}
	c.abandonLocked()
	c.state = StateIdle
	c.mu.Unlock()

	c.logger.Info("send cancelled")
	c.emit(Update{State: StateIdle, Err: ErrCancelled})
	return true
}

// abandonLocked detaches any in-flight send and removes its partial reply.
func (c *Controller) abandonLocked() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.saving = false
	if c.state == StateStreaming {
		if n := len(c.messages); n > 0 && c.messages[n-1].Role == domain.RoleAssistant {
			c.messages = c.messages[:n-1]
		}
	}
	c.gen++
}

// New switches to a fresh conversation with a newly generated id.
func (c *Controller) New() string {
	c.mu.Lock()
	c.abandonLocked()
	c.id = uuid.NewString()
	c.surfaced = false
	c.messages = []domain.Message{}
	c.state = StateIdle
	c.lastErr = nil
	id := c.id
	c.mu.Unlock()

	c.emit(Update{State: StateIdle})
	return id
}

// Load addresses the conversation id. When the store has a record for it,
// the stored messages replace whatever is in memory; otherwise the
// conversation starts empty under that id. A storage failure is returned
// after the controller has switched to the empty conversation.
func (c *Controller) Load(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return NewValidationError("load", errors.New("session id is required"))
	}

	c.mu.Lock()
	c.abandonLocked()
	c.id = id
	c.surfaced = true
	c.messages = []domain.Message{}
	c.state = StateIdle
	c.lastErr = nil
	gen := c.gen
	c.mu.Unlock()

	stored, err := c.store.GetByID(ctx, id)
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		c.logger.Debug("session not stored yet", "session_id", id)
		c.emit(Update{State: StateIdle})
		return nil
	case err != nil:
		c.logger.Error("load session failed", "session_id", id, "error", err)
		c.emit(Update{State: StateIdle})
		return &ChatError{Type: ErrTypeStorage, Operation: "load", Message: "session could not be read", SessionID: id, Cause: err}
	}

	c.mu.Lock()
	if c.gen == gen && c.id == id {
		c.messages = stored.Messages
	}
	c.mu.Unlock()

	c.emit(Update{State: StateIdle})
	return nil
}

// Reload re-reads the current conversation from the store when no send is
// in flight. It is used when another writer changed the stored record.
func (c *Controller) Reload(ctx context.Context) error {
	c.mu.Lock()
	if c.state.InFlight() || !c.surfaced {
		c.mu.Unlock()
		return nil
	}
	id, gen := c.id, c.gen
	c.mu.Unlock()

	stored, err := c.store.GetByID(ctx, id)
	if errors.Is(err, session.ErrSessionNotFound) {
		return nil
	}
	if err != nil {
		return &ChatError{Type: ErrTypeStorage, Operation: "reload", Message: "session could not be read", SessionID: id, Cause: err}
	}

	c.mu.Lock()
	changed := c.gen == gen && !c.state.InFlight()
	if changed {
		c.messages = stored.Messages
	}
	c.mu.Unlock()
	if changed {
		c.emit(Update{State: c.State()})
	}
	return nil
}
