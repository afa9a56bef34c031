// Package events is the in-process change signal for persisted chat sessions.
//
// A Change carries no delta. Listeners re-read the session store to learn
// the current state. Local writes and writes made by another process against
// the same database both arrive through the same Listener contract; only the
// Origin differs.
package events

import (
	"sync"

	"github.com/iyunix/go-chatfront/internal/logging"
)

// Origin tells listeners where a change came from.
type Origin int

const (
	// OriginLocal is a write made through this process's store.
	OriginLocal Origin = iota
	// OriginForeign is a write detected on the durable medium that this
	// process did not make.
	OriginForeign
)

func (o Origin) String() string {
	if o == OriginForeign {
		return "foreign"
	}
	return "local"
}

// Change is the payload-free "something in the store changed" signal.
type Change struct {
	Origin Origin
}

// Listener is called once per published change.
type Listener func(Change)

// Publisher is the write side of the bus, used by the session store.
type Publisher interface {
	Publish(Change)
}

type subscription struct {
	id       uint64
	listener Listener
}

// Bus is an observer list. Publish calls listeners synchronously, in
// subscription order, on a snapshot taken before the first call.
type Bus struct {
	mu     sync.RWMutex
	nextID uint64
	subs   []subscription
	logger logging.Logger
}

// NewBus creates an empty bus.
func NewBus(logger logging.Logger) *Bus {
	if logger == nil {
		logger = &logging.NoOpLogger{}
	}
	return &Bus{logger: logger}
}

// Subscribe registers l and returns a function that removes it.
// The returned function is safe to call more than once.
func (b *Bus) Subscribe(l Listener) (unsubscribe func()) {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscription{id: id, listener: l})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(id) })
	}
}

func (b *Bus) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subs {
		if s.id == id {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return
		}
	}
}

// Len returns the number of current listeners.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Publish delivers c to every listener subscribed at call time.
// The lock is not held during delivery, so listeners may subscribe,
// unsubscribe or read the store from inside their callback.
func (b *Bus) Publish(c Change) {
	b.mu.RLock()
	snapshot := make([]subscription, len(b.subs))
	copy(snapshot, b.subs)
	b.mu.RUnlock()

	for _, s := range snapshot {
		b.deliver(s, c)
	}
}

func (b *Bus) deliver(s subscription, c Change) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("change listener panicked", "subscription", s.id, "origin", c.Origin.String(), "panic", r)
		}
	}()
	s.listener(c)
}

// NotifyLocal publishes a local change.
func (b *Bus) NotifyLocal() { b.Publish(Change{Origin: OriginLocal}) }

// NotifyForeign publishes a foreign change.
func (b *Bus) NotifyForeign() { b.Publish(Change{Origin: OriginForeign}) }
