package session

import (
	"context"

	"github.com/iyunix/go-chatfront/internal/domain"
)

// Store is durable CRUD over chat sessions, addressed by ID.
type Store interface {
	// Save derives the title, stamps CreatedAt with the current time and
	// replaces any existing record with the same ID.
	Save(ctx context.Context, id string, messages []domain.Message) (*domain.ChatSession, error)
	// List returns every session, most recently saved first.
	List(ctx context.Context) ([]domain.ChatSession, error)
	// GetByID returns ErrSessionNotFound when id is unknown.
	GetByID(ctx context.Context, id string) (*domain.ChatSession, error)
	// Delete is idempotent.
	Delete(ctx context.Context, id string) error
	// Rename changes only the title. Unknown ids are a silent no-op.
	Rename(ctx context.Context, id, title string) error
	// Clear removes every session.
	Clear(ctx context.Context) error
}

// Availability is implemented by stores that can report whether a durable
// medium backs them.
type Availability interface {
	Available() bool
}

// IsAvailable reports whether s is backed by a durable medium.
// Stores that do not implement Availability are assumed to be.
func IsAvailable(s Store) bool {
	if a, ok := s.(Availability); ok {
		return a.Available()
	}
	return true
}
