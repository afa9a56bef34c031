package session

import (
	"context"

	"github.com/iyunix/go-chatfront/internal/domain"
)

// unavailableStore stands in when no durable medium is configured. Reads
// come back empty and writes are dropped without error.
type unavailableStore struct{}

// NewUnavailableStore returns a Store with no backing medium.
func NewUnavailableStore() Store { return unavailableStore{} }

func (unavailableStore) Available() bool { return false }

func (unavailableStore) Save(_ context.Context, id string, messages []domain.Message) (*domain.ChatSession, error) {
	// Nothing is written, but callers still get the session they would
	// have stored.
	return &domain.ChatSession{
		ID:       id,
		Title:    domain.DeriveTitle(messages),
		Messages: domain.CloneMessages(messages),
	}, nil
}

func (unavailableStore) List(context.Context) ([]domain.ChatSession, error) {
	return []domain.ChatSession{}, nil
}

func (unavailableStore) GetByID(context.Context, string) (*domain.ChatSession, error) {
	return nil, ErrSessionNotFound
}

func (unavailableStore) Delete(context.Context, string) error         { return nil }
func (unavailableStore) Rename(context.Context, string, string) error { return nil }
func (unavailableStore) Clear(context.Context) error                  { return nil }
