package session

import (
	"context"

	"github.com/iyunix/go-chatfront/internal/domain"
	"github.com/iyunix/go-chatfront/internal/events"
)

// notifyingStore publishes a local change after every successful write.
// Failed writes and writes against an unavailable medium stay silent.
type notifyingStore struct {
	inner Store
	pub   events.Publisher
}

// WithNotifications wraps inner so that successful writes publish to pub.
func WithNotifications(inner Store, pub events.Publisher) Store {
	return &notifyingStore{inner: inner, pub: pub}
}

func (s *notifyingStore) Available() bool { return IsAvailable(s.inner) }

func (s *notifyingStore) notify() {
	if s.pub == nil || !IsAvailable(s.inner) {
		return
	}
	s.pub.Publish(events.Change{Origin: events.OriginLocal})
}

func (s *notifyingStore) Save(ctx context.Context, id string, messages []domain.Message) (*domain.ChatSession, error) {
	saved, err := s.inner.Save(ctx, id, messages)
	if err != nil {
		return nil, err
	}
	s.notify()
	return saved, nil
}

func (s *notifyingStore) List(ctx context.Context) ([]domain.ChatSession, error) {
	return s.inner.List(ctx)
}

func (s *notifyingStore) GetByID(ctx context.Context, id string) (*domain.ChatSession, error) {
	return s.inner.GetByID(ctx, id)
}

func (s *notifyingStore) Delete(ctx context.Context, id string) error {
	if err := s.inner.Delete(ctx, id); err != nil {
		return err
	}
	s.notify()
	return nil
}

func (s *notifyingStore) Rename(ctx context.Context, id, title string) error {
	if err := s.inner.Rename(ctx, id, title); err != nil {
		return err
	}
	s.notify()
	return nil
}

func (s *notifyingStore) Clear(ctx context.Context) error {
	if err := s.inner.Clear(ctx); err != nil {
		return err
	}
	s.notify()
	return nil
}
