package session

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/iyunix/go-chatfront/internal/domain"
	"github.com/iyunix/go-chatfront/internal/logging"
)

// Record is the persisted row. Messages hold the role+parts JSON array.
// The column is named created_at to match the session field, but it is
// rewritten on every save and stores Unix nanoseconds.
type Record struct {
	ID        string         `gorm:"primaryKey;size:64"`
	Title     string         `gorm:"not null"`
	Messages  datatypes.JSON `gorm:"not null"`
	TouchedAt int64          `gorm:"column:created_at;not null;index"`
}

func (Record) TableName() string { return "chat_sessions" }

type gormSessionRepository struct {
	db     *gorm.DB
	logger logging.Logger

	clockMu sync.Mutex
	now     func() time.Time
	last    time.Time
}

// Option customises a repository.
type Option func(*gormSessionRepository)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(r *gormSessionRepository) { r.now = now }
}

// NewGormRepository returns a Store backed by db. The caller is expected to
// have migrated Record.
func NewGormRepository(db *gorm.DB, logger logging.Logger, opts ...Option) Store {
	if logger == nil {
		logger = &logging.NoOpLogger{}
	}
	r := &gormSessionRepository{db: db, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *gormSessionRepository) Available() bool { return true }

// stamp returns a strictly increasing timestamp so two saves in the same
// clock tick still order deterministically.
func (r *gormSessionRepository) stamp() time.Time {
	r.clockMu.Lock()
	defer r.clockMu.Unlock()
	now := r.now()
	if !now.After(r.last) {
		now = r.last.Add(time.Nanosecond)
	}
	r.last = now
	return now
}

func (r *gormSessionRepository) Save(ctx context.Context, id string, messages []domain.Message) (*domain.ChatSession, error) {
	if strings.TrimSpace(id) == "" {
		return nil, newValidationError("save", "session id is required")
	}
	if messages == nil {
		messages = []domain.Message{}
	}

	payload, err := json.Marshal(messages)
	if err != nil {
		return nil, &StoreError{Type: ErrTypeEncoding, Operation: "save", SessionID: id, Message: "encode messages", Cause: err}
	}

	touched := r.stamp()
	rec := Record{
		ID:        id,
		Title:     domain.DeriveTitle(messages),
		Messages:  datatypes.JSON(payload),
		TouchedAt: touched.UnixNano(),
	}

	err = r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"title", "messages", "created_at"}),
		}).
		Create(&rec).Error
	if err != nil {
		r.logger.Error("save session failed", "session_id", id, "error", err)
		return nil, newStorageError("save", id, "database error saving session", err)
	}

	r.logger.Debug("session saved", "session_id", id, "messages", len(messages))
	return &domain.ChatSession{
		ID:        id,
		Title:     rec.Title,
		Messages:  domain.CloneMessages(messages),
		CreatedAt: time.Unix(0, rec.TouchedAt),
	}, nil
}

func (r *gormSessionRepository) List(ctx context.Context) ([]domain.ChatSession, error) {
	var recs []Record
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&recs).Error
	if err != nil {
		r.logger.Error("list sessions failed", "error", err)
		return nil, newStorageError("list", "", "database error listing sessions", err)
	}

	sessions := make([]domain.ChatSession, 0, len(recs))
	for _, rec := range recs {
		s, err := decode(rec)
		if err != nil {
			r.logger.Error("decode session failed", "session_id", rec.ID, "error", err)
			return nil, err
		}
		sessions = append(sessions, *s)
	}
	return sessions, nil
}

func (r *gormSessionRepository) GetByID(ctx context.Context, id string) (*domain.ChatSession, error) {
	var rec Record
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		r.logger.Error("get session failed", "session_id", id, "error", err)
		return nil, newStorageError("get", id, "database error fetching session", err)
	}
	return decode(rec)
}

func (r *gormSessionRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&Record{})
	if result.Error != nil {
		r.logger.Error("delete session failed", "session_id", id, "error", result.Error)
		return newStorageError("delete", id, "database error deleting session", result.Error)
	}
	r.logger.Debug("session deleted", "session_id", id, "existed", result.RowsAffected > 0)
	return nil
}

func (r *gormSessionRepository) Rename(ctx context.Context, id, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return newValidationError("rename", "title cannot be empty")
	}

	result := r.db.WithContext(ctx).
		Model(&Record{}).
		Where("id = ?", id).
		Update("title", title)
	if result.Error != nil {
		r.logger.Error("rename session failed", "session_id", id, "error", result.Error)
		return newStorageError("rename", id, "database error renaming session", result.Error)
	}
	if result.RowsAffected == 0 {
		r.logger.Debug("rename skipped, session not found", "session_id", id)
	}
	return nil
}

func (r *gormSessionRepository) Clear(ctx context.Context) error {
	result := r.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&Record{})
	if result.Error != nil {
		r.logger.Error("clear sessions failed", "error", result.Error)
		return newStorageError("clear", "", "database error clearing sessions", result.Error)
	}
	r.logger.Info("sessions cleared", "removed", result.RowsAffected)
	return nil
}

func decode(rec Record) (*domain.ChatSession, error) {
	var messages []domain.Message
	if len(rec.Messages) > 0 {
		if err := json.Unmarshal(rec.Messages, &messages); err != nil {
			return nil, &StoreError{Type: ErrTypeEncoding, Operation: "decode", SessionID: rec.ID, Message: "stored messages are not valid JSON", Cause: err}
		}
	}
	if messages == nil {
		messages = []domain.Message{}
	}
	return &domain.ChatSession{
		ID:        rec.ID,
		Title:     rec.Title,
		Messages:  messages,
		CreatedAt: time.Unix(0, rec.TouchedAt),
	}, nil
}
