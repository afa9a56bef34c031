package session

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/iyunix/go-chatfront/internal/database"
	"github.com/iyunix/go-chatfront/internal/events"
	"github.com/iyunix/go-chatfront/internal/logging"
)

// Opened bundles a ready store with the database handle behind it, if any.
type Opened struct {
	Store Store
	DB    *gorm.DB
}

// Close releases the database, if one was opened.
func (o *Opened) Close() error {
	if o.DB == nil {
		return nil
	}
	return database.Close(o.DB)
}

// DataVersion reports the database's commit counter as seen by this
// process's connection; it moves only when another connection commits.
func (o *Opened) DataVersion(ctx context.Context) (int64, error) {
	if o.DB == nil {
		return 0, errors.New("no session database open")
	}
	return database.DataVersion(ctx, o.DB)
}

// Open builds the notifying store for path. An empty path yields the
// unavailable store, so the rest of the client still works without history.
func Open(path string, pub events.Publisher, logger logging.Logger, opts ...Option) (*Opened, error) {
	if logger == nil {
		logger = &logging.NoOpLogger{}
	}
	if strings.TrimSpace(path) == "" {
		logger.Warn("no session database configured, history is disabled")
		return &Opened{Store: WithNotifications(NewUnavailableStore(), pub)}, nil
	}

	db, err := database.Open(path, &Record{})
	if err != nil {
		return nil, newStorageError("open", "", "cannot open session database", err)
	}
	logger.Info("session database ready", "path", path)
	return &Opened{
		Store: WithNotifications(NewGormRepository(db, logger, opts...), pub),
		DB:    db,
	}, nil
}
