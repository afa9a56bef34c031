package events

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/iyunix/go-chatfront/internal/logging"
)

// WatcherConfig tunes the database file watcher.
type WatcherConfig struct {
	// Debounce collapses a burst of file events into one notification.
	Debounce time.Duration
	// PollInterval is how often pending events are checked.
	PollInterval time.Duration
	// VersionTimeout bounds one DataVersion query.
	VersionTimeout time.Duration
}

// DataVersion reports a counter that moves only when another connection
// commits to the database, such as SQLite's PRAGMA data_version read on
// this process's own connection.
type DataVersion func(ctx context.Context) (int64, error)

// DefaultWatcherConfig returns the defaults used by the chat client.
func DefaultWatcherConfig() WatcherConfig {
	return WatcherConfig{
		Debounce:       150 * time.Millisecond,
		PollInterval:   50 * time.Millisecond,
		VersionTimeout: 2 * time.Second,
	}
}

// FileWatcher turns writes made by other processes to the SQLite database
// (main file, -wal, -shm and -journal siblings) into OriginForeign changes.
// File events only wake it up; a burst is published when the DataVersion
// moved, so this process's own commits never count as foreign. Without a
// DataVersion every burst is published.
type FileWatcher struct {
	cfg     WatcherConfig
	bus     *Bus
	dbPath  string
	names   map[string]struct{}
	version DataVersion
	watcher *fsnotify.Watcher
	logger  logging.Logger

	mu        sync.Mutex
	lastEvent time.Time
	pending   bool

	// lastVersion is only touched by Start and the event loop.
	lastVersion int64
	haveVersion bool

	started bool
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewFileWatcher creates a watcher for dbPath. Call Start to begin watching.
func NewFileWatcher(bus *Bus, dbPath string, version DataVersion, cfg WatcherConfig, logger logging.Logger) (*FileWatcher, error) {
	if logger == nil {
		logger = &logging.NoOpLogger{}
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if cfg.VersionTimeout <= 0 {
		cfg.VersionTimeout = DefaultWatcherConfig().VersionTimeout
	}
	clean := filepath.Clean(dbPath)
	names := make(map[string]struct{}, 4)
	for _, suffix := range []string{"", "-wal", "-shm", "-journal"} {
		names[clean+suffix] = struct{}{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &FileWatcher{
		cfg:     cfg,
		bus:     bus,
		dbPath:  clean,
		names:   names,
		version: version,
		watcher: w,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}, nil
}

// Start watches the database directory and begins the event loop.
func (fw *FileWatcher) Start() error {
	if err := fw.watcher.Add(filepath.Dir(fw.dbPath)); err != nil {
		return err
	}
	if fw.version != nil {
		v, err := fw.readVersion()
		if err != nil {
			fw.logger.Warn("could not read database version", "error", err)
		} else {
			fw.lastVersion, fw.haveVersion = v, true
		}
	}
	fw.started = true
	go fw.loop()
	fw.logger.Debug("database watcher started", "path", fw.dbPath)
	return nil
}

// Close stops the watcher. It is safe to call once Start has returned.
func (fw *FileWatcher) Close() error {
	fw.cancel()
	if fw.started {
		<-fw.done
	}
	return fw.watcher.Close()
}

func (fw *FileWatcher) loop() {
	defer close(fw.done)
	ticker := time.NewTicker(fw.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-fw.ctx.Done():
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if !fw.isDatabaseFile(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			fw.mu.Lock()
			fw.lastEvent = time.Now()
			fw.pending = true
			fw.mu.Unlock()

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.logger.Warn("database watcher error", "error", err)

		case now := <-ticker.C:
			fw.flush(now)
		}
	}
}

func (fw *FileWatcher) flush(now time.Time) {
	fw.mu.Lock()
	if !fw.pending || now.Sub(fw.lastEvent) < fw.cfg.Debounce {
		fw.mu.Unlock()
		return
	}
	fw.pending = false
	fw.mu.Unlock()

	if !fw.versionMoved() {
		return
	}
	fw.logger.Debug("foreign database change detected", "path", fw.dbPath)
	fw.bus.NotifyForeign()
}

// versionMoved reports whether another connection committed since the last
// check. A failed read counts as moved so a foreign write is never lost.
func (fw *FileWatcher) versionMoved() bool {
	if fw.version == nil {
		return true
	}
	v, err := fw.readVersion()
	if err != nil {
		if fw.ctx.Err() != nil {
			return false
		}
		fw.logger.Warn("could not read database version", "error", err)
		return true
	}
	moved := !fw.haveVersion || v != fw.lastVersion
	fw.lastVersion, fw.haveVersion = v, true
	return moved
}

func (fw *FileWatcher) readVersion() (int64, error) {
	ctx, cancel := context.WithTimeout(fw.ctx, fw.cfg.VersionTimeout)
	defer cancel()
	return fw.version(ctx)
}

func (fw *FileWatcher) isDatabaseFile(name string) bool {
	_, ok := fw.names[filepath.Clean(name)]
	return ok
}
