package cli

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/iyunix/go-chatfront/internal/auth"
	"github.com/iyunix/go-chatfront/internal/client"
	"github.com/iyunix/go-chatfront/internal/config"
	"github.com/iyunix/go-chatfront/internal/events"
	"github.com/iyunix/go-chatfront/internal/logging"
	"github.com/iyunix/go-chatfront/internal/repository/session"
	"github.com/iyunix/go-chatfront/internal/services/chat"
)

// App holds the client's explicit context objects. It is built once per
// command and torn down when the command returns.
type App struct {
	Config  *config.ClientConfig
	Logger  logging.Logger
	Bus     *events.Bus
	Store   session.Store
	Client  *client.Client
	Gate    *auth.Gate
	Chat    *chat.Controller
	watcher *events.FileWatcher
	opened  *session.Opened
}

// NewApp wires the store, bus, client, gate and controller from cfg.
func NewApp(cfg *config.ClientConfig, logger logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.NewLoggerTo(os.Stderr, "chat")
	}
	bus := events.NewBus(logger)

	opened, err := session.Open(cfg.DBPath, bus, logger)
	if err != nil {
		return nil, err
	}

	c, err := client.New(cfg.ServerURL, cfg.CookieFile, logger)
	if err != nil {
		_ = opened.Close()
		return nil, err
	}

	gate := auth.NewGate(c, logger)
	chatCfg := chat.DefaultConfig()
	if cfg.Model != "" {
		chatCfg.DefaultModel = cfg.Model
	}
	ctrl := chat.NewController(chatCfg, opened.Store, c, gate, logger)

	return &App{
		Config: cfg,
		Logger: logger,
		Bus:    bus,
		Store:  opened.Store,
		Client: c,
		Gate:   gate,
		Chat:   ctrl,
		opened: opened,
	}, nil
}

// StartWatcher begins publishing foreign changes to the session database.
// It does nothing without a durable store or when watching is disabled.
func (a *App) StartWatcher() error {
	if !a.Config.Watch || !session.IsAvailable(a.Store) || a.watcher != nil {
		return nil
	}
	fw, err := events.NewFileWatcher(a.Bus, a.Config.DBPath, a.opened.DataVersion, events.DefaultWatcherConfig(), a.Logger)
	if err != nil {
		return err
	}
	if err := fw.Start(); err != nil {
		_ = fw.Close()
		return err
	}
	a.watcher = fw
	return nil
}

// InitAuth runs the gate's startup check with a short timeout.
func (a *App) InitAuth(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return a.Gate.Init(ctx)
}

func (a *App) Close() error {
	var errs []error
	a.Chat.Cancel()
	if a.watcher != nil {
		errs = append(errs, a.watcher.Close())
	}
	errs = append(errs, a.opened.Close())
	return errors.Join(errs...)
}
