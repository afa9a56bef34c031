package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/iyunix/go-chatfront/internal/events"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Show the chat list and refresh it whenever it changes",
	Long: `watch prints the saved chats and prints them again each time the
database changes, including writes from other chat processes.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()
		if !isDurable(app) {
			return errors.New("chat history is disabled (no database path)")
		}
		app.Config.Watch = true
		if err := app.StartWatcher(); err != nil {
			return fmt.Errorf("watch database: %w", err)
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
		defer stop()
		return watchSessions(ctx, app, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

// watchSessions renders the list once, then again after every change
// until ctx ends. Bursts of changes collapse into one render.
func watchSessions(ctx context.Context, app *App, out io.Writer) error {
	changed := make(chan events.Origin, 1)
	unsubscribe := app.Bus.Subscribe(func(c events.Change) {
		select {
		case changed <- c.Origin:
		default:
		}
	})
	defer unsubscribe()

	render := func(note string) error {
		lctx, cancel := context.WithTimeout(ctx, storeTimeout)
		defer cancel()
		sessions, err := app.Store.List(lctx)
		if err != nil {
			return err
		}
		if note != "" {
			fmt.Fprintln(out, mutedStyle.Render(note))
		}
		renderSessionList(out, sessions, "")
		return nil
	}

	if err := render(""); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case origin := <-changed:
			note := fmt.Sprintf("%s change at %s", origin, time.Now().Format("15:04:05"))
			if err := render(note); err != nil {
				app.Logger.Error("refresh chat list failed", "error", err)
				fmt.Fprintln(out, errorStyle.Render(err.Error()))
			}
		}
	}
}
