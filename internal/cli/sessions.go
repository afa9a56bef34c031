package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iyunix/go-chatfront/internal/repository/session"
)

var clearYes bool

var sessionsCmd = &cobra.Command{
	Use:     "sessions",
	Aliases: []string{"ls"},
	Short:   "Manage saved chats",
	RunE:    runSessionsList,
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved chats, most recent first",
	Args:  cobra.NoArgs,
	RunE:  runSessionsList,
}

var sessionsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a saved chat",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(ctx context.Context, app *App) error {
			s, err := app.Store.GetByID(ctx, args[0])
			if errors.Is(err, session.ErrSessionNotFound) {
				return fmt.Errorf("no chat with id %s", args[0])
			}
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, headerStyle.Render(s.Title))
			fmt.Fprintln(out, idStyle.Render(s.ID))
			fmt.Fprintln(out)
			renderConversation(out, s.Messages)
			return nil
		})
	},
}

var sessionsRenameCmd = &cobra.Command{
	Use:   "rename <id> <title>",
	Short: "Change a chat's title",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		title := joinArgs(args[1:])
		return withStore(cmd, func(ctx context.Context, app *App) error {
			if err := app.Store.Rename(ctx, args[0], title); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Renamed "+args[0])
			return nil
		})
	},
}

var sessionsDeleteCmd = &cobra.Command{
	Use:     "delete <id>...",
	Aliases: []string{"rm"},
	Short:   "Delete saved chats",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(ctx context.Context, app *App) error {
			for _, id := range args {
				if err := app.Store.Delete(ctx, id); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Deleted "+id)
			}
			return nil
		})
	},
}

var sessionsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every saved chat",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !clearYes {
			return errors.New("refusing to delete every chat without --yes")
		}
		return withStore(cmd, func(ctx context.Context, app *App) error {
			if err := app.Store.Clear(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "All chats deleted.")
			return nil
		})
	},
}

func init() {
	sessionsClearCmd.Flags().BoolVarP(&clearYes, "yes", "y", false, "confirm deleting every chat")

	sessionsCmd.AddCommand(sessionsListCmd, sessionsShowCmd, sessionsRenameCmd, sessionsDeleteCmd, sessionsClearCmd)
	rootCmd.AddCommand(sessionsCmd)
}

func runSessionsList(cmd *cobra.Command, args []string) error {
	return withStore(cmd, func(ctx context.Context, app *App) error {
		sessions, err := app.Store.List(ctx)
		if err != nil {
			return err
		}
		renderSessionList(cmd.OutOrStdout(), sessions, "")
		return nil
	})
}

// withStore opens the app for a one-shot store command. Without a durable
// store there is nothing to manage.
func withStore(cmd *cobra.Command, fn func(ctx context.Context, app *App) error) error {
	app, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close()
	if !isDurable(app) {
		return errors.New("chat history is disabled (no database path)")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	return fn(ctx, app)
}

func joinArgs(args []string) string {
	return strings.Join(args, " ")
}
