package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"
)

var passwordStdin bool

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to the chat server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		secret, err := readSecret(cmd)
		if err != nil {
			return err
		}
		return withServer(cmd, func(ctx context.Context, app *App) error {
			if !app.Gate.Login(ctx, secret) {
				return errors.New("login failed")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged in.")
			return nil
		})
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out and forget the saved login",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withServer(cmd, func(ctx context.Context, app *App) error {
			if err := app.Gate.Logout(ctx); err != nil {
				return fmt.Errorf("logged out locally: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		})
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether the saved login is accepted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withServer(cmd, func(ctx context.Context, app *App) error {
			if err := app.Gate.Init(ctx); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "server:  %s\n", app.Config.ServerURL)
			if app.Gate.Authenticated() {
				fmt.Fprintln(out, "login:   "+assistantStyle.Render("logged in"))
			} else {
				fmt.Fprintln(out, "login:   "+warningStyle.Render("not logged in"))
			}
			history := app.Config.DBPath
			if !isDurable(app) {
				history = "disabled"
			}
			fmt.Fprintf(out, "history: %s\n", history)
			return nil
		})
	},
}

func init() {
	loginCmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read the password from standard input")
	rootCmd.AddCommand(loginCmd, logoutCmd, statusCmd)
}

func readSecret(cmd *cobra.Command) (string, error) {
	if passwordStdin {
		sc := bufio.NewScanner(cmd.InOrStdin())
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return "", err
			}
			return "", errors.New("no password on standard input")
		}
		return strings.TrimRight(sc.Text(), "\r\n"), nil
	}

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)
	secret, err := line.PasswordPrompt("Password: ")
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return secret, nil
}

// withServer opens the app for a one-shot server command.
func withServer(cmd *cobra.Command, fn func(ctx context.Context, app *App) error) error {
	app, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	return fn(ctx, app)
}
