package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/iyunix/go-chatfront/internal/config"
	"github.com/iyunix/go-chatfront/internal/logging"
)

var (
	serverURL string
	dbPath    string
	modelID   string
	sessionID string
	noWatch   bool
	verbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "chat",
	Short: "Terminal chat client with persistent history",
	Long: `chat talks to a chatfront server and keeps every conversation in a
local SQLite database. Run it without a subcommand to start chatting.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()
		return newREPL(app, cmd.OutOrStdout()).Run(cmd.Context(), sessionID)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&serverURL, "server", "", "server base URL (default $CHAT_SERVER_URL or http://localhost:8080)")
	pf.StringVar(&dbPath, "db", "", "session database path (default $CHAT_DB_PATH)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "log debug output to stderr")

	rootCmd.Flags().StringVarP(&modelID, "model", "m", "", "model to chat with")
	rootCmd.Flags().StringVarP(&sessionID, "session", "s", "", "open the chat with this id")
	rootCmd.Flags().BoolVar(&noWatch, "no-watch", false, "do not watch the database for changes from other processes")
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// clientConfig applies command-line overrides to the environment config.
func clientConfig(cmd *cobra.Command) *config.ClientConfig {
	cfg := config.LoadClient()
	if serverURL != "" {
		cfg.ServerURL = serverURL
	}
	if cmd.Flags().Changed("db") {
		cfg.DBPath = dbPath
	}
	if modelID != "" {
		cfg.Model = modelID
	}
	if noWatch {
		cfg.Watch = false
	}
	return cfg
}

func commandLogger() logging.Logger {
	if !verbose {
		return &logging.NoOpLogger{}
	}
	logger := logging.NewProductionLoggerTo(os.Stderr, "chat")
	logger.SetLevel(logging.LogLevelDebug)
	logger.SetStructured(false)
	return logger
}

func openApp(cmd *cobra.Command) (*App, error) {
	app, err := NewApp(clientConfig(cmd), commandLogger())
	if err != nil {
		return nil, fmt.Errorf("start client: %w", err)
	}
	return app, nil
}
