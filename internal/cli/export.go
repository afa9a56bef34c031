package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iyunix/go-chatfront/internal/export"
	"github.com/iyunix/go-chatfront/internal/repository/session"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export <id>",
	Short: "Write a saved chat as a standalone HTML page",
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

			if exportOutput == "" || exportOutput == "-" {
				return export.HTML(cmd.OutOrStdout(), *s)
			}
			if err := writeExport(exportOutput, *s); err != nil {
				return err
			}
			fmt.Fprintln(cmd.ErrOrStderr(), "Wrote "+exportOutput)
			return nil
		})
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default stdout)")
	rootCmd.AddCommand(exportCmd)
}
