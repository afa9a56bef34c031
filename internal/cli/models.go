package cli

import (
	"context"

	"github.com/spf13/cobra"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the models the server offers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withServer(cmd, func(ctx context.Context, app *App) error {
			models, def, err := app.Client.Models(ctx)
			if err != nil {
				return err
			}
			renderModels(cmd.OutOrStdout(), models, def, app.Config.Model)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}
