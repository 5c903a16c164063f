package commands

import (
	"github.com/spf13/cobra"

	"github.com/satishbabariya/sphinxql-go/internal/config"
	"github.com/satishbabariya/sphinxql-go/internal/ui"
)

// NewInitCommand creates the init command.
func NewInitCommand(app *App) *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the current settings to the user config file",
		Long: `Write the effective connection settings, including the global flags
given on this command line, to $HOME/.config/sphinxql/.sphinxql.yaml.`,
		Example: `  sphinxql init --host search.internal --port 9306 --log-queries
  sphinxql init --check`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.Save(config.AppFs, app.Config)
			if err != nil {
				return err
			}
			ui.PrintSuccess("Wrote %s", path)

			if !check {
				return nil
			}
			c, err := app.Client(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close(cmd.Context())
			ui.PrintSuccess("Connected to %s:%d", app.Config.Host, app.Config.Port)
			return nil
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "connect once to verify the settings")

	return cmd
}
