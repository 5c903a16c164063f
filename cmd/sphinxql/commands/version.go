package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/satishbabariya/sphinxql-go/internal/version"
	"github.com/satishbabariya/sphinxql-go/pkg/client"
	"github.com/satishbabariya/sphinxql-go/pkg/sphinxql"
)

// NewVersionCommand creates the version command.
func NewVersionCommand(app *App) *cobra.Command {
	var server bool
	var status bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  "Print the CLI build information and, with --server, the searchd version.",
		RunE: func(cmd *cobra.Command, args []string) error {
			report := version.Current()
			if !server {
				fmt.Fprintln(cmd.OutOrStdout(), report)
				return nil
			}

			return app.WithClient(cmd.Context(), func(c *client.Client) error {
				v, err := c.ServerVersion(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), report.WithServer(v))

				if !status {
					return nil
				}
				result, err := c.Helper().ShowStatus().Execute(cmd.Context())
				if err != nil {
					return err
				}
				return printPairs(sphinxql.PairsToMap(result))
			})
		},
	}

	cmd.Flags().BoolVar(&server, "server", false, "also query the searchd version")
	cmd.Flags().BoolVar(&status, "status", false, "with --server, print every status counter")

	return cmd
}
