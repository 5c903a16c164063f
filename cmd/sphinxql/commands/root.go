// Package commands implements CLI commands.
package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/satishbabariya/sphinxql-go/internal/version"
)

// Execute runs the CLI with the process arguments.
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

// NewRootCommand creates the command tree.
func NewRootCommand() *cobra.Command {
	app := &App{}

	root := &cobra.Command{
		Use:   "sphinxql",
		Short: "SphinxQL query builder and client for Sphinx and Manticore Search",
		Long: `sphinxql builds, escapes and runs SphinxQL statements against searchd.

Connection settings come from .sphinxql.yaml, .env files, SPHINXQL_*
environment variables and the flags below, later sources winning.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.Init(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return app.Close(cmd.Context())
		},
	}

	app.BindFlags(root.PersistentFlags())

	root.AddCommand(
		NewQueryCommand(app),
		NewCompileCommand(app),
		NewMatchCommand(app),
		NewBatchCommand(app),
		NewShowCommand(app),
		NewDescribeCommand(app),
		NewKeywordsCommand(app),
		NewInitCommand(app),
		NewVersionCommand(app),
		NewSyntaxCommand(),
	)

	return root
}
