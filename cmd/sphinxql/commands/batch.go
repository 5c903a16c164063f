package commands

import (
	"context"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/satishbabariya/sphinxql-go/internal/logger"
	"github.com/satishbabariya/sphinxql-go/internal/ui"
	"github.com/satishbabariya/sphinxql-go/internal/watch"
	"github.com/satishbabariya/sphinxql-go/pkg/client"
	"github.com/satishbabariya/sphinxql-go/pkg/sphinxql"
)

// NewBatchCommand creates the batch command.
func NewBatchCommand(app *App) *cobra.Command {
	var watchFile bool
	var meta bool

	cmd := &cobra.Command{
		Use:   "batch <file.sql>",
		Short: "Run a file of statements in one round trip",
		Long: `Run every statement of a SQL file as one multi-statement batch and
print each result. With --watch the file is run again whenever it changes;
with --metrics the Prometheus endpoint stays up while watching.`,
		Example: `  sphinxql batch queries.sql
  sphinxql batch --watch --metrics :9090 queries.sql`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file := args[0]
			app.ServeMetrics()

			return app.WithClient(cmd.Context(), func(c *client.Client) error {
				run := func(ctx context.Context) error {
					return runBatchFile(cmd, c, file, meta)
				}

				if !watchFile {
					return run(cmd.Context())
				}

				w, err := watch.NewWatcher(file, run, watch.WithErrorHandler(func(err error) {
					ui.PrintError("%v", err)
					app.Log.Error("batch failed", logger.String("file", file), logger.Error(err))
				}))
				if err != nil {
					return err
				}
				defer w.Stop()

				if err := w.Start(cmd.Context()); err != nil {
					return err
				}
				ui.PrintInfo("watching %s, press Ctrl+C to stop", file)

				<-cmd.Context().Done()
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&watchFile, "watch", false, "run again when the file changes")
	cmd.Flags().BoolVar(&meta, "meta", false, "append SHOW META to the batch")

	return cmd
}

func runBatchFile(cmd *cobra.Command, c *client.Client, file string, meta bool) error {
	data, err := os.ReadFile(file)
	if err != nil {
		return errors.Wrap(err, "read batch")
	}

	statements := splitStatements(string(data))
	if len(statements) == 0 {
		return sphinxql.ErrEmptyQueue
	}

	head := c.Builder().Query(statements[0])
	for _, statement := range statements[1:] {
		head.Enqueue(c.Builder().Query(statement))
	}
	if meta {
		head.Enqueue(c.Helper().ShowMeta())
	}

	return runBatch(cmd, head.GetQueue(), head)
}
