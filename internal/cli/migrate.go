package cli

import (
	"context"

	"binder/internal/app"

	"github.com/spf13/cobra"
)

// MigrateCmd returns the migrate command
func MigrateCmd(open Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Long: `Create the folder, membership, order and record tables if they are
missing. Safe to run repeatedly.

Examples:
  binderctl migrate
  DB_DRIVER=sqlite SQLITE_PATH=./binder.db binderctl migrate
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := formatterFor(cmd)
			return withApp(cmd, open, formatter, func(_ context.Context, a *app.App) error {
				if formatter.JSON {
					return formatter.JSONSuccess(map[string]any{
						"driver":       a.Store.Driver,
						"table_prefix": a.Config.TablePrefix,
					})
				}
				formatter.Line("✓ Schema ready (driver: %s, prefix: %q)", a.Store.Driver, a.Config.TablePrefix)
				return nil
			})
		},
	}
	addOutputFlags(cmd)
	return cmd
}
