package cli

import (
	"context"
	"errors"

	"binder/internal/app"
	"binder/internal/service/folders"

	"github.com/spf13/cobra"
)

// PurgeCmd returns the purge command
func PurgeCmd(open Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Remove every folder of a kind",
		Long: `Remove every folder, assignment and saved order of one kind.
Records are not touched; they all become unassigned.

Examples:
  binderctl purge --kind=form --force
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := formatterFor(cmd)
			kind, err := parseKind(cmd, formatter)
			if err != nil {
				return err
			}

			if force, _ := cmd.Flags().GetBool("force"); !force {
				err := errors.New("purge removes every folder of the kind")
				_ = formatter.ErrorWithSuggestion("CONFIRMATION_REQUIRED", err.Error(), "Re-run with --force")
				return &CommandError{Code: ExitUsage, Err: err}
			}

			return withApp(cmd, open, formatter, func(ctx context.Context, a *app.App) error {
				res, err := execute(ctx, a, formatter, folders.PurgeKind{Envelope: folders.Envelope{Kind: kind}})
				if err != nil {
					return err
				}
				if formatter.JSON {
					return formatter.JSONSuccess(res.Data)
				}
				if !formatter.Quiet {
					formatter.Line("✓ %s", res.Message)
				}
				return nil
			})
		},
	}

	cmd.Flags().String("kind", "", "Record kind: form or view (required)")
	cmd.Flags().Bool("force", false, "Confirm the purge")
	addOutputFlags(cmd)
	return cmd
}
