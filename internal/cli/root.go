package cli

import (
	"binder/internal/config"

	"github.com/spf13/cobra"
)

// NewRootCmd builds the binderctl command tree
func NewRootCmd(open Opener, cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "binderctl",
		Short: "binderctl - manage form and view folders",
		Long: `binderctl is the admin command line for binder. It talks to the
database directly and runs every change through the same checks as the API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(MigrateCmd(open))
	cmd.AddCommand(FoldersCmd(open))
	cmd.AddCommand(PurgeCmd(open))
	cmd.AddCommand(PolicyCmd(open))
	cmd.AddCommand(TokenCmd(cfg))

	return cmd
}
