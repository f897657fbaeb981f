// Package cli implements binderctl, the admin command line for folders.
// Commands run in-process against the same gateway the HTTP server uses.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"binder/internal/app"
	"binder/internal/config"
	"binder/internal/domain/models"
	"binder/internal/service/folders"

	"github.com/spf13/cobra"
)

// Opener builds the application a command runs against
type Opener func(ctx context.Context) (*app.App, error)

// AppOpener opens the application described by cfg
func AppOpener(cfg *config.Config, logger *slog.Logger) Opener {
	return func(ctx context.Context) (*app.App, error) {
		return app.New(ctx, cfg, logger)
	}
}

// callerFor returns the identity binderctl acts as. It holds every
// capability the policy knows about.
func callerFor(a *app.App) *models.Caller {
	return &models.Caller{
		UserID:       "binderctl",
		Capabilities: a.Policy.Capabilities(),
	}
}

func formatterFor(cmd *cobra.Command) *OutputFormatter {
	jsonOutput, _ := cmd.Flags().GetBool("json")
	quietMode, _ := cmd.Flags().GetBool("quiet")
	return &OutputFormatter{
		JSON:  jsonOutput,
		Quiet: quietMode,
		Out:   cmd.OutOrStdout(),
		Err:   cmd.ErrOrStderr(),
	}
}

func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("json", false, "Output in JSON format")
	cmd.Flags().Bool("quiet", false, "Minimal output (IDs only)")
}

// parseKind reads the required --kind flag
func parseKind(cmd *cobra.Command, formatter *OutputFormatter) (models.Kind, error) {
	raw, _ := cmd.Flags().GetString("kind")
	kind, err := models.ParseKind(raw)
	if err != nil {
		_ = formatter.ErrorWithSuggestion("INVALID_KIND", err.Error(), "Use --kind=form or --kind=view")
		return "", &CommandError{Code: ExitUsage, Err: err}
	}
	return kind, nil
}

// withApp opens the application for the duration of fn
func withApp(cmd *cobra.Command, open Opener, formatter *OutputFormatter, fn func(ctx context.Context, a *app.App) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := open(ctx)
	if err != nil {
		_ = formatter.Error("INITIALIZATION_ERROR", err.Error())
		return &CommandError{Code: ExitError, Err: fmt.Errorf("initialize: %w", err)}
	}
	defer a.Close()

	return fn(ctx, a)
}

// execute runs a gateway command as the binderctl caller. A failed result
// is reported through formatter and returned as a CommandError.
func execute(ctx context.Context, a *app.App, formatter *OutputFormatter, command folders.Command) (*folders.Result, error) {
	res := a.Gateway.ExecuteTrusted(ctx, callerFor(a), command)
	if res.Success {
		return res, nil
	}

	_ = formatter.Error(string(res.Error.Kind), res.Error.Message)
	return res, &CommandError{
		Code: exitCodeFor(res.Error.Kind),
		Err:  errors.New(res.Error.Message),
	}
}
