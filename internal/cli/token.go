package cli

import (
	"errors"
	"time"

	"binder/internal/auth"
	"binder/internal/config"

	"github.com/spf13/cobra"
)

// TokenCmd returns the token command. It signs a caller token with
// AUTH_HMAC_SECRET for local development against the API.
func TokenCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a development caller token",
		Long: `Sign a caller JWT with AUTH_HMAC_SECRET. Only useful when the server
verifies tokens with the same secret instead of a JWKS endpoint.

Examples:
  TOKEN=$(binderctl token --user=admin-1 --capability=gform_full_access --quiet)
  curl -H "Authorization: Bearer $TOKEN" localhost:8080/api/forms/folders
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := formatterFor(cmd)
			if cfg.AuthHMACSecret == "" {
				err := errors.New("AUTH_HMAC_SECRET is not set")
				_ = formatter.ErrorWithSuggestion("NO_SECRET", err.Error(), "Export AUTH_HMAC_SECRET or add it to .env")
				return &CommandError{Code: ExitUsage, Err: err}
			}

			user, _ := cmd.Flags().GetString("user")
			email, _ := cmd.Flags().GetString("email")
			capabilities, _ := cmd.Flags().GetStringSlice("capability")
			ttl, _ := cmd.Flags().GetDuration("ttl")

			token, err := auth.IssueCallerToken(cfg.AuthHMACSecret, user, email, capabilities, ttl)
			if err != nil {
				_ = formatter.Error("TOKEN_ERROR", err.Error())
				return &CommandError{Code: ExitError, Err: err}
			}

			if formatter.Quiet {
				formatter.Line("%s", token)
				return nil
			}
			if formatter.JSON {
				return formatter.JSONSuccess(map[string]any{
					"token":      token,
					"user_id":    user,
					"expires_at": time.Now().Add(ttl).UTC(),
				})
			}
			formatter.Line("✓ Token for %s (valid %s)", user, ttl)
			formatter.Line("%s", token)
			return nil
		},
	}

	cmd.Flags().String("user", "binderctl", "Subject of the token")
	cmd.Flags().String("email", "", "Email claim")
	cmd.Flags().StringSlice("capability", []string{"gform_full_access", "edit_gravityviews"}, "Capabilities to grant (repeatable)")
	cmd.Flags().Duration("ttl", time.Hour, "Token lifetime")
	addOutputFlags(cmd)
	return cmd
}
