package cli

import (
	"context"

	"binder/internal/app"
	"binder/internal/domain/models"

	"github.com/spf13/cobra"
)

type policyRow struct {
	Operation    string            `json:"operation"`
	Level        string            `json:"level"`
	Capabilities map[string]string `json:"capabilities"`
}

// PolicyCmd returns the policy command
func PolicyCmd(open Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "policy",
		Short: "Show which capability each operation needs",
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := formatterFor(cmd)
			return withApp(cmd, open, formatter, func(_ context.Context, a *app.App) error {
				rows := make([]policyRow, 0, len(a.Policy.Rules()))
				for _, rule := range a.Policy.Rules() {
					row := policyRow{
						Operation:    rule.Operation,
						Level:        string(rule.Level),
						Capabilities: make(map[string]string, len(models.Kinds)),
					}
					for _, kind := range models.Kinds {
						capability, err := a.Policy.Required(rule.Operation, kind)
						if err != nil {
							return err
						}
						row.Capabilities[string(kind)] = capability
					}
					rows = append(rows, row)
				}

				if formatter.JSON {
					return formatter.JSONSuccess(rows)
				}
				for _, row := range rows {
					if formatter.Quiet {
						formatter.Line("%s", row.Operation)
						continue
					}
					formatter.Line("%-22s %-7s form=%s view=%s", row.Operation, row.Level,
						row.Capabilities[string(models.KindForm)], row.Capabilities[string(models.KindView)])
				}
				return nil
			})
		},
	}
	addOutputFlags(cmd)
	return cmd
}
