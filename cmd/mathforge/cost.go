package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mathforge-ai/mathforge/pkg/config"
	"github.com/mathforge-ai/mathforge/pkg/costs"
	"github.com/mathforge-ai/mathforge/pkg/models"
)

func newCostCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "cost",
		Short: "Show journaled spend by provider and model",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if configPath != "" {
				var err error
				cfg, err = config.Load(configPath)
				if err != nil {
					return err
				}
			}

			ledger, err := costs.OpenLedger(cfg.Ledger.DBPath)
			if err != nil {
				return err
			}
			defer func() { _ = ledger.Close() }()

			reports, err := ledger.Summary(context.Background())
			if err != nil {
				return err
			}
			fmt.Print(formatCostTable(reports))
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to config file")
	return cmd
}

func formatCostTable(reports []models.CostReport) string {
	if len(reports) == 0 {
		return "No usage recorded.\n"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%-12s %-28s %9s %12s %12s %11s\n",
		"PROVIDER", "MODEL", "REQUESTS", "IN TOKENS", "OUT TOKENS", "COST")
	b.WriteString(strings.Repeat("-", 88) + "\n")

	var total float64
	for _, r := range reports {
		fmt.Fprintf(&b, "%-12s %-28s %9d %12d %12d $%10.4f\n",
			r.Provider, r.Model, r.RequestCount, r.PromptTokens, r.CompletionTokens, r.CostUSD)
		total += r.CostUSD
	}
	b.WriteString(strings.Repeat("-", 88) + "\n")
	fmt.Fprintf(&b, "%76s $%10.4f\n", "TOTAL:", total)
	return b.String()
}
