package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"shuttle/internal/modules/pricing"
)

var hundred = decimal.NewFromInt(100)

func newRulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "Print the fare adjustment rule table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "REGLA\tCATEGORÍA\tAJUSTE\tCONDICIÓN")
			for _, r := range pricing.DefaultRuleSet().Describe() {
				pct := decimal.NewFromFloat(r.Percentage).Mul(hundred).String()
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.Name, r.Category, percent(pct), r.Condition)
			}
			return w.Flush()
		},
	}
}
