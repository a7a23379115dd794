package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"shuttle/internal/modules/pricing"
)

func newQuoteCmd(loc func() (*time.Location, error)) *cobra.Command {
	var (
		base        int64
		destination string
		date        string
		clock       string
		now         string
		format      string
	)
	c := &cobra.Command{
		Use:   "quote",
		Short: "Quote a fare for a travel date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			l, err := loc()
			if err != nil {
				return err
			}
			engine, err := newEngine(now, l)
			if err != nil {
				return err
			}
			res, err := engine.Compute(pricing.QuoteRequest{
				BasePrice:        base,
				DestinationLabel: destination,
				TravelDate:       date,
				TravelTime:       clock,
			})
			if err != nil {
				return err
			}
			switch format {
			case "json":
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(res.View())
			case "table":
				return writeQuoteTable(cmd.OutOrStdout(), res)
			default:
				return fmt.Errorf("unknown --format %q (table, json)", format)
			}
		},
	}
	c.Flags().Int64Var(&base, "base", 0, "base price in CLP")
	c.Flags().StringVar(&destination, "destination", "", "destination label shown on each adjustment")
	c.Flags().StringVar(&date, "date", "", "travel date, YYYY-MM-DD with optional THH:MM")
	c.Flags().StringVar(&clock, "time", "", "departure time HH:MM, overrides the time in --date")
	c.Flags().StringVar(&now, "now", "", "pretend the current time is this (YYYY-MM-DD[THH:MM])")
	c.Flags().StringVarP(&format, "format", "f", "table", "output format (table, json)")
	_ = c.MarkFlagRequired("base")
	_ = c.MarkFlagRequired("date")
	return c
}

func writeQuoteTable(out io.Writer, res pricing.QuoteResult) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Tarifa base\t\t%s\n", clp(res.BasePrice))
	fmt.Fprintf(w, "Días de anticipación\t\t%d\n", res.LeadDays)
	for _, a := range res.AppliedAdjustments {
		fmt.Fprintf(w, "%s\t%s\t%s\n", a.Name, percent(a.Percentage.Mul(hundred).String()), a.Detail)
	}
	fmt.Fprintf(w, "Ajuste total\t%s\t%s\n", percent(res.TotalAdjustmentFraction.Mul(hundred).String()), clp(res.AdjustmentAmount))
	fmt.Fprintf(w, "Total\t\t%s\n", clp(res.FinalPrice))
	return w.Flush()
}

func percent(v string) string {
	if !strings.HasPrefix(v, "-") {
		v = "+" + v
	}
	return v + "%"
}

var pesos = message.NewPrinter(language.MustParse("es-CL"))

// clp formats whole pesos with Chilean digit grouping, e.g. $81.000.
func clp(v int64) string {
	s := pesos.Sprintf("%d", v)
	if rest, neg := strings.CutPrefix(s, "-"); neg {
		return "-$" + rest
	}
	return "$" + s
}
