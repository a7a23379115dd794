// Package cmd provides the farectl commands.
package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"shuttle/internal/modules/pricing"
)

// NewRootCmd builds the command tree. Tests build their own tree per run.
func NewRootCmd() *cobra.Command {
	var timezone string

	root := &cobra.Command{
		Use:   "farectl",
		Short: "Compute dynamic fare quotes offline",
		Long: `farectl applies the fare adjustment rules (lead time, weekend demand and
early departure) to a base price without a running server.

Examples:
  farectl quote --base 60000 --destination Pucón --date 2025-06-07 --time 08:00
  farectl quote --base 60000 --date 2025-06-07 --now 2025-06-04T06:30 --format json
  farectl rules`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&timezone, "tz", "America/Santiago", "business timezone for today's date")

	loc := func() (*time.Location, error) {
		l, err := time.LoadLocation(timezone)
		if err != nil {
			return nil, fmt.Errorf("invalid --tz %q: %w", timezone, err)
		}
		return l, nil
	}

	root.AddCommand(newQuoteCmd(loc))
	root.AddCommand(newRulesCmd())
	return root
}

func Execute() error {
	return NewRootCmd().Execute()
}

// newEngine uses now when set, otherwise the wall clock in loc.
func newEngine(now string, loc *time.Location) (*pricing.Engine, error) {
	var clock pricing.Clock = pricing.SystemClock{Location: loc}
	if now != "" {
		at, err := parseNow(now, loc)
		if err != nil {
			return nil, err
		}
		clock = pricing.FixedClock{At: at}
	}
	return pricing.NewEngine(pricing.DefaultRuleSet(), clock)
}

func parseNow(v string, loc *time.Location) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02 15:04", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, v, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid --now %q: want YYYY-MM-DD[THH:MM]", v)
}
