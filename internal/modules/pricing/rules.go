// README: Static adjustment rule tables (lead time brackets, demand days, premium hour).
package pricing

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Unbounded marks the open upper end of the last lead-time bracket.
const Unbounded = -1

type LeadTimeBracket struct {
	Name       string
	Detail     string
	MinDays    int
	MaxDays    int
	Percentage decimal.Decimal
}

func (b LeadTimeBracket) Contains(days int) bool {
	if days < b.MinDays {
		return false
	}
	return b.MaxDays == Unbounded || days <= b.MaxDays
}

type Rule struct {
	Name       string
	Detail     string
	Percentage decimal.Decimal
}

// RuleSet is the full adjustment configuration. Treat it as a value: the engine
// keeps its own copy, so mutating a RuleSet after NewEngine has no effect.
type RuleSet struct {
	LeadTime          []LeadTimeBracket
	DemandDays        []time.Weekday
	DemandDay         Rule
	PremiumBeforeHour int
	PremiumHour       Rule
}

var ErrInvalidRuleSet = errors.New("invalid rule set")

func DefaultRuleSet() RuleSet {
	return RuleSet{
		LeadTime: []LeadTimeBracket{
			{Name: "Reserva para el mismo día", Detail: "Recargo por reservar con menos de 24 horas", MinDays: 0, MaxDays: 0, Percentage: decimal.RequireFromString("0.25")},
			{Name: "Reserva con poca anticipación", Detail: "Recargo por reservar con 1 a 3 días de anticipación", MinDays: 1, MaxDays: 3, Percentage: decimal.RequireFromString("0.10")},
			{Name: "Anticipación estándar", Detail: "Tarifa base para 4 a 13 días de anticipación", MinDays: 4, MaxDays: 13, Percentage: decimal.Zero},
			{Name: "Reserva anticipada", Detail: "Descuento por reservar con 14 a 20 días de anticipación", MinDays: 14, MaxDays: 20, Percentage: decimal.RequireFromString("-0.05")},
			{Name: "Reserva anticipada preferente", Detail: "Descuento por reservar con 21 a 29 días de anticipación", MinDays: 21, MaxDays: 29, Percentage: decimal.RequireFromString("-0.10")},
			{Name: "Reserva anticipada máxima", Detail: "Descuento por reservar con 30 o más días de anticipación", MinDays: 30, MaxDays: Unbounded, Percentage: decimal.RequireFromString("-0.15")},
		},
		DemandDays: []time.Weekday{time.Friday, time.Saturday, time.Sunday},
		DemandDay: Rule{
			Name:       "Alta demanda fin de semana",
			Detail:     "Recargo de viernes a domingo",
			Percentage: decimal.RequireFromString("0.10"),
		},
		PremiumBeforeHour: 9,
		PremiumHour: Rule{
			Name:       "Horario premium",
			Detail:     "Recargo por salidas antes de las 09:00",
			Percentage: decimal.RequireFromString("0.15"),
		},
	}
}

// Validate checks that the lead-time brackets cover [0, ∞) exactly once.
func (rs RuleSet) Validate() error {
	if len(rs.LeadTime) == 0 {
		return fmt.Errorf("%w: no lead-time brackets", ErrInvalidRuleSet)
	}
	next := 0
	for i, b := range rs.LeadTime {
		if b.MinDays != next {
			return fmt.Errorf("%w: bracket %q starts at %d, want %d", ErrInvalidRuleSet, b.Name, b.MinDays, next)
		}
		last := i == len(rs.LeadTime)-1
		if b.MaxDays == Unbounded {
			if !last {
				return fmt.Errorf("%w: unbounded bracket %q is not last", ErrInvalidRuleSet, b.Name)
			}
			continue
		}
		if b.MaxDays < b.MinDays {
			return fmt.Errorf("%w: bracket %q ends before it starts", ErrInvalidRuleSet, b.Name)
		}
		if last {
			return fmt.Errorf("%w: last bracket %q must be unbounded", ErrInvalidRuleSet, b.Name)
		}
		next = b.MaxDays + 1
	}
	if rs.PremiumBeforeHour < 0 || rs.PremiumBeforeHour > 24 {
		return fmt.Errorf("%w: premium hour threshold %d out of range", ErrInvalidRuleSet, rs.PremiumBeforeHour)
	}
	return nil
}

func (rs RuleSet) clone() RuleSet {
	out := rs
	out.LeadTime = slices.Clone(rs.LeadTime)
	out.DemandDays = slices.Clone(rs.DemandDays)
	return out
}

func (rs RuleSet) bracketFor(days int) (LeadTimeBracket, bool) {
	for _, b := range rs.LeadTime {
		if b.Contains(days) {
			return b, true
		}
	}
	return LeadTimeBracket{}, false
}

func (rs RuleSet) isDemandDay(d time.Weekday) bool {
	return slices.Contains(rs.DemandDays, d)
}

// RuleDescription is a flat, display-ready row of the rule table.
type RuleDescription struct {
	Name       string       `json:"name"`
	Category   RuleCategory `json:"category"`
	Percentage float64      `json:"percentage"`
	Condition  string       `json:"condition"`
	Detail     string       `json:"detail"`
}

// Describe lists every rule in evaluation order, including zero-percent brackets.
func (rs RuleSet) Describe() []RuleDescription {
	out := make([]RuleDescription, 0, len(rs.LeadTime)+2)
	for _, b := range rs.LeadTime {
		var cond string
		switch {
		case b.MaxDays == Unbounded:
			cond = fmt.Sprintf("%d o más días", b.MinDays)
		case b.MinDays == b.MaxDays:
			cond = fmt.Sprintf("%d días", b.MinDays)
		default:
			cond = fmt.Sprintf("%d a %d días", b.MinDays, b.MaxDays)
		}
		out = append(out, RuleDescription{
			Name:       b.Name,
			Category:   CategoryLeadTime,
			Percentage: b.Percentage.InexactFloat64(),
			Condition:  cond,
			Detail:     b.Detail,
		})
	}
	days := make([]string, 0, len(rs.DemandDays))
	for _, d := range rs.DemandDays {
		days = append(days, weekdayNames[d])
	}
	out = append(out,
		RuleDescription{
			Name:       rs.DemandDay.Name,
			Category:   CategoryDemandDay,
			Percentage: rs.DemandDay.Percentage.InexactFloat64(),
			Condition:  strings.Join(days, ", "),
			Detail:     rs.DemandDay.Detail,
		},
		RuleDescription{
			Name:       rs.PremiumHour.Name,
			Category:   CategoryPremiumHour,
			Percentage: rs.PremiumHour.Percentage.InexactFloat64(),
			Condition:  fmt.Sprintf("antes de las %02d:00", rs.PremiumBeforeHour),
			Detail:     rs.PremiumHour.Detail,
		},
	)
	return out
}
