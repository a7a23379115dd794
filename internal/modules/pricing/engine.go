// README: Fare adjustment engine; pure rule evaluation over a resolved travel date-time.
package pricing

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidSchedule = errors.New("invalid schedule")
	// ErrPriceOutOfRange means the adjusted price does not fit in an int64 amount.
	ErrPriceOutOfRange = errors.New("price out of range")
)

// InvalidScheduleError reports a travel date/time that cannot be resolved.
// errors.Is(err, ErrInvalidSchedule) holds for every value of this type.
type InvalidScheduleError struct {
	TravelDate string
	TravelTime string
	Err        error
}

func (e *InvalidScheduleError) Error() string {
	msg := fmt.Sprintf("invalid schedule: cannot resolve date %q", e.TravelDate)
	if e.TravelTime != "" {
		msg += fmt.Sprintf(" time %q", e.TravelTime)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *InvalidScheduleError) Unwrap() error { return e.Err }

func (e *InvalidScheduleError) Is(target error) bool { return target == ErrInvalidSchedule }

// Accepted TravelDate layouts, tried in order.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

var (
	one      = decimal.NewFromInt(1)
	maxPrice = decimal.NewFromInt(math.MaxInt64)
	minPrice = decimal.NewFromInt(math.MinInt64)
)

var weekdayNames = map[time.Weekday]string{
	time.Sunday:    "domingo",
	time.Monday:    "lunes",
	time.Tuesday:   "martes",
	time.Wednesday: "miércoles",
	time.Thursday:  "jueves",
	time.Friday:    "viernes",
	time.Saturday:  "sábado",
}

// Engine evaluates a RuleSet against quote requests. It holds no mutable state
// and is safe for concurrent use.
type Engine struct {
	rules RuleSet
	clock Clock
}

func NewEngine(rules RuleSet, clock Clock) (*Engine, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &Engine{rules: rules.clone(), clock: clock}, nil
}

// Rules returns a copy of the engine's configuration.
func (e *Engine) Rules() RuleSet {
	return e.rules.clone()
}

func (e *Engine) Compute(req QuoteRequest) (QuoteResult, error) {
	now := e.clock.Now()
	at, err := resolveSchedule(req.TravelDate, req.TravelTime, now.Location())
	if err != nil {
		return QuoteResult{}, err
	}
	return e.evaluate(req.BasePrice, req.DestinationLabel, now, at)
}

// ComputeFare is the typed-date form of Compute. Only the wall-clock fields of
// travelDate are used; its location is ignored.
func (e *Engine) ComputeFare(basePrice int64, destinationLabel string, travelDate time.Time, travelTime string) (QuoteResult, error) {
	if travelDate.IsZero() {
		return QuoteResult{}, &InvalidScheduleError{TravelTime: travelTime, Err: errors.New("missing travel date")}
	}
	now := e.clock.Now()
	y, m, d := travelDate.Date()
	h, mi, _ := travelDate.Clock()
	if hh, mm, ok := parseClock(travelTime); ok {
		h, mi = hh, mm
	}
	at := time.Date(y, m, d, h, mi, 0, 0, now.Location())
	return e.evaluate(basePrice, destinationLabel, now, at)
}

func (e *Engine) evaluate(basePrice int64, label string, now, at time.Time) (QuoteResult, error) {
	days := LeadDays(now, at)
	total := decimal.Zero
	applied := make([]AppliedAdjustment, 0, 3)

	if b, ok := e.rules.bracketFor(days); ok && !b.Percentage.IsZero() {
		total = total.Add(b.Percentage)
		applied = append(applied, AppliedAdjustment{
			Name:             b.Name,
			Category:         CategoryLeadTime,
			Percentage:       b.Percentage,
			Detail:           fmt.Sprintf("%s (%d días de anticipación)", b.Detail, days),
			DestinationLabel: label,
		})
	}

	if e.rules.isDemandDay(at.Weekday()) {
		r := e.rules.DemandDay
		total = total.Add(r.Percentage)
		applied = append(applied, AppliedAdjustment{
			Name:             r.Name,
			Category:         CategoryDemandDay,
			Percentage:       r.Percentage,
			Detail:           fmt.Sprintf("%s (%s)", r.Detail, weekdayNames[at.Weekday()]),
			DestinationLabel: label,
		})
	}

	if at.Hour() < e.rules.PremiumBeforeHour {
		r := e.rules.PremiumHour
		total = total.Add(r.Percentage)
		applied = append(applied, AppliedAdjustment{
			Name:             r.Name,
			Category:         CategoryPremiumHour,
			Percentage:       r.Percentage,
			Detail:           fmt.Sprintf("%s (salida %02d:%02d)", r.Detail, at.Hour(), at.Minute()),
			DestinationLabel: label,
		})
	}

	base := decimal.NewFromInt(basePrice)
	finalDec := base.Mul(one.Add(total)).Round(0)
	if basePrice >= 0 && finalDec.IsNegative() {
		finalDec = decimal.Zero
	}
	if !fitsInt64(finalDec) || !fitsInt64(finalDec.Sub(base)) {
		return QuoteResult{}, fmt.Errorf("%w: base %d adjusted by %s", ErrPriceOutOfRange, basePrice, total.String())
	}
	final := finalDec.IntPart()

	return QuoteResult{
		BasePrice:               basePrice,
		TotalAdjustmentFraction: total,
		AdjustmentAmount:        final - basePrice,
		FinalPrice:              final,
		LeadDays:                days,
		AppliedAdjustments:      applied,
	}, nil
}

// fitsInt64 guards IntPart, which wraps silently on overflow.
func fitsInt64(d decimal.Decimal) bool {
	return !d.GreaterThan(maxPrice) && !d.LessThan(minPrice)
}

// LeadDays counts whole calendar days from today's midnight to the travel
// date's midnight, both read as wall-clock dates. Past dates yield 0.
func LeadDays(today, travel time.Time) int {
	ty, tm, td := today.Date()
	y, m, d := travel.Date()
	from := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC).Unix() / secondsPerDay
	to := time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / secondsPerDay
	days := int(to - from)
	if days < 0 {
		return 0
	}
	return days
}

const secondsPerDay = 24 * 60 * 60

func resolveSchedule(travelDate, travelTime string, loc *time.Location) (time.Time, error) {
	raw := strings.TrimSpace(travelDate)
	if raw == "" {
		return time.Time{}, &InvalidScheduleError{TravelDate: travelDate, TravelTime: travelTime, Err: errors.New("missing travel date")}
	}
	var (
		parsed  time.Time
		lastErr error
		ok      bool
	)
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, raw)
		if err == nil {
			parsed, ok = t, true
			break
		}
		lastErr = err
	}
	if !ok {
		return time.Time{}, &InvalidScheduleError{TravelDate: travelDate, TravelTime: travelTime, Err: lastErr}
	}

	y, m, d := parsed.Date()
	h, mi, _ := parsed.Clock()
	if hh, mm, ok := parseClock(travelTime); ok {
		h, mi = hh, mm
	}
	if loc == nil {
		loc = time.Local
	}
	return time.Date(y, m, d, h, mi, 0, 0, loc), nil
}

// parseClock accepts strictly HH:MM in 24-hour form.
func parseClock(s string) (int, int, bool) {
	s = strings.TrimSpace(s)
	if len(s) != 5 || s[2] != ':' {
		return 0, 0, false
	}
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, 0, false
	}
	return t.Hour(), t.Minute(), true
}
