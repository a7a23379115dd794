// README: Fare adjustment engine tests (brackets, rule combinations, schedule parsing).
package pricing

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Wednesday 2025-06-04 06:30 in Santiago.
var santiago = mustLocation("America/Santiago")

func mustLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.FixedZone(name, -4*3600)
	}
	return loc
}

func newTestEngine(t *testing.T, now time.Time) *Engine {
	t.Helper()
	e, err := NewEngine(DefaultRuleSet(), FixedClock{At: now})
	require.NoError(t, err)
	return e
}

func wednesday() time.Time {
	return time.Date(2025, 6, 4, 6, 30, 0, 0, santiago)
}

func TestCompute_Scenarios(t *testing.T) {
	now := wednesday()

	tests := []struct {
		name      string
		req       QuoteRequest
		wantFinal int64
		wantDays  int
		wantCats  []RuleCategory
	}{
		{
			name:      "same day early morning midweek",
			req:       QuoteRequest{BasePrice: 60000, DestinationLabel: "Pucón", TravelDate: "2025-06-04", TravelTime: "08:00"},
			wantFinal: 84000,
			wantDays:  0,
			wantCats:  []RuleCategory{CategoryLeadTime, CategoryPremiumHour},
		},
		{
			name: "next saturday afternoon",
			req:  QuoteRequest{BasePrice: 60000, DestinationLabel: "Pucón", TravelDate: "2025-06-07", TravelTime: "14:00"},
			// 3 days ahead: +10% short notice, +10% weekend.
			wantFinal: 72000,
			wantDays:  3,
			wantCats:  []RuleCategory{CategoryLeadTime, CategoryDemandDay},
		},
		{
			name: "35 days ahead morning",
			// 2025-07-09 is a Wednesday.
			req:       QuoteRequest{BasePrice: 60000, DestinationLabel: "Villarrica", TravelDate: "2025-07-09", TravelTime: "10:00"},
			wantFinal: 51000,
			wantDays:  35,
			wantCats:  []RuleCategory{CategoryLeadTime},
		},
		{
			name:      "baseline bracket adds no row",
			req:       QuoteRequest{BasePrice: 60000, DestinationLabel: "Temuco", TravelDate: "2025-06-11", TravelTime: "12:00"},
			wantFinal: 60000,
			wantDays:  7,
			wantCats:  []RuleCategory{},
		},
		{
			name:      "zero base price",
			req:       QuoteRequest{BasePrice: 0, DestinationLabel: "Pucón", TravelDate: "2025-06-04", TravelTime: "07:00"},
			wantFinal: 0,
			wantDays:  0,
			wantCats:  []RuleCategory{CategoryLeadTime, CategoryPremiumHour},
		},
	}

	e := newTestEngine(t, now)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Compute(tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantFinal, got.FinalPrice)
			assert.Equal(t, tt.wantFinal-tt.req.BasePrice, got.AdjustmentAmount)
			assert.Equal(t, tt.wantDays, got.LeadDays)
			assert.Equal(t, tt.req.BasePrice, got.BasePrice)

			cats := make([]RuleCategory, 0, len(got.AppliedAdjustments))
			for _, a := range got.AppliedAdjustments {
				cats = append(cats, a.Category)
				assert.Equal(t, tt.req.DestinationLabel, a.DestinationLabel)
				assert.NotEmpty(t, a.Detail)
			}
			assert.Equal(t, tt.wantCats, cats)
		})
	}
}

func TestCompute_SaturdaySameDayAllRules(t *testing.T) {
	saturday := time.Date(2025, 6, 7, 5, 0, 0, 0, santiago)
	e := newTestEngine(t, saturday)

	got, err := e.Compute(QuoteRequest{BasePrice: 60000, DestinationLabel: "Pucón", TravelDate: "2025-06-07", TravelTime: "07:00"})
	require.NoError(t, err)

	assert.Equal(t, int64(90000), got.FinalPrice)
	assert.Equal(t, int64(30000), got.AdjustmentAmount)
	assert.True(t, got.TotalAdjustmentFraction.Equal(decimal.RequireFromString("0.50")), got.TotalAdjustmentFraction.String())
	require.Len(t, got.AppliedAdjustments, 3)
	assert.Equal(t, CategoryLeadTime, got.AppliedAdjustments[0].Category)
	assert.Equal(t, "Reserva para el mismo día", got.AppliedAdjustments[0].Name)
	assert.Equal(t, CategoryDemandDay, got.AppliedAdjustments[1].Category)
	assert.Equal(t, CategoryPremiumHour, got.AppliedAdjustments[2].Category)
}

func TestCompute_InvalidSchedule(t *testing.T) {
	e := newTestEngine(t, wednesday())

	for _, date := range []string{"2025-13-45", "", "   ", "mañana", "2025-02-30"} {
		t.Run(date, func(t *testing.T) {
			got, err := e.Compute(QuoteRequest{BasePrice: 60000, DestinationLabel: "Pucón", TravelDate: date, TravelTime: "10:00"})
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidSchedule))
			var ise *InvalidScheduleError
			require.True(t, errors.As(err, &ise))
			assert.Equal(t, date, ise.TravelDate)
			assert.Equal(t, QuoteResult{}, got)
		})
	}
}

func TestCompute_TravelTimePrecedence(t *testing.T) {
	e := newTestEngine(t, wednesday())

	// Embedded 07:30 would trigger the premium hour; the explicit 10:00 wins.
	got, err := e.Compute(QuoteRequest{BasePrice: 50000, TravelDate: "2025-06-11T07:30", TravelTime: "10:00"})
	require.NoError(t, err)
	assert.Empty(t, got.AppliedAdjustments)
	assert.Equal(t, int64(50000), got.FinalPrice)

	// And the other way round.
	got, err = e.Compute(QuoteRequest{BasePrice: 50000, TravelDate: "2025-06-11T12:00:00", TravelTime: "06:15"})
	require.NoError(t, err)
	require.Len(t, got.AppliedAdjustments, 1)
	assert.Equal(t, CategoryPremiumHour, got.AppliedAdjustments[0].Category)
}

func TestCompute_MalformedTravelTimeIsIgnored(t *testing.T) {
	e := newTestEngine(t, wednesday())

	for _, tm := range []string{"24:00", "7:00", "07:60", "0700", "noon"} {
		t.Run(tm, func(t *testing.T) {
			got, err := e.Compute(QuoteRequest{BasePrice: 50000, TravelDate: "2025-06-11 08:45", TravelTime: tm})
			require.NoError(t, err)
			require.Len(t, got.AppliedAdjustments, 1, "embedded 08:45 should drive the premium rule")
			assert.Equal(t, CategoryPremiumHour, got.AppliedAdjustments[0].Category)
		})
	}
}

func TestCompute_DateOnlyMeansMidnight(t *testing.T) {
	e := newTestEngine(t, wednesday())
	got, err := e.Compute(QuoteRequest{BasePrice: 10000, TravelDate: "2025-06-11"})
	require.NoError(t, err)
	require.Len(t, got.AppliedAdjustments, 1)
	assert.Equal(t, CategoryPremiumHour, got.AppliedAdjustments[0].Category)
}

func TestCompute_RFC3339KeepsWallClock(t *testing.T) {
	e := newTestEngine(t, wednesday())
	// 10:00 UTC is 06:00 in Santiago, but no conversion happens: 10:00 is used.
	got, err := e.Compute(QuoteRequest{BasePrice: 10000, TravelDate: "2025-06-11T10:00:00Z"})
	require.NoError(t, err)
	assert.Empty(t, got.AppliedAdjustments)
}

func TestCompute_PastDateClampsLeadDays(t *testing.T) {
	e := newTestEngine(t, wednesday())
	got, err := e.Compute(QuoteRequest{BasePrice: 40000, TravelDate: "2025-05-28", TravelTime: "10:00"})
	require.NoError(t, err)
	assert.Equal(t, 0, got.LeadDays)
	assert.Equal(t, int64(50000), got.FinalPrice)
}

func TestCompute_FarFutureLeadDays(t *testing.T) {
	e := newTestEngine(t, wednesday())
	got, err := e.Compute(QuoteRequest{BasePrice: 60000, TravelDate: "9999-12-31", TravelTime: "12:00"})
	require.NoError(t, err)
	assert.Equal(t, 2912653, got.LeadDays)
	// Friday: -15% lead time, +10% weekend.
	assert.Equal(t, int64(57000), got.FinalPrice)
}

func TestCompute_PriceOutOfRange(t *testing.T) {
	e := newTestEngine(t, wednesday())

	_, err := e.Compute(QuoteRequest{BasePrice: math.MaxInt64 / 10 * 9, TravelDate: "2025-06-04", TravelTime: "07:00"})
	assert.ErrorIs(t, err, ErrPriceOutOfRange)
	assert.NotErrorIs(t, err, ErrInvalidSchedule)

	_, err = e.ComputeFare(math.MaxInt64, "Pucón", time.Date(2025, 6, 5, 12, 0, 0, 0, time.UTC), "")
	assert.ErrorIs(t, err, ErrPriceOutOfRange)

	// A discount keeps a large base in range.
	got, err := e.Compute(QuoteRequest{BasePrice: math.MaxInt64 / 2, TravelDate: "2025-07-09", TravelTime: "12:00"})
	require.NoError(t, err)
	assert.Equal(t, int64(3919933115663279718), got.FinalPrice)
	assert.Equal(t, got.FinalPrice-got.BasePrice, got.AdjustmentAmount)
}

func TestCompute_LeadDayBoundaries(t *testing.T) {
	now := wednesday()
	e := newTestEngine(t, now)

	tests := []struct {
		days int
		want string
	}{
		{0, "0.25"}, {1, "0.1"}, {3, "0.1"}, {4, "0"}, {13, "0"},
		{14, "-0.05"}, {20, "-0.05"}, {21, "-0.1"}, {29, "-0.1"}, {30, "-0.15"}, {400, "-0.15"},
	}
	for _, tt := range tests {
		travel := now.AddDate(0, 0, tt.days)
		got, err := e.ComputeFare(100000, "Pucón", time.Date(travel.Year(), travel.Month(), travel.Day(), 12, 0, 0, 0, time.UTC), "")
		require.NoError(t, err)
		assert.Equal(t, tt.days, got.LeadDays)

		lead := decimal.Zero
		for _, a := range got.AppliedAdjustments {
			if a.Category == CategoryLeadTime {
				lead = a.Percentage
			}
		}
		assert.True(t, lead.Equal(decimal.RequireFromString(tt.want)), "days=%d lead=%s want=%s", tt.days, lead, tt.want)
	}
}

func TestComputeFare_ZeroDate(t *testing.T) {
	e := newTestEngine(t, wednesday())
	_, err := e.ComputeFare(60000, "Pucón", time.Time{}, "08:00")
	assert.ErrorIs(t, err, ErrInvalidSchedule)
}

func TestBracketsExhaustiveAndExclusive(t *testing.T) {
	rules := DefaultRuleSet()
	for days := 0; days <= 1000; days++ {
		matches := 0
		for _, b := range rules.LeadTime {
			if b.Contains(days) {
				matches++
			}
		}
		if matches != 1 {
			t.Fatalf("days=%d matched %d brackets", days, matches)
		}
	}
}

func TestCompute_NonNegativeFinalPrice(t *testing.T) {
	now := wednesday()
	e := newTestEngine(t, now)
	for _, base := range []int64{0, 1, 7, 99, 60000, 1234567} {
		for offset := 0; offset < 45; offset++ {
			for _, tm := range []string{"05:00", "12:00"} {
				d := now.AddDate(0, 0, offset).Format("2006-01-02")
				got, err := e.Compute(QuoteRequest{BasePrice: base, TravelDate: d, TravelTime: tm})
				require.NoError(t, err)
				if got.FinalPrice < 0 {
					t.Fatalf("base=%d date=%s time=%s final=%d", base, d, tm, got.FinalPrice)
				}
			}
		}
	}
}

func TestCompute_Deterministic(t *testing.T) {
	e := newTestEngine(t, wednesday())
	req := QuoteRequest{BasePrice: 60000, DestinationLabel: "Pucón", TravelDate: "2025-06-06", TravelTime: "06:00"}
	a, err := e.Compute(req)
	require.NoError(t, err)
	b, err := e.Compute(req)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestCompute_AdditiveNotCompounded(t *testing.T) {
	// Friday two days out at 06:00: +10% short notice, +10% weekend, +15% premium.
	e := newTestEngine(t, wednesday())
	got, err := e.Compute(QuoteRequest{BasePrice: 100000, TravelDate: "2025-06-06", TravelTime: "06:00"})
	require.NoError(t, err)

	sum := decimal.Zero
	for _, a := range got.AppliedAdjustments {
		sum = sum.Add(a.Percentage)
	}
	assert.True(t, sum.Equal(got.TotalAdjustmentFraction))
	assert.True(t, sum.Equal(decimal.RequireFromString("0.35")))
	// Compounding would give 1.1 * 1.1 * 1.15 = 1.3915.
	assert.Equal(t, int64(135000), got.FinalPrice)
}

func TestCompute_RoundsToWholePesos(t *testing.T) {
	e := newTestEngine(t, wednesday())
	// 14 days ahead (Wednesday 2025-06-18) at noon: -5%. 33333 * 0.95 = 31666.35.
	got, err := e.Compute(QuoteRequest{BasePrice: 33333, TravelDate: "2025-06-18", TravelTime: "12:00"})
	require.NoError(t, err)
	assert.Equal(t, int64(31666), got.FinalPrice)
	assert.Equal(t, int64(-1667), got.AdjustmentAmount)
}

func TestNewEngine_RejectsBrokenRuleSets(t *testing.T) {
	gap := DefaultRuleSet()
	gap.LeadTime[1].MinDays = 2

	openMiddle := DefaultRuleSet()
	openMiddle.LeadTime[2].MaxDays = Unbounded

	closedEnd := DefaultRuleSet()
	closedEnd.LeadTime[len(closedEnd.LeadTime)-1].MaxDays = 90

	for name, rs := range map[string]RuleSet{"gap": gap, "open middle": openMiddle, "closed end": closedEnd, "empty": {}} {
		t.Run(name, func(t *testing.T) {
			_, err := NewEngine(rs, FixedClock{At: wednesday()})
			assert.ErrorIs(t, err, ErrInvalidRuleSet)
		})
	}
}

func TestNewEngine_CopiesRules(t *testing.T) {
	rs := DefaultRuleSet()
	e, err := NewEngine(rs, FixedClock{At: wednesday()})
	require.NoError(t, err)

	rs.LeadTime[0].Percentage = decimal.RequireFromString("5")
	rs.DemandDays[0] = time.Wednesday

	got, err := e.Compute(QuoteRequest{BasePrice: 60000, TravelDate: "2025-06-04", TravelTime: "12:00"})
	require.NoError(t, err)
	assert.Equal(t, int64(75000), got.FinalPrice)
}

func TestCompute_CustomRuleSet(t *testing.T) {
	rs := RuleSet{
		LeadTime: []LeadTimeBracket{
			{Name: "late", MinDays: 0, MaxDays: 0, Percentage: decimal.RequireFromString("0.5")},
			{Name: "early", MinDays: 1, MaxDays: Unbounded, Percentage: decimal.Zero},
		},
		PremiumBeforeHour: 0,
	}
	e, err := NewEngine(rs, FixedClock{At: wednesday()})
	require.NoError(t, err)

	got, err := e.Compute(QuoteRequest{BasePrice: 1000, TravelDate: "2025-06-04", TravelTime: "03:00"})
	require.NoError(t, err)
	assert.Equal(t, int64(1500), got.FinalPrice)
	require.Len(t, got.AppliedAdjustments, 1)
}

func TestQuoteView_JSONShape(t *testing.T) {
	e := newTestEngine(t, wednesday())
	got, err := e.Compute(QuoteRequest{BasePrice: 60000, DestinationLabel: "Pucón", TravelDate: "2025-06-04", TravelTime: "10:00"})
	require.NoError(t, err)

	v := got.View()
	assert.Equal(t, 0.25, v.TotalAdjustmentFraction)
	assert.Equal(t, int64(15000), v.AdjustmentAmount)
	assert.Equal(t, int64(75000), v.FinalPrice)
	require.Len(t, v.AppliedAdjustments, 1)
	assert.Equal(t, "Reserva para el mismo día", v.AppliedAdjustments[0].Name)
	assert.Equal(t, "Pucón", v.AppliedAdjustments[0].DestinationLabel)
}

func TestRuleSet_Describe(t *testing.T) {
	rows := DefaultRuleSet().Describe()
	require.Len(t, rows, 8)
	assert.Equal(t, "0 días", rows[0].Condition)
	assert.Equal(t, "1 a 3 días", rows[1].Condition)
	assert.Equal(t, "30 o más días", rows[5].Condition)
	assert.Equal(t, 0.0, rows[2].Percentage)
	assert.Equal(t, CategoryDemandDay, rows[6].Category)
	assert.Equal(t, "viernes, sábado, domingo", rows[6].Condition)
	assert.Equal(t, "antes de las 09:00", rows[7].Condition)
}
