// README: Quote request/result value objects for the fare adjustment engine.
package pricing

import "github.com/shopspring/decimal"

type RuleCategory string

const (
	CategoryLeadTime    RuleCategory = "lead_time"
	CategoryDemandDay   RuleCategory = "demand_day"
	CategoryPremiumHour RuleCategory = "premium_hour"
)

// QuoteRequest is one fare quote input. TravelDate is a calendar date with an
// optional time part; TravelTime (HH:MM) overrides that time part when valid.
type QuoteRequest struct {
	BasePrice        int64
	DestinationLabel string
	TravelDate       string
	TravelTime       string
}

type AppliedAdjustment struct {
	Name             string
	Category         RuleCategory
	Percentage       decimal.Decimal
	Detail           string
	DestinationLabel string
}

type QuoteResult struct {
	BasePrice               int64
	TotalAdjustmentFraction decimal.Decimal
	AdjustmentAmount        int64
	FinalPrice              int64
	LeadDays                int
	AppliedAdjustments      []AppliedAdjustment
}

// QuoteView is the JSON shape handed to the UI layer and to logs.
type QuoteView struct {
	BasePrice               int64            `json:"basePrice"`
	TotalAdjustmentFraction float64          `json:"totalAdjustmentFraction"`
	AdjustmentAmount        int64            `json:"adjustmentAmount"`
	FinalPrice              int64            `json:"finalPrice"`
	LeadDays                int              `json:"leadDays"`
	AppliedAdjustments      []AdjustmentView `json:"appliedAdjustments"`
}

type AdjustmentView struct {
	Name             string       `json:"name"`
	Category         RuleCategory `json:"category"`
	Percentage       float64      `json:"percentage"`
	Detail           string       `json:"detail"`
	DestinationLabel string       `json:"destinationLabel"`
}

func (r QuoteResult) View() QuoteView {
	v := QuoteView{
		BasePrice:               r.BasePrice,
		TotalAdjustmentFraction: r.TotalAdjustmentFraction.InexactFloat64(),
		AdjustmentAmount:        r.AdjustmentAmount,
		FinalPrice:              r.FinalPrice,
		LeadDays:                r.LeadDays,
		AppliedAdjustments:      make([]AdjustmentView, 0, len(r.AppliedAdjustments)),
	}
	for _, a := range r.AppliedAdjustments {
		v.AppliedAdjustments = append(v.AppliedAdjustments, AdjustmentView{
			Name:             a.Name,
			Category:         a.Category,
			Percentage:       a.Percentage.InexactFloat64(),
			Detail:           a.Detail,
			DestinationLabel: a.DestinationLabel,
		})
	}
	return v
}
