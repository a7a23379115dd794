// README: Payment option builder (full payment with promo discount, or deposit).
package promotion

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DefaultDepositFraction is the share of the total charged up front for a deposit.
var DefaultDepositFraction = decimal.RequireFromString("0.40")

// BuildPaymentOptions returns the full-payment option followed by the deposit
// option. The promo discount only applies to full payment.
func BuildPaymentOptions(total int64, promo *Promotion, depositFraction decimal.Decimal) []PaymentOption {
	if total < 0 {
		total = 0
	}
	if depositFraction.LessThanOrEqual(decimal.Zero) || depositFraction.GreaterThan(one) {
		depositFraction = DefaultDepositFraction
	}

	full := PaymentOption{
		Kind:          OptionFull,
		AmountNow:     total,
		OriginalTotal: total,
		Description:   "Pago total",
	}
	if promo != nil {
		discount := Discount(total, promo.Percentage)
		full.AmountNow = total - discount
		full.Discount = discount
		full.PromoCode = promo.Code
		full.Description = fmt.Sprintf("Pago total con %s%% de descuento", promo.Percentage.Mul(hundred).String())
	}

	now := share(total, depositFraction)
	deposit := PaymentOption{
		Kind:          OptionDeposit,
		AmountNow:     now,
		Remaining:     total - now,
		OriginalTotal: total,
		Description:   fmt.Sprintf("Abono del %s%%, saldo el día del viaje", depositFraction.Mul(hundred).String()),
	}
	return []PaymentOption{full, deposit}
}

// Discount is round(total × percentage), bounded to [0, total].
func Discount(total int64, percentage decimal.Decimal) int64 {
	return share(total, percentage)
}

// share is round(total × fraction) clamped to [0, total] before IntPart, so an
// out-of-range fraction can never wrap the int64 result.
func share(total int64, fraction decimal.Decimal) int64 {
	if total <= 0 {
		return 0
	}
	t := decimal.NewFromInt(total)
	d := t.Mul(fraction).Round(0)
	switch {
	case d.IsNegative():
		return 0
	case d.GreaterThan(t):
		return total
	}
	return d.IntPart()
}

func FindOption(options []PaymentOption, kind OptionKind) (PaymentOption, bool) {
	for _, o := range options {
		if o.Kind == kind {
			return o, true
		}
	}
	return PaymentOption{}, false
}

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)
