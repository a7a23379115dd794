// README: Promotion codes and payment options shown before the gateway redirect.
package promotion

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Promotion struct {
	Code        string
	Description string
	// Percentage is the discount as a fraction, e.g. 0.10 for 10% off.
	Percentage decimal.Decimal
	ValidFrom  time.Time
	ValidUntil *time.Time
	Active     bool
}

func (p Promotion) ValidAt(t time.Time) bool {
	if !p.Active || t.Before(p.ValidFrom) {
		return false
	}
	return p.ValidUntil == nil || !t.After(*p.ValidUntil)
}

type OptionKind string

const (
	OptionFull    OptionKind = "full"
	OptionDeposit OptionKind = "deposit"
)

type PaymentOption struct {
	Kind OptionKind `json:"kind"`
	// AmountNow is charged at checkout; Remaining is due on the trip day.
	AmountNow     int64  `json:"amount_now"`
	Remaining     int64  `json:"remaining"`
	Discount      int64  `json:"discount"`
	PromoCode     string `json:"promo_code,omitempty"`
	Description   string `json:"description"`
	OriginalTotal int64  `json:"original_total"`
}

var (
	ErrNotFound   = errors.New("promotion not found")
	ErrExpired    = errors.New("promotion not valid at this time")
	ErrBadRequest = errors.New("bad request")
)

func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
