// README: Reservation aggregate and status definitions.
package reservation

import (
	"time"

	"github.com/shopspring/decimal"

	"shuttle/internal/modules/pricing"
	"shuttle/internal/modules/promotion"
	"shuttle/internal/types"
)

type Status string

const (
	StatusNone      Status = "none"
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// QuoteSnapshot freezes the fare shown to the passenger at booking time.
type QuoteSnapshot struct {
	BasePrice          int64
	FinalPrice         int64
	AdjustmentFraction decimal.Decimal
	LeadDays           int
	Adjustments        []pricing.AdjustmentView
}

type Reservation struct {
	ID            types.ID
	PassengerName string
	Email         string
	Phone         string
	Origin        string
	Destination   string
	TravelDate    string
	TravelTime    string
	Passengers    int
	Status        Status
	StatusVersion int
	Quote         QuoteSnapshot
	PromoCode     string
	PaymentOption promotion.OptionKind
	AmountDue     types.Money
	CreatedAt     time.Time
	ConfirmedAt   *time.Time
	CompletedAt   *time.Time
	CancelledAt   *time.Time
	CancelReason  *string
}

type Event struct {
	ID            int64
	ReservationID types.ID
	FromStatus    Status
	ToStatus      Status
	ActorType     string
	ActorID       *types.ID
	CreatedAt     time.Time
}

// AllowedTransitions represents the reservation lifecycle as code.
var AllowedTransitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
}

func CanTransition(from, to Status) bool {
	next, ok := AllowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}
