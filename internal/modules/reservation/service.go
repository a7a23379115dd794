// README: Reservation service; quotes the fare, applies payment options and drives status transitions.
package reservation

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"shuttle/internal/logging"
	"shuttle/internal/metrics"
	"shuttle/internal/modules/pricing"
	"shuttle/internal/modules/promotion"
	"shuttle/internal/modules/tariff"
	"shuttle/internal/types"
)

// Repository is the persistence contract; *Store satisfies it.
type Repository interface {
	Create(ctx context.Context, r *Reservation) error
	Get(ctx context.Context, id types.ID) (*Reservation, error)
	ListByEmail(ctx context.Context, email string) ([]*Reservation, error)
	ListPendingBefore(ctx context.Context, cutoff time.Time, limit int) ([]*Reservation, error)
	UpdateStatus(ctx context.Context, id types.ID, from, to Status, version int, reason *string) (bool, error)
	AppendEvent(ctx context.Context, e *Event) error
}

type Quoter interface {
	QuoteDestination(ctx context.Context, destination, travelDate, travelTime string) (pricing.QuoteResult, error)
}

type PaymentOptions interface {
	Options(ctx context.Context, total int64, code string, at time.Time) ([]promotion.PaymentOption, error)
}

type Service struct {
	repo     Repository
	pricing  Quoter
	payments PaymentOptions
	logger   *zap.Logger
	now      func() time.Time
}

func NewService(repo Repository, pricing Quoter, payments PaymentOptions, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, pricing: pricing, payments: payments, logger: logger, now: time.Now}
}

var (
	ErrInvalidState       = errors.New("invalid state transition")
	ErrNotFound           = errors.New("reservation not found")
	ErrConflict           = errors.New("reservation state conflict")
	ErrBadRequest         = errors.New("bad request")
	ErrUnknownDestination = errors.New("unknown destination")
	ErrInvalidPromotion   = errors.New("invalid promotion code")
)

const (
	maxPassengers = 15
	expiryBatch   = 100

	ReasonPaymentTimeout = "payment_timeout"
)

type CreateCommand struct {
	PassengerName string
	Email         string
	Phone         string
	Origin        string
	Destination   string
	TravelDate    string
	TravelTime    string
	Passengers    int
	PromoCode     string
	PaymentOption promotion.OptionKind
}

type ConfirmCommand struct {
	ReservationID types.ID
	ActorID       types.ID
}

type CompleteCommand struct {
	ReservationID types.ID
	ActorID       types.ID
}

type CancelCommand struct {
	ReservationID types.ID
	ActorType     string
	ActorID       *types.ID
	Reason        string
}

func (cmd CreateCommand) validate() error {
	switch {
	case strings.TrimSpace(cmd.PassengerName) == "":
		return fmt.Errorf("%w: passenger name is required", ErrBadRequest)
	case strings.TrimSpace(cmd.Destination) == "":
		return fmt.Errorf("%w: destination is required", ErrBadRequest)
	case strings.TrimSpace(cmd.TravelDate) == "":
		return fmt.Errorf("%w: travel date is required", ErrBadRequest)
	case cmd.Passengers < 1 || cmd.Passengers > maxPassengers:
		return fmt.Errorf("%w: passengers must be between 1 and %d", ErrBadRequest, maxPassengers)
	}
	if _, err := mail.ParseAddress(cmd.Email); err != nil {
		return fmt.Errorf("%w: invalid email", ErrBadRequest)
	}
	switch cmd.PaymentOption {
	case "", promotion.OptionFull, promotion.OptionDeposit:
	default:
		return fmt.Errorf("%w: unknown payment option %q", ErrBadRequest, cmd.PaymentOption)
	}
	return nil
}

func (s *Service) Create(ctx context.Context, cmd CreateCommand) (*Reservation, error) {
	if err := cmd.validate(); err != nil {
		return nil, err
	}
	log := logging.FromContext(ctx, s.logger)

	quote, err := s.pricing.QuoteDestination(ctx, cmd.Destination, cmd.TravelDate, cmd.TravelTime)
	switch {
	case errors.Is(err, pricing.ErrInvalidSchedule), errors.Is(err, pricing.ErrPriceOutOfRange):
		return nil, fmt.Errorf("%w: %v", ErrBadRequest, err)
	case errors.Is(err, tariff.ErrNotFound):
		return nil, ErrUnknownDestination
	case err != nil:
		return nil, err
	}

	now := s.now()
	options, err := s.payments.Options(ctx, quote.FinalPrice, cmd.PromoCode, now)
	switch {
	case errors.Is(err, promotion.ErrNotFound), errors.Is(err, promotion.ErrExpired):
		return nil, ErrInvalidPromotion
	case err != nil:
		return nil, err
	}

	kind := cmd.PaymentOption
	if kind == "" {
		kind = promotion.OptionFull
	}
	option, ok := promotion.FindOption(options, kind)
	if !ok {
		return nil, fmt.Errorf("%w: payment option %q unavailable", ErrBadRequest, kind)
	}

	view := quote.View()
	r := &Reservation{
		ID:            types.ID(uuid.NewString()),
		PassengerName: strings.TrimSpace(cmd.PassengerName),
		Email:         strings.ToLower(strings.TrimSpace(cmd.Email)),
		Phone:         strings.TrimSpace(cmd.Phone),
		Origin:        strings.TrimSpace(cmd.Origin),
		Destination:   tariff.Key(cmd.Destination),
		TravelDate:    strings.TrimSpace(cmd.TravelDate),
		TravelTime:    strings.TrimSpace(cmd.TravelTime),
		Passengers:    cmd.Passengers,
		Status:        StatusPending,
		Quote: QuoteSnapshot{
			BasePrice:          quote.BasePrice,
			FinalPrice:         quote.FinalPrice,
			AdjustmentFraction: quote.TotalAdjustmentFraction,
			LeadDays:           quote.LeadDays,
			Adjustments:        view.AppliedAdjustments,
		},
		PromoCode:     option.PromoCode,
		PaymentOption: option.Kind,
		AmountDue:     types.CLP(option.AmountNow),
		CreatedAt:     now,
	}
	if err := s.repo.Create(ctx, r); err != nil {
		return nil, err
	}
	s.appendEvent(ctx, &Event{
		ReservationID: r.ID,
		FromStatus:    StatusNone,
		ToStatus:      StatusPending,
		ActorType:     "passenger",
		CreatedAt:     now,
	})

	metrics.ReservationsCreated.WithLabelValues(string(option.Kind)).Inc()
	log.Info("reservation created",
		zap.String("reservation_id", string(r.ID)),
		zap.String("destination", r.Destination),
		zap.Int64("final_price", quote.FinalPrice),
		zap.Int64("amount_due", r.AmountDue.Amount),
		zap.String("payment_option", string(option.Kind)))
	return r, nil
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Reservation, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) ListByEmail(ctx context.Context, email string) ([]*Reservation, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, ErrBadRequest
	}
	return s.repo.ListByEmail(ctx, email)
}

func (s *Service) Confirm(ctx context.Context, cmd ConfirmCommand) error {
	actor := cmd.ActorID
	return s.transition(ctx, cmd.ReservationID, StatusConfirmed, "admin", &actor, nil)
}

func (s *Service) Complete(ctx context.Context, cmd CompleteCommand) error {
	actor := cmd.ActorID
	return s.transition(ctx, cmd.ReservationID, StatusCompleted, "admin", &actor, nil)
}

func (s *Service) Cancel(ctx context.Context, cmd CancelCommand) error {
	var reason *string
	if r := strings.TrimSpace(cmd.Reason); r != "" {
		reason = &r
	}
	return s.transition(ctx, cmd.ReservationID, StatusCancelled, cmd.ActorType, cmd.ActorID, reason)
}

func (s *Service) transition(ctx context.Context, id types.ID, to Status, actorType string, actorID *types.ID, reason *string) error {
	r, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if !CanTransition(r.Status, to) {
		return ErrInvalidState
	}
	ok, err := s.repo.UpdateStatus(ctx, r.ID, r.Status, to, r.StatusVersion, reason)
	if err != nil {
		return err
	}
	if !ok {
		return ErrConflict
	}
	s.appendEvent(ctx, &Event{
		ReservationID: r.ID,
		FromStatus:    r.Status,
		ToStatus:      to,
		ActorType:     actorType,
		ActorID:       actorID,
		CreatedAt:     s.now(),
	})
	logging.FromContext(ctx, s.logger).Info("reservation status changed",
		zap.String("reservation_id", string(r.ID)),
		zap.String("from", string(r.Status)),
		zap.String("to", string(to)))
	return nil
}

// ExpirePending cancels reservations still pending after ttl. Reservations
// that move concurrently are skipped.
func (s *Service) ExpirePending(ctx context.Context, ttl time.Duration) (int, error) {
	stale, err := s.repo.ListPendingBefore(ctx, s.now().Add(-ttl), expiryBatch)
	if err != nil {
		return 0, err
	}
	reason := ReasonPaymentTimeout
	expired := 0
	for _, r := range stale {
		err := s.transition(ctx, r.ID, StatusCancelled, "system", nil, &reason)
		switch {
		case err == nil:
			expired++
		case errors.Is(err, ErrConflict), errors.Is(err, ErrInvalidState):
		default:
			return expired, err
		}
	}
	return expired, nil
}

// RunExpiryMonitor calls ExpirePending every interval until ctx is done.
func (s *Service) RunExpiryMonitor(ctx context.Context, interval, ttl time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.ExpirePending(ctx, ttl)
			if err != nil {
				s.logger.Warn("expire pending reservations failed", zap.Error(err))
				continue
			}
			if n > 0 {
				metrics.ReservationsExpired.Add(float64(n))
				s.logger.Info("expired pending reservations", zap.Int("count", n))
			}
		}
	}
}

// appendEvent records the audit trail; a failure here does not undo the transition.
func (s *Service) appendEvent(ctx context.Context, e *Event) {
	if err := s.repo.AppendEvent(ctx, e); err != nil {
		logging.FromContext(ctx, s.logger).Warn("append reservation event failed",
			zap.String("reservation_id", string(e.ReservationID)),
			zap.Error(err))
	}
}
