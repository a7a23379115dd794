// README: Pricing service; looks up base fares and runs the engine with logging and metrics.
package pricing

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"shuttle/internal/logging"
	"shuttle/internal/metrics"
)

// BaseFareLookup resolves a destination to its display label and base price.
type BaseFareLookup interface {
	BaseFare(ctx context.Context, destination string) (label string, price int64, err error)
}

var ErrNoBaseFareSource = errors.New("no base fare source configured")

type Service struct {
	engine *Engine
	fares  BaseFareLookup
	logger *zap.Logger
}

func NewService(engine *Engine, fares BaseFareLookup, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{engine: engine, fares: fares, logger: logger}
}

func (s *Service) Rules() RuleSet {
	return s.engine.Rules()
}

func (s *Service) Quote(ctx context.Context, req QuoteRequest) (QuoteResult, error) {
	log := logging.FromContext(ctx, s.logger)
	res, err := s.engine.Compute(req)
	if err != nil {
		outcome := "invalid_schedule"
		if errors.Is(err, ErrPriceOutOfRange) {
			outcome = "out_of_range"
		}
		metrics.FareQuotesTotal.WithLabelValues(outcome).Inc()
		log.Debug("fare quote rejected",
			zap.String("destination", req.DestinationLabel),
			zap.String("travel_date", req.TravelDate),
			zap.String("travel_time", req.TravelTime),
			zap.Error(err))
		return QuoteResult{}, err
	}

	metrics.FareQuotesTotal.WithLabelValues("ok").Inc()
	metrics.FareQuoteFinalPrice.Observe(float64(res.FinalPrice))
	rules := make([]string, 0, len(res.AppliedAdjustments))
	for _, a := range res.AppliedAdjustments {
		metrics.FareAdjustmentsApplied.WithLabelValues(string(a.Category)).Inc()
		rules = append(rules, a.Name)
	}
	log.Info("fare quoted",
		zap.String("destination", req.DestinationLabel),
		zap.Int64("base_price", res.BasePrice),
		zap.Int64("final_price", res.FinalPrice),
		zap.String("total_adjustment", res.TotalAdjustmentFraction.String()),
		zap.Int("lead_days", res.LeadDays),
		zap.Strings("rules", rules))
	return res, nil
}

// QuoteDestination quotes using the catalogue base fare for destination.
func (s *Service) QuoteDestination(ctx context.Context, destination, travelDate, travelTime string) (QuoteResult, error) {
	if s.fares == nil {
		return QuoteResult{}, ErrNoBaseFareSource
	}
	label, price, err := s.fares.BaseFare(ctx, destination)
	if err != nil {
		return QuoteResult{}, fmt.Errorf("base fare for %q: %w", destination, err)
	}
	return s.Quote(ctx, QuoteRequest{
		BasePrice:        price,
		DestinationLabel: label,
		TravelDate:       travelDate,
		TravelTime:       travelTime,
	})
}
