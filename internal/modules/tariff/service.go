// README: Tariff service; catalogue reads go through the Redis cache, writes invalidate it.
package tariff

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"shuttle/internal/logging"
	"shuttle/internal/metrics"
)

// Repository is the persistent side of the catalogue; *Store satisfies it.
type Repository interface {
	Get(ctx context.Context, destination string) (Tariff, error)
	List(ctx context.Context) ([]Tariff, error)
	Upsert(ctx context.Context, t Tariff) error
	Deactivate(ctx context.Context, destination string) error
}

type Service struct {
	repo   Repository
	cache  *Cache
	logger *zap.Logger
	now    func() time.Time
}

func NewService(repo Repository, cache *Cache, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, cache: cache, logger: logger, now: time.Now}
}

type UpsertCommand struct {
	Destination string
	Label       string
	BasePrice   int64
	Currency    string
}

func (s *Service) Get(ctx context.Context, destination string) (Tariff, error) {
	key := Key(destination)
	if key == "" {
		return Tariff{}, ErrBadRequest
	}
	log := logging.FromContext(ctx, s.logger)

	if s.cache != nil {
		t, ok, err := s.cache.Get(ctx, key)
		switch {
		case err != nil:
			metrics.TariffCacheLookups.WithLabelValues("error").Inc()
			log.Warn("tariff cache read failed", zap.String("destination", key), zap.Error(err))
		case ok:
			metrics.TariffCacheLookups.WithLabelValues("hit").Inc()
			return t, nil
		default:
			metrics.TariffCacheLookups.WithLabelValues("miss").Inc()
		}
	}

	t, err := s.repo.Get(ctx, key)
	if err != nil {
		return Tariff{}, err
	}
	if !t.Active {
		return Tariff{}, ErrNotFound
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, t); err != nil {
			log.Warn("tariff cache write failed", zap.String("destination", key), zap.Error(err))
		}
	}
	return t, nil
}

// BaseFare adapts the catalogue to pricing.BaseFareLookup.
func (s *Service) BaseFare(ctx context.Context, destination string) (string, int64, error) {
	t, err := s.Get(ctx, destination)
	if err != nil {
		return "", 0, err
	}
	return t.Label, t.BasePrice, nil
}

func (s *Service) List(ctx context.Context) ([]Tariff, error) {
	return s.repo.List(ctx)
}

func (s *Service) Upsert(ctx context.Context, cmd UpsertCommand) (Tariff, error) {
	key := Key(cmd.Destination)
	label := strings.TrimSpace(cmd.Label)
	if key == "" || label == "" || cmd.BasePrice < 0 {
		return Tariff{}, ErrBadRequest
	}
	currency := strings.ToUpper(strings.TrimSpace(cmd.Currency))
	if currency == "" {
		currency = DefaultCurrency
	}
	t := Tariff{
		Destination: key,
		Label:       label,
		BasePrice:   cmd.BasePrice,
		Currency:    currency,
		Active:      true,
		UpdatedAt:   s.now().UTC(),
	}
	if err := s.repo.Upsert(ctx, t); err != nil {
		return Tariff{}, fmt.Errorf("upsert tariff %q: %w", key, err)
	}
	s.invalidate(ctx, key)
	logging.FromContext(ctx, s.logger).Info("tariff updated",
		zap.String("destination", key),
		zap.Int64("base_price", t.BasePrice))
	return t, nil
}

func (s *Service) Deactivate(ctx context.Context, destination string) error {
	key := Key(destination)
	if key == "" {
		return ErrBadRequest
	}
	if err := s.repo.Deactivate(ctx, key); err != nil {
		return err
	}
	s.invalidate(ctx, key)
	return nil
}

func (s *Service) invalidate(ctx context.Context, key string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, key); err != nil {
		logging.FromContext(ctx, s.logger).Warn("tariff cache invalidate failed", zap.String("destination", key), zap.Error(err))
	}
}
