// README: Promotion service resolves promo codes and builds payment options.
package promotion

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"shuttle/internal/logging"
)

type Repository interface {
	GetByCode(ctx context.Context, code string) (Promotion, error)
	Upsert(ctx context.Context, p Promotion) error
}

type Service struct {
	repo            Repository
	depositFraction decimal.Decimal
	logger          *zap.Logger
}

func NewService(repo Repository, depositFraction decimal.Decimal, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, depositFraction: depositFraction, logger: logger}
}

// Resolve returns the promotion for code if it is active at time at.
func (s *Service) Resolve(ctx context.Context, code string, at time.Time) (*Promotion, error) {
	code = NormalizeCode(code)
	if code == "" {
		return nil, ErrBadRequest
	}
	p, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if !p.ValidAt(at) {
		return nil, ErrExpired
	}
	return &p, nil
}

// Options builds payment options for total, applying code when non-empty.
func (s *Service) Options(ctx context.Context, total int64, code string, at time.Time) ([]PaymentOption, error) {
	if total < 0 {
		return nil, ErrBadRequest
	}
	var promo *Promotion
	if NormalizeCode(code) != "" {
		p, err := s.Resolve(ctx, code, at)
		if err != nil {
			return nil, err
		}
		promo = p
	}
	return BuildPaymentOptions(total, promo, s.depositFraction), nil
}

type UpsertCommand struct {
	Code        string
	Description string
	Percentage  decimal.Decimal
	ValidFrom   time.Time
	ValidUntil  *time.Time
	Active      bool
}

func (s *Service) Upsert(ctx context.Context, cmd UpsertCommand) (Promotion, error) {
	code := NormalizeCode(cmd.Code)
	if code == "" || cmd.Percentage.LessThanOrEqual(decimal.Zero) || cmd.Percentage.GreaterThan(one) {
		return Promotion{}, ErrBadRequest
	}
	if cmd.ValidUntil != nil && cmd.ValidUntil.Before(cmd.ValidFrom) {
		return Promotion{}, ErrBadRequest
	}
	p := Promotion{
		Code:        code,
		Description: cmd.Description,
		Percentage:  cmd.Percentage,
		ValidFrom:   cmd.ValidFrom,
		ValidUntil:  cmd.ValidUntil,
		Active:      cmd.Active,
	}
	if err := s.repo.Upsert(ctx, p); err != nil {
		return Promotion{}, fmt.Errorf("upsert promotion %q: %w", code, err)
	}
	logging.FromContext(ctx, s.logger).Info("promotion updated",
		zap.String("code", code),
		zap.String("percentage", p.Percentage.String()),
		zap.Bool("active", p.Active))
	return p, nil
}
