// README: Promotion store backed by PostgreSQL.
package promotion

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) GetByCode(ctx context.Context, code string) (Promotion, error) {
	row := s.db.QueryRow(ctx, `
        SELECT code, description, percentage::text, valid_from, valid_until, active
        FROM promotions
        WHERE code = $1`, code,
	)
	var (
		p   Promotion
		pct string
	)
	err := row.Scan(&p.Code, &p.Description, &pct, &p.ValidFrom, &p.ValidUntil, &p.Active)
	if errors.Is(err, pgx.ErrNoRows) {
		return Promotion{}, ErrNotFound
	}
	if err != nil {
		return Promotion{}, err
	}
	p.Percentage, err = decimal.NewFromString(pct)
	if err != nil {
		return Promotion{}, err
	}
	return p, nil
}

func (s *Store) Upsert(ctx context.Context, p Promotion) error {
	_, err := s.db.Exec(ctx, `
        INSERT INTO promotions (code, description, percentage, valid_from, valid_until, active)
        VALUES ($1, $2, $3::numeric, $4, $5, $6)
        ON CONFLICT (code) DO UPDATE
        SET description = EXCLUDED.description,
            percentage = EXCLUDED.percentage,
            valid_from = EXCLUDED.valid_from,
            valid_until = EXCLUDED.valid_until,
            active = EXCLUDED.active`,
		p.Code, p.Description, p.Percentage.String(), p.ValidFrom, p.ValidUntil, p.Active,
	)
	return err
}
