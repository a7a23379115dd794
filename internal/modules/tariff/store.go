// README: Tariff store backed by PostgreSQL.
package tariff

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) Get(ctx context.Context, destination string) (Tariff, error) {
	row := s.db.QueryRow(ctx, `
        SELECT destination, label, base_price, currency, active, updated_at
        FROM tariffs
        WHERE destination = $1`, destination,
	)
	var t Tariff
	err := row.Scan(&t.Destination, &t.Label, &t.BasePrice, &t.Currency, &t.Active, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Tariff{}, ErrNotFound
	}
	if err != nil {
		return Tariff{}, err
	}
	return t, nil
}

func (s *Store) List(ctx context.Context) ([]Tariff, error) {
	rows, err := s.db.Query(ctx, `
        SELECT destination, label, base_price, currency, active, updated_at
        FROM tariffs
        WHERE active
        ORDER BY label`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Tariff, error) {
		var t Tariff
		err := row.Scan(&t.Destination, &t.Label, &t.BasePrice, &t.Currency, &t.Active, &t.UpdatedAt)
		return t, err
	})
}

func (s *Store) Upsert(ctx context.Context, t Tariff) error {
	_, err := s.db.Exec(ctx, `
        INSERT INTO tariffs (destination, label, base_price, currency, active, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (destination) DO UPDATE
        SET label = EXCLUDED.label,
            base_price = EXCLUDED.base_price,
            currency = EXCLUDED.currency,
            active = EXCLUDED.active,
            updated_at = EXCLUDED.updated_at`,
		t.Destination, t.Label, t.BasePrice, t.Currency, t.Active, t.UpdatedAt,
	)
	return err
}

func (s *Store) Deactivate(ctx context.Context, destination string) error {
	tag, err := s.db.Exec(ctx, `
        UPDATE tariffs SET active = FALSE, updated_at = NOW()
        WHERE destination = $1 AND active`, destination)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
