// README: Reservation store backed by PostgreSQL.
package reservation

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"shuttle/internal/modules/promotion"
	"shuttle/internal/types"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

const selectColumns = `
        SELECT id, passenger_name, email, phone, origin, destination,
               travel_date, travel_time, passengers, status, status_version,
               base_price, final_price, adjustment_fraction::text, lead_days, adjustments,
               promo_code, payment_option, amount_due, currency,
               created_at, confirmed_at, completed_at, cancelled_at, cancel_reason
        FROM reservations`

func (s *Store) Create(ctx context.Context, r *Reservation) error {
	adjustments, err := json.Marshal(r.Quote.Adjustments)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx, `
        INSERT INTO reservations (
            id, passenger_name, email, phone, origin, destination,
            travel_date, travel_time, passengers, status, status_version,
            base_price, final_price, adjustment_fraction, lead_days, adjustments,
            promo_code, payment_option, amount_due, currency, created_at
        ) VALUES (
            $1, $2, $3, $4, $5, $6,
            $7, $8, $9, $10, $11,
            $12, $13, $14::numeric, $15, $16,
            $17, $18, $19, $20, $21
        )`,
		string(r.ID), r.PassengerName, r.Email, r.Phone, r.Origin, r.Destination,
		r.TravelDate, r.TravelTime, r.Passengers, string(r.Status), r.StatusVersion,
		r.Quote.BasePrice, r.Quote.FinalPrice, r.Quote.AdjustmentFraction.String(), r.Quote.LeadDays, adjustments,
		r.PromoCode, string(r.PaymentOption), r.AmountDue.Amount, r.AmountDue.Currency, r.CreatedAt,
	)
	return err
}

func (s *Store) Get(ctx context.Context, id types.ID) (*Reservation, error) {
	row := s.db.QueryRow(ctx, selectColumns+` WHERE id = $1`, string(id))
	r, err := scanReservation(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return r, err
}

func (s *Store) ListByEmail(ctx context.Context, email string) ([]*Reservation, error) {
	rows, err := s.db.Query(ctx, selectColumns+` WHERE email = $1 ORDER BY created_at DESC`, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Reservation
	for rows.Next() {
		r, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ListPendingBefore returns pending reservations created before cutoff, oldest first.
func (s *Store) ListPendingBefore(ctx context.Context, cutoff time.Time, limit int) ([]*Reservation, error) {
	rows, err := s.db.Query(ctx, selectColumns+`
        WHERE status = 'pending' AND created_at < $1
        ORDER BY created_at
        LIMIT $2`, cutoff, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Reservation
	for rows.Next() {
		r, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// UpdateStatus moves a reservation from -> to if its version still matches.
// It reports false when another writer got there first.
func (s *Store) UpdateStatus(ctx context.Context, id types.ID, from, to Status, version int, reason *string) (bool, error) {
	tag, err := s.db.Exec(ctx, `
        UPDATE reservations
        SET status = $1,
            status_version = status_version + 1,
            confirmed_at = CASE WHEN $1 = 'confirmed' THEN NOW() ELSE confirmed_at END,
            completed_at = CASE WHEN $1 = 'completed' THEN NOW() ELSE completed_at END,
            cancelled_at = CASE WHEN $1 = 'cancelled' THEN NOW() ELSE cancelled_at END,
            cancel_reason = COALESCE($2, cancel_reason)
        WHERE id = $3 AND status = $4 AND status_version = $5`,
		string(to), reason, string(id), string(from), version,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Store) AppendEvent(ctx context.Context, e *Event) error {
	_, err := s.db.Exec(ctx, `
        INSERT INTO reservation_events (
            reservation_id, from_status, to_status, actor_type, actor_id, created_at
        ) VALUES ($1, $2, $3, $4, $5, $6)`,
		string(e.ReservationID),
		string(e.FromStatus),
		string(e.ToStatus),
		e.ActorType,
		toStringPtr(e.ActorID),
		e.CreatedAt,
	)
	return err
}

func scanReservation(row pgx.Row) (*Reservation, error) {
	var (
		r           Reservation
		fraction    string
		adjustments []byte
		option      string
	)
	err := row.Scan(
		&r.ID, &r.PassengerName, &r.Email, &r.Phone, &r.Origin, &r.Destination,
		&r.TravelDate, &r.TravelTime, &r.Passengers, &r.Status, &r.StatusVersion,
		&r.Quote.BasePrice, &r.Quote.FinalPrice, &fraction, &r.Quote.LeadDays, &adjustments,
		&r.PromoCode, &option, &r.AmountDue.Amount, &r.AmountDue.Currency,
		&r.CreatedAt, &r.ConfirmedAt, &r.CompletedAt, &r.CancelledAt, &r.CancelReason,
	)
	if err != nil {
		return nil, err
	}
	if r.Quote.AdjustmentFraction, err = decimal.NewFromString(fraction); err != nil {
		return nil, err
	}
	if len(adjustments) > 0 {
		if err := json.Unmarshal(adjustments, &r.Quote.Adjustments); err != nil {
			return nil, err
		}
	}
	r.PaymentOption = promotion.OptionKind(option)
	return &r, nil
}

func toStringPtr(v *types.ID) *string {
	if v == nil {
		return nil
	}
	s := string(*v)
	return &s
}

