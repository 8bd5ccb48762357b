package subscriptions

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/inkwell-press/inkwell/internal/shared"
)

// Repository persists subscriptions and payments in Postgres.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const subscriptionColumns = `id, user_id, plan, status, amount, period_start, period_end, created_at, updated_at`

func scanSubscription(row pgx.Row) (Subscription, error) {
	var s Subscription
	err := row.Scan(&s.ID, &s.UserID, &s.Plan, &s.Status, &s.Amount, &s.PeriodStart, &s.PeriodEnd, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Subscription{}, shared.ErrNotFound
		}
		return Subscription{}, err
	}
	return s, nil
}

func (r *Repository) Create(ctx context.Context, in SubscriptionInput) (Subscription, error) {
	const q = `
		INSERT INTO subscriptions (user_id, plan, status, amount, period_start, period_end)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + subscriptionColumns
	return scanSubscription(r.pool.QueryRow(ctx, q, in.UserID, in.Plan, StatusActive, in.Amount, in.PeriodStart, in.PeriodEnd))
}

func (r *Repository) FindByID(ctx context.Context, id int64) (Subscription, error) {
	const q = `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE id = $1`
	return scanSubscription(r.pool.QueryRow(ctx, q, id))
}

func (r *Repository) ListByUser(ctx context.Context, userID int64) ([]Subscription, error) {
	const q = `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE user_id = $1 ORDER BY created_at DESC, id DESC`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Subscription
	for rows.Next() {
		s, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *Repository) UpdateStatus(ctx context.Context, id int64, status SubscriptionStatus) (Subscription, error) {
	const q = `
		UPDATE subscriptions SET status = $2, updated_at = now()
		WHERE id = $1
		RETURNING ` + subscriptionColumns
	return scanSubscription(r.pool.QueryRow(ctx, q, id, status))
}

// RecordPayment inserts a payment row keyed by the provider reference.
// A repeated reference hits the unique index and maps to shared.ErrDuplicate,
// which callers use to detect webhook redeliveries.
func (r *Repository) RecordPayment(ctx context.Context, p Payment) (Payment, error) {
	const q = `
		INSERT INTO payments (user_id, amount, reference)
		VALUES ($1, $2, $3)
		RETURNING id, user_id, amount, reference, created_at`
	var out Payment
	err := r.pool.QueryRow(ctx, q, p.UserID, p.Amount, p.Reference).
		Scan(&out.ID, &out.UserID, &out.Amount, &out.Reference, &out.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Payment{}, shared.ErrDuplicate
		}
		return Payment{}, err
	}
	return out, nil
}
