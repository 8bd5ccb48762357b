package users

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/inkwell-press/inkwell/internal/shared"
)

const userColumns = `id, email, username, role, referral_code, COALESCE(referred_by, ''), direct_referral_count, total_earnings, pending_earnings, created_at, updated_at`

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanUser(row pgx.Row) (*User, error) {
	var u User
	if err := row.Scan(
		&u.ID, &u.Email, &u.Username, &u.Role, &u.ReferralCode, &u.ReferredBy,
		&u.DirectReferralCount, &u.TotalEarnings, &u.PendingEarnings, &u.CreatedAt, &u.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// FindByID fetches a user by id.
func (r *Repository) FindByID(ctx context.Context, id int64) (*User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// ListUsers returns all users.
func (r *Repository) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(
			&u.ID, &u.Email, &u.Username, &u.Role, &u.ReferralCode, &u.ReferredBy,
			&u.DirectReferralCount, &u.TotalEarnings, &u.PendingEarnings, &u.CreatedAt, &u.UpdatedAt,
		); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateRole changes a user's role.
func (r *Repository) UpdateRole(ctx context.Context, id int64, role string) (*User, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE users SET role = $2, updated_at = now() WHERE id = $1 RETURNING `+userColumns,
		id, role)
	return scanUser(row)
}
