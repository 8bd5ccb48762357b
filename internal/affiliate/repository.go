package affiliate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/inkwell-press/inkwell/internal/platform/db"
	"github.com/inkwell-press/inkwell/internal/shared"
)

const accountColumns = `id, email, username, referral_code, COALESCE(referred_by, ''), direct_referral_count, total_earnings, pending_earnings, created_at`

// Repository provides PostgreSQL backed persistence for the affiliate engine.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*Account, error) {
	var a Account
	if err := row.Scan(
		&a.ID, &a.Email, &a.Username, &a.ReferralCode, &a.ReferredBy,
		&a.DirectReferralCount, &a.TotalEarnings, &a.PendingEarnings, &a.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

// FindByID fetches an account by id.
func (r *Repository) FindByID(ctx context.Context, id int64) (*Account, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM users WHERE id = $1`, id)
	return scanAccount(row)
}

// FindByReferralCode fetches the account owning the given referral code.
func (r *Repository) FindByReferralCode(ctx context.Context, code string) (*Account, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM users WHERE referral_code = $1`, code)
	return scanAccount(row)
}

// ListReferredBy returns all accounts created under the given code, in signup
// order.
func (r *Repository) ListReferredBy(ctx context.Context, code string) ([]Account, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+accountColumns+` FROM users WHERE referred_by = $1 ORDER BY created_at, id`, code)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *account)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return accounts, nil
}

const insertAccount = `
	INSERT INTO users (email, username, password_hash, role, referral_code, referred_by, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $7)
	RETURNING ` + accountColumns

// Create persists an organic account with the given referral code.
func (r *Repository) Create(ctx context.Context, draft AccountDraft, referralCode string) (*Account, error) {
	row := r.pool.QueryRow(ctx, insertAccount,
		draft.Email, draft.Username, draft.PasswordHash, draft.Role, referralCode, "", time.Now().UTC())
	account, err := scanAccount(row)
	if err != nil {
		return nil, mapUniqueViolation(err)
	}
	return account, nil
}

// CreateReferred persists a referred account and increments the referrer's
// direct referral counter inside one transaction. The increment is a single
// atomic SQL expression so concurrent signups under the same code never lose
// updates.
func (r *Repository) CreateReferred(ctx context.Context, draft AccountDraft, referralCode, referrerCode string) (*Account, error) {
	var account *Account
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, insertAccount,
			draft.Email, draft.Username, draft.PasswordHash, draft.Role, referralCode, referrerCode, time.Now().UTC())
		created, err := scanAccount(row)
		if err != nil {
			return mapUniqueViolation(err)
		}

		tag, err := tx.Exec(ctx,
			`UPDATE users SET direct_referral_count = direct_referral_count + 1, updated_at = now() WHERE referral_code = $1`,
			referrerCode)
		if err != nil {
			return fmt.Errorf("affiliate: increment referrer counter: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%w: %s", shared.ErrInvalidReferralCode, referrerCode)
		}

		account = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}

// AddPending atomically increases the pending earnings balance.
func (r *Repository) AddPending(ctx context.Context, accountID int64, amount decimal.Decimal) (*Account, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE users SET pending_earnings = pending_earnings + $2, updated_at = now() WHERE id = $1 RETURNING `+accountColumns,
		accountID, amount)
	return scanAccount(row)
}

// SettleEarnings atomically moves an amount from pending into total earnings.
func (r *Repository) SettleEarnings(ctx context.Context, accountID int64, amount decimal.Decimal) (*Account, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE users
		 SET total_earnings = total_earnings + $2,
		     pending_earnings = pending_earnings - $2,
		     updated_at = now()
		 WHERE id = $1
		 RETURNING `+accountColumns,
		accountID, amount)
	return scanAccount(row)
}

// ListWithPendingEarnings returns accounts with an outstanding pending
// balance, for the payout process.
func (r *Repository) ListWithPendingEarnings(ctx context.Context) ([]Account, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+accountColumns+` FROM users WHERE pending_earnings > 0 ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *account)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return accounts, nil
}

// mapUniqueViolation distinguishes email duplicates from referral code
// collisions so the registrar can retry only the latter.
func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		if pgErr.ConstraintName == "users_referral_code_key" {
			return ErrCodeCollision
		}
		return shared.ErrDuplicate
	}
	return err
}

var (
	_ DirectoryPort = (*Repository)(nil)
	_ GraphPort     = (*Repository)(nil)
	_ LedgerPort    = (*Repository)(nil)
	_ RegistrarPort = (*Repository)(nil)
)
