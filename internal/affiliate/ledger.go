package affiliate

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// LedgerPort exposes the atomic balance mutations backing the earnings ledger.
// Implementations must apply each mutation as a single atomic expression at
// the storage layer; concurrent postings to one account must not lose updates.
type LedgerPort interface {
	FindByID(ctx context.Context, id int64) (*Account, error)
	AddPending(ctx context.Context, accountID int64, amount decimal.Decimal) (*Account, error)
	SettleEarnings(ctx context.Context, accountID int64, amount decimal.Decimal) (*Account, error)
}

// Ledger applies commission amounts to referrer earnings balances. Balances
// are only ever mutated through increment/decrement operations, never raw
// writes.
type Ledger struct {
	store LedgerPort
}

// NewLedger builds a Ledger instance.
func NewLedger(store LedgerPort) *Ledger {
	return &Ledger{store: store}
}

// PostPending accrues a commission into the account's pending balance. A zero
// amount is a no-op that still returns the current state; negative amounts are
// rejected.
func (l *Ledger) PostPending(ctx context.Context, accountID int64, amount decimal.Decimal) (*Account, error) {
	if amount.IsNegative() {
		return nil, fmt.Errorf("affiliate: pending amount must be non-negative, got %s", amount)
	}
	if amount.IsZero() {
		return l.store.FindByID(ctx, accountID)
	}
	return l.store.AddPending(ctx, accountID, amount)
}

// Settle moves an accrued commission from pending into total earnings. The
// distribution path never calls this; it exists for the payout process.
func (l *Ledger) Settle(ctx context.Context, accountID int64, amount decimal.Decimal) (*Account, error) {
	if amount.IsNegative() {
		return nil, fmt.Errorf("affiliate: settlement amount must be non-negative, got %s", amount)
	}
	if amount.IsZero() {
		return l.store.FindByID(ctx, accountID)
	}
	return l.store.SettleEarnings(ctx, accountID, amount)
}
