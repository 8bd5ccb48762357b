package affiliate

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/inkwell-press/inkwell/internal/shared"
)

// DirectoryPort exposes the account lookups the engine needs. The user
// directory itself lives outside this package.
type DirectoryPort interface {
	FindByID(ctx context.Context, id int64) (*Account, error)
	FindByReferralCode(ctx context.Context, code string) (*Account, error)
}

// Calculator computes the tiered commission split for a payment. It is a pure
// read over the directory and never mutates state, so calls may run freely in
// parallel with ledger updates.
type Calculator struct {
	dir DirectoryPort
}

// NewCalculator builds a Calculator instance.
func NewCalculator(dir DirectoryPort) *Calculator {
	return &Calculator{dir: dir}
}

// Calculate resolves the payer's referrer chain and returns the commission
// split for the given amount. Rates are read from each referrer's current
// direct referral count, so the tier an account earns can move between
// payments. An organic payer or a dangling referral code yields a zero
// breakdown without error.
func (c *Calculator) Calculate(ctx context.Context, payerID int64, amount decimal.Decimal) (Breakdown, error) {
	payer, err := c.dir.FindByID(ctx, payerID)
	if err != nil {
		return Breakdown{}, err
	}
	if payer.ReferredBy == "" {
		return ZeroBreakdown(), nil
	}

	direct, err := c.dir.FindByReferralCode(ctx, payer.ReferredBy)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return ZeroBreakdown(), nil
		}
		return Breakdown{}, err
	}

	directCommission := amount.Mul(DirectRate(direct.DirectReferralCount))

	indirectCommission := decimal.Zero
	if direct.ReferredBy != "" {
		indirect, err := c.dir.FindByReferralCode(ctx, direct.ReferredBy)
		switch {
		case err == nil:
			indirectCommission = amount.Mul(IndirectRate(indirect.DirectReferralCount))
		case errors.Is(err, shared.ErrNotFound):
			// Broken upstream link earns nothing for the second tier.
		default:
			return Breakdown{}, err
		}
	}

	return Breakdown{
		Direct:   directCommission,
		Indirect: indirectCommission,
		Total:    directCommission.Add(indirectCommission),
	}, nil
}
