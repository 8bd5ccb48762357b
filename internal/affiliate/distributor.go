package affiliate

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/inkwell-press/inkwell/internal/shared"
)

// CommissionObserver records posted commissions for monitoring.
type CommissionObserver interface {
	ObserveCommission(tier string, amount float64)
}

// Distributor orchestrates calculation and ledger posting for one payment
// event. It is stateless per call; the only implicit state is each referrer's
// rate tier, which is a derived read at call time.
type Distributor struct {
	dir     DirectoryPort
	calc    *Calculator
	ledger  *Ledger
	logger  *slog.Logger
	metrics CommissionObserver
}

// NewDistributor builds a Distributor instance. metrics may be nil.
func NewDistributor(dir DirectoryPort, calc *Calculator, ledger *Ledger, logger *slog.Logger, metrics CommissionObserver) *Distributor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Distributor{dir: dir, calc: calc, ledger: ledger, logger: logger, metrics: metrics}
}

// Distribute posts the tiered commissions for a completed payment. A payer
// with no referrer is a no-op, not an error. The two postings are independent
// and non-transactional: a failure posting one tier is reported as a
// PostingError without rolling back the other. The referrer chain is
// re-resolved by code before each posting instead of reusing the references
// read during calculation, so a code that went dangling in between simply
// skips that tier.
func (d *Distributor) Distribute(ctx context.Context, payerID int64, amount decimal.Decimal) error {
	payer, err := d.dir.FindByID(ctx, payerID)
	if err != nil {
		return err
	}
	if payer.ReferredBy == "" {
		return nil
	}

	breakdown, err := d.calc.Calculate(ctx, payerID, amount)
	if err != nil {
		return err
	}

	var errs []error

	if breakdown.Direct.IsPositive() {
		direct, err := d.resolve(ctx, payer.ReferredBy)
		if err != nil {
			errs = append(errs, err)
		} else if direct != nil {
			if _, err := d.ledger.PostPending(ctx, direct.ID, breakdown.Direct); err != nil {
				perr := &PostingError{Tier: "direct", AccountID: direct.ID, Err: err}
				d.logger.Error("post direct commission",
					slog.Int64("payer_id", payerID),
					slog.Int64("referrer_id", direct.ID),
					slog.String("amount", breakdown.Direct.String()),
					slog.Any("error", err))
				errs = append(errs, perr)
			} else {
				d.observe("direct", breakdown.Direct)
			}
		}
	}

	if breakdown.Indirect.IsPositive() {
		direct, err := d.resolve(ctx, payer.ReferredBy)
		if err != nil {
			errs = append(errs, err)
		} else if direct != nil && direct.ReferredBy != "" {
			indirect, err := d.resolve(ctx, direct.ReferredBy)
			if err != nil {
				errs = append(errs, err)
			} else if indirect != nil {
				if _, err := d.ledger.PostPending(ctx, indirect.ID, breakdown.Indirect); err != nil {
					perr := &PostingError{Tier: "indirect", AccountID: indirect.ID, Err: err}
					d.logger.Error("post indirect commission",
						slog.Int64("payer_id", payerID),
						slog.Int64("referrer_id", indirect.ID),
						slog.String("amount", breakdown.Indirect.String()),
						slog.Any("error", err))
					errs = append(errs, perr)
				} else {
					d.observe("indirect", breakdown.Indirect)
				}
			}
		}
	}

	return errors.Join(errs...)
}

// resolve looks up a referrer by code, mapping a dangling code to a logged
// skip rather than an error.
func (d *Distributor) resolve(ctx context.Context, code string) (*Account, error) {
	account, err := d.dir.FindByReferralCode(ctx, code)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			d.logger.Warn("referral code no longer resolves, skipping posting", slog.String("code", code))
			return nil, nil
		}
		return nil, err
	}
	return account, nil
}

func (d *Distributor) observe(tier string, amount decimal.Decimal) {
	if d.metrics == nil {
		return
	}
	f, _ := amount.Float64()
	d.metrics.ObserveCommission(tier, f)
}
