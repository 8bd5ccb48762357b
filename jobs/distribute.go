package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"

	"github.com/inkwell-press/inkwell/internal/affiliate"
)

// CommissionDistributor is the slice of the affiliate service the worker needs.
type CommissionDistributor interface {
	Distribute(ctx context.Context, payerID int64, amount decimal.Decimal) error
}

// NewCommissionDistributeHandler returns the handler for TaskCommissionDistribute.
//
// Ledger postings are additive and not idempotent, so any error raised
// after a posting may have landed must not trigger a retry. Partial
// posting failures surface as affiliate.PostingError and are logged and
// skipped rather than retried.
func NewCommissionDistributeHandler(distributor CommissionDistributor, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload CommissionDistributePayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("decode distribute payload: %v: %w", err, asynq.SkipRetry)
		}
		amount, err := decimal.NewFromString(payload.Amount)
		if err != nil || amount.Sign() <= 0 {
			return fmt.Errorf("invalid distribute amount %q: %w", payload.Amount, asynq.SkipRetry)
		}

		if err := distributor.Distribute(ctx, payload.PayerID, amount); err != nil {
			var postErr *affiliate.PostingError
			if errors.As(err, &postErr) {
				logger.Error("commission posting failed, not retrying",
					slog.Int64("payer_id", payload.PayerID),
					slog.String("reference", payload.Reference),
					slog.Any("error", err))
				return fmt.Errorf("post commissions for %s: %v: %w", payload.Reference, err, asynq.SkipRetry)
			}
			return fmt.Errorf("distribute commissions for %s: %w", payload.Reference, err)
		}

		logger.Info("commissions distributed",
			slog.Int64("payer_id", payload.PayerID),
			slog.String("amount", amount.String()),
			slog.String("reference", payload.Reference))
		return nil
	}
}
