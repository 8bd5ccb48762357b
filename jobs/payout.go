package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"

	"github.com/inkwell-press/inkwell/internal/affiliate"
)

// CronDailyPayout runs the payout at 03:00 UTC.
const CronDailyPayout = "0 3 * * *"

// PayoutStore lists accounts awaiting settlement.
type PayoutStore interface {
	ListWithPendingEarnings(ctx context.Context) ([]affiliate.Account, error)
}

// EarningsSettler moves pending earnings into totals.
type EarningsSettler interface {
	Settle(ctx context.Context, accountID int64, amount decimal.Decimal) (*affiliate.Account, error)
}

// NewEarningsPayoutHandler returns the handler for TaskEarningsPayout.
// Each account settles its full pending balance. A failure on one
// account is logged and the run continues; the next scheduled run picks
// up whatever remained pending.
func NewEarningsPayoutHandler(store PayoutStore, settler EarningsSettler, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload EarningsPayoutPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("decode payout payload: %v: %w", err, asynq.SkipRetry)
		}

		accounts, err := store.ListWithPendingEarnings(ctx)
		if err != nil {
			return fmt.Errorf("list accounts pending payout: %w", err)
		}

		settled := 0
		total := decimal.Zero
		for _, acc := range accounts {
			if acc.PendingEarnings.Sign() <= 0 {
				continue
			}
			if _, err := settler.Settle(ctx, acc.ID, acc.PendingEarnings); err != nil {
				logger.Error("settle earnings",
					slog.Int64("account_id", acc.ID),
					slog.String("amount", acc.PendingEarnings.String()),
					slog.Any("error", err))
				continue
			}
			settled++
			total = total.Add(acc.PendingEarnings)
		}

		logger.Info("payout run complete",
			slog.Int("accounts", settled),
			slog.String("total", total.String()),
			slog.Time("scheduled_for", payload.ScheduledFor))
		return nil
	}
}

// DefaultCron returns the standard cron registrations for the worker.
func DefaultCron() ([]CronRegistration, error) {
	payoutTask, err := NewEarningsPayoutTask(time.Now().UTC())
	if err != nil {
		return nil, err
	}
	return []CronRegistration{
		{Spec: CronDailyPayout, Task: payoutTask},
	}, nil
}
