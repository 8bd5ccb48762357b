package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskCommissionDistribute posts referral commissions for one payment.
	TaskCommissionDistribute = "affiliate:distribute"
	// TaskEarningsPayout settles pending earnings on a schedule.
	TaskEarningsPayout = "affiliate:payout"
)

// CommissionDistributePayload identifies the payment driving a distribution.
type CommissionDistributePayload struct {
	PayerID   int64  `json:"payer_id"`
	Amount    string `json:"amount"`
	Reference string `json:"reference"`
}

// NewCommissionDistributeTask constructs an Asynq task for commission distribution.
func NewCommissionDistributeTask(payload CommissionDistributePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCommissionDistribute, data, asynq.Queue(QueueDefault), asynq.MaxRetry(3)), nil
}

// EarningsPayoutPayload carries scheduling metadata.
type EarningsPayoutPayload struct {
	ScheduledFor time.Time `json:"scheduled_for"`
}

// NewEarningsPayoutTask constructs an Asynq task for the payout run.
func NewEarningsPayoutTask(at time.Time) (*asynq.Task, error) {
	data, err := json.Marshal(EarningsPayoutPayload{ScheduledFor: at})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskEarningsPayout, data, asynq.Queue(QueueDefault)), nil
}
