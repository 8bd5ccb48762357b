package subscriptions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/inkwell-press/inkwell/internal/shared"
)

// RepositoryPort abstracts subscription persistence.
type RepositoryPort interface {
	Create(ctx context.Context, in SubscriptionInput) (Subscription, error)
	FindByID(ctx context.Context, id int64) (Subscription, error)
	ListByUser(ctx context.Context, userID int64) ([]Subscription, error)
	UpdateStatus(ctx context.Context, id int64, status SubscriptionStatus) (Subscription, error)
	RecordPayment(ctx context.Context, p Payment) (Payment, error)
}

// DistributionEnqueuer hands a completed payment to the commission pipeline.
type DistributionEnqueuer interface {
	EnqueueCommissionDistribution(ctx context.Context, payerID int64, amount decimal.Decimal, reference string) error
}

// PaymentEvent is the normalized shape of a provider webhook.
type PaymentEvent struct {
	UserID    int64
	Amount    decimal.Decimal
	Reference string
}

type Service struct {
	repo     RepositoryPort
	enqueuer DistributionEnqueuer
	logger   *slog.Logger
}

func NewService(repo RepositoryPort, enqueuer DistributionEnqueuer, logger *slog.Logger) *Service {
	return &Service{repo: repo, enqueuer: enqueuer, logger: logger}
}

var planAmounts = map[string]decimal.Decimal{
	PlanBasic:    decimal.NewFromInt(10),
	PlanStandard: decimal.NewFromInt(25),
	PlanPremium:  decimal.NewFromInt(50),
}

func (s *Service) Create(ctx context.Context, in SubscriptionInput) (Subscription, error) {
	amount, ok := planAmounts[in.Plan]
	if !ok {
		return Subscription{}, fmt.Errorf("unknown plan %q: %w", in.Plan, shared.ErrNotFound)
	}
	in.Amount = amount
	return s.repo.Create(ctx, in)
}

func (s *Service) ListByUser(ctx context.Context, userID int64) ([]Subscription, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *Service) Cancel(ctx context.Context, id, userID int64) (Subscription, error) {
	sub, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return Subscription{}, err
	}
	if sub.UserID != userID {
		return Subscription{}, shared.ErrForbidden
	}
	return s.repo.UpdateStatus(ctx, id, StatusCancelled)
}

// HandlePaymentCompleted records the payment and queues commission
// distribution. Recording is the idempotency gate: a payment reference
// seen before means the event already ran end to end, so redeliveries
// return nil without enqueueing a second distribution.
func (s *Service) HandlePaymentCompleted(ctx context.Context, ev PaymentEvent) error {
	if ev.Reference == "" {
		return fmt.Errorf("payment event missing reference")
	}
	if ev.Amount.Sign() <= 0 {
		return fmt.Errorf("payment event amount must be positive, got %s", ev.Amount)
	}

	_, err := s.repo.RecordPayment(ctx, Payment{UserID: ev.UserID, Amount: ev.Amount, Reference: ev.Reference})
	if err != nil {
		if errors.Is(err, shared.ErrDuplicate) {
			s.logger.Info("payment already processed, skipping", "reference", ev.Reference)
			return nil
		}
		return fmt.Errorf("record payment %s: %w", ev.Reference, err)
	}

	if err := s.enqueuer.EnqueueCommissionDistribution(ctx, ev.UserID, ev.Amount, ev.Reference); err != nil {
		return fmt.Errorf("enqueue commission distribution for %s: %w", ev.Reference, err)
	}
	s.logger.Info("payment processed", "user_id", ev.UserID, "amount", ev.Amount, "reference", ev.Reference)
	return nil
}
