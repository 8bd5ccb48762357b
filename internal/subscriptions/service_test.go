package subscriptions

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/inkwell-press/inkwell/internal/shared"
)

type memorySubscriptionRepo struct {
	mu       sync.Mutex
	nextID   int64
	subs     map[int64]Subscription
	payments map[string]Payment
}

func newMemorySubscriptionRepo() *memorySubscriptionRepo {
	return &memorySubscriptionRepo{
		nextID:   1,
		subs:     make(map[int64]Subscription),
		payments: make(map[string]Payment),
	}
}

func (m *memorySubscriptionRepo) Create(_ context.Context, in SubscriptionInput) (Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := Subscription{
		ID:          m.nextID,
		UserID:      in.UserID,
		Plan:        in.Plan,
		Status:      StatusActive,
		Amount:      in.Amount,
		PeriodStart: in.PeriodStart,
		PeriodEnd:   in.PeriodEnd,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	m.nextID++
	m.subs[s.ID] = s
	return s, nil
}

func (m *memorySubscriptionRepo) FindByID(_ context.Context, id int64) (Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.subs[id]
	if !ok {
		return Subscription{}, shared.ErrNotFound
	}
	return s, nil
}

func (m *memorySubscriptionRepo) ListByUser(_ context.Context, userID int64) ([]Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Subscription
	for _, s := range m.subs {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memorySubscriptionRepo) UpdateStatus(_ context.Context, id int64, status SubscriptionStatus) (Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.subs[id]
	if !ok {
		return Subscription{}, shared.ErrNotFound
	}
	s.Status = status
	m.subs[id] = s
	return s, nil
}

func (m *memorySubscriptionRepo) RecordPayment(_ context.Context, p Payment) (Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.payments[p.Reference]; exists {
		return Payment{}, shared.ErrDuplicate
	}
	p.ID = m.nextID
	m.nextID++
	p.CreatedAt = time.Now()
	m.payments[p.Reference] = p
	return p, nil
}

type recordingEnqueuer struct {
	mu    sync.Mutex
	calls []PaymentEvent
}

func (r *recordingEnqueuer) EnqueueCommissionDistribution(_ context.Context, payerID int64, amount decimal.Decimal, reference string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, PaymentEvent{UserID: payerID, Amount: amount, Reference: reference})
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHandlePaymentCompletedEnqueuesDistribution(t *testing.T) {
	repo := newMemorySubscriptionRepo()
	enq := &recordingEnqueuer{}
	svc := NewService(repo, enq, discardLogger())

	err := svc.HandlePaymentCompleted(context.Background(), PaymentEvent{
		UserID:    7,
		Amount:    decimal.NewFromInt(50),
		Reference: "pay_001",
	})
	require.NoError(t, err)
	require.Len(t, enq.calls, 1)
	require.Equal(t, int64(7), enq.calls[0].UserID)
	require.True(t, enq.calls[0].Amount.Equal(decimal.NewFromInt(50)))
}

func TestHandlePaymentCompletedIsIdempotent(t *testing.T) {
	repo := newMemorySubscriptionRepo()
	enq := &recordingEnqueuer{}
	svc := NewService(repo, enq, discardLogger())

	ev := PaymentEvent{UserID: 7, Amount: decimal.NewFromInt(25), Reference: "pay_dup"}
	require.NoError(t, svc.HandlePaymentCompleted(context.Background(), ev))
	require.NoError(t, svc.HandlePaymentCompleted(context.Background(), ev))
	require.NoError(t, svc.HandlePaymentCompleted(context.Background(), ev))

	require.Len(t, enq.calls, 1, "redelivered webhooks must not enqueue again")
}

func TestHandlePaymentCompletedRejectsBadEvents(t *testing.T) {
	svc := NewService(newMemorySubscriptionRepo(), &recordingEnqueuer{}, discardLogger())

	err := svc.HandlePaymentCompleted(context.Background(), PaymentEvent{UserID: 1, Amount: decimal.NewFromInt(10)})
	require.Error(t, err)

	err = svc.HandlePaymentCompleted(context.Background(), PaymentEvent{UserID: 1, Amount: decimal.Zero, Reference: "pay_zero"})
	require.Error(t, err)
}

func TestCancelRequiresOwnership(t *testing.T) {
	repo := newMemorySubscriptionRepo()
	svc := NewService(repo, &recordingEnqueuer{}, discardLogger())

	sub, err := svc.Create(context.Background(), SubscriptionInput{UserID: 3, Plan: PlanBasic})
	require.NoError(t, err)
	require.True(t, sub.Amount.Equal(decimal.NewFromInt(10)))

	_, err = svc.Cancel(context.Background(), sub.ID, 99)
	require.ErrorIs(t, err, shared.ErrForbidden)

	got, err := svc.Cancel(context.Background(), sub.ID, 3)
	require.NoError(t, err)
	require.Equal(t, StatusCancelled, got.Status)
}
