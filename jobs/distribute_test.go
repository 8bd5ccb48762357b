package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/inkwell-press/inkwell/internal/affiliate"
	_ "github.com/inkwell-press/inkwell/testing"
)

type stubDistributor struct {
	err   error
	calls int
}

func (s *stubDistributor) Distribute(_ context.Context, _ int64, _ decimal.Decimal) error {
	s.calls++
	return s.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func distributeTask(t *testing.T, payload CommissionDistributePayload) *asynq.Task {
	t.Helper()
	task, err := NewCommissionDistributeTask(payload)
	require.NoError(t, err)
	return task
}

func TestDistributeHandlerHappyPath(t *testing.T) {
	dist := &stubDistributor{}
	handler := NewCommissionDistributeHandler(dist, discardLogger())

	task := distributeTask(t, CommissionDistributePayload{PayerID: 7, Amount: "100", Reference: "pay_1"})
	require.NoError(t, handler(context.Background(), task))
	require.Equal(t, 1, dist.calls)
}

func TestDistributeHandlerSkipsRetryOnPostingError(t *testing.T) {
	dist := &stubDistributor{err: &affiliate.PostingError{Tier: "direct", AccountID: 2, Err: errors.New("boom")}}
	handler := NewCommissionDistributeHandler(dist, discardLogger())

	task := distributeTask(t, CommissionDistributePayload{PayerID: 7, Amount: "100", Reference: "pay_2"})
	err := handler(context.Background(), task)
	require.Error(t, err)
	require.ErrorIs(t, err, asynq.SkipRetry)
}

func TestDistributeHandlerRetriesTransientErrors(t *testing.T) {
	dist := &stubDistributor{err: errors.New("connection refused")}
	handler := NewCommissionDistributeHandler(dist, discardLogger())

	task := distributeTask(t, CommissionDistributePayload{PayerID: 7, Amount: "100", Reference: "pay_3"})
	err := handler(context.Background(), task)
	require.Error(t, err)
	require.NotErrorIs(t, err, asynq.SkipRetry)
}

func TestDistributeHandlerRejectsBadPayload(t *testing.T) {
	dist := &stubDistributor{}
	handler := NewCommissionDistributeHandler(dist, discardLogger())

	err := handler(context.Background(), asynq.NewTask(TaskCommissionDistribute, []byte(`{"amount":`)))
	require.ErrorIs(t, err, asynq.SkipRetry)
	require.Zero(t, dist.calls)

	data, _ := json.Marshal(CommissionDistributePayload{PayerID: 7, Amount: "-5", Reference: "pay_neg"})
	err = handler(context.Background(), asynq.NewTask(TaskCommissionDistribute, data))
	require.ErrorIs(t, err, asynq.SkipRetry)
	require.Zero(t, dist.calls)
}
