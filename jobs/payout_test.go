package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/inkwell-press/inkwell/internal/affiliate"
)

type stubPayoutStore struct {
	accounts []affiliate.Account
}

func (s *stubPayoutStore) ListWithPendingEarnings(_ context.Context) ([]affiliate.Account, error) {
	return s.accounts, nil
}

type stubSettler struct {
	failID  int64
	settled map[int64]decimal.Decimal
}

func (s *stubSettler) Settle(_ context.Context, accountID int64, amount decimal.Decimal) (*affiliate.Account, error) {
	if accountID == s.failID {
		return nil, errors.New("settle failed")
	}
	if s.settled == nil {
		s.settled = make(map[int64]decimal.Decimal)
	}
	s.settled[accountID] = amount
	return &affiliate.Account{ID: accountID}, nil
}

func TestPayoutSettlesFullPendingBalance(t *testing.T) {
	store := &stubPayoutStore{accounts: []affiliate.Account{
		{ID: 1, PendingEarnings: decimal.NewFromFloat(12.50)},
		{ID: 2, PendingEarnings: decimal.NewFromInt(40)},
	}}
	settler := &stubSettler{}
	handler := NewEarningsPayoutHandler(store, settler, discardLogger())

	task, err := NewEarningsPayoutTask(time.Now().UTC())
	require.NoError(t, err)
	require.NoError(t, handler(context.Background(), task))

	require.Len(t, settler.settled, 2)
	require.True(t, settler.settled[1].Equal(decimal.NewFromFloat(12.50)))
	require.True(t, settler.settled[2].Equal(decimal.NewFromInt(40)))
}

func TestPayoutContinuesPastFailedAccount(t *testing.T) {
	store := &stubPayoutStore{accounts: []affiliate.Account{
		{ID: 1, PendingEarnings: decimal.NewFromInt(5)},
		{ID: 2, PendingEarnings: decimal.NewFromInt(7)},
		{ID: 3, PendingEarnings: decimal.NewFromInt(9)},
	}}
	settler := &stubSettler{failID: 2}
	handler := NewEarningsPayoutHandler(store, settler, discardLogger())

	task, err := NewEarningsPayoutTask(time.Now().UTC())
	require.NoError(t, err)
	require.NoError(t, handler(context.Background(), task))

	require.Len(t, settler.settled, 2)
	require.Contains(t, settler.settled, int64(1))
	require.Contains(t, settler.settled, int64(3))
}
