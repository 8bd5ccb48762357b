package affiliate

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/inkwell-press/inkwell/internal/shared"
)

// memoryDirectory is an in-memory stand-in for the users table, safe for
// concurrent use so the lost-update tests can hammer it from goroutines.
type memoryDirectory struct {
	mu             sync.Mutex
	accounts       map[int64]*Account
	order          []int64
	nextID         int64
	forcedCollides int
	postingErr     map[int64]error
}

func newMemoryDirectory() *memoryDirectory {
	return &memoryDirectory{
		accounts:   make(map[int64]*Account),
		postingErr: make(map[int64]error),
	}
}

func (m *memoryDirectory) add(a Account) *Account {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	a.ID = m.nextID
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	stored := a
	m.accounts[a.ID] = &stored
	m.order = append(m.order, a.ID)
	return &a
}

func (m *memoryDirectory) FindByID(ctx context.Context, id int64) (*Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *memoryDirectory) FindByReferralCode(ctx context.Context, code string) (*Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range m.order {
		if m.accounts[id].ReferralCode == code {
			cp := *m.accounts[id]
			return &cp, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *memoryDirectory) ListReferredBy(ctx context.Context, code string) ([]Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Account
	for _, id := range m.order {
		if m.accounts[id].ReferredBy == code {
			out = append(out, *m.accounts[id])
		}
	}
	return out, nil
}

func (m *memoryDirectory) Create(ctx context.Context, draft AccountDraft, referralCode string) (*Account, error) {
	return m.create(draft, referralCode, "")
}

func (m *memoryDirectory) CreateReferred(ctx context.Context, draft AccountDraft, referralCode, referrerCode string) (*Account, error) {
	return m.create(draft, referralCode, referrerCode)
}

func (m *memoryDirectory) create(draft AccountDraft, referralCode, referrerCode string) (*Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.forcedCollides > 0 {
		m.forcedCollides--
		return nil, ErrCodeCollision
	}
	for _, id := range m.order {
		if m.accounts[id].Email == draft.Email {
			return nil, shared.ErrDuplicate
		}
		if m.accounts[id].ReferralCode == referralCode {
			return nil, ErrCodeCollision
		}
	}

	var referrer *Account
	if referrerCode != "" {
		for _, id := range m.order {
			if m.accounts[id].ReferralCode == referrerCode {
				referrer = m.accounts[id]
				break
			}
		}
		if referrer == nil {
			return nil, fmt.Errorf("%w: %s", shared.ErrInvalidReferralCode, referrerCode)
		}
	}

	m.nextID++
	account := &Account{
		ID:           m.nextID,
		Email:        draft.Email,
		Username:     draft.Username,
		ReferralCode: referralCode,
		ReferredBy:   referrerCode,
		CreatedAt:    time.Now().UTC(),
	}
	m.accounts[account.ID] = account
	m.order = append(m.order, account.ID)
	if referrer != nil {
		referrer.DirectReferralCount++
	}
	cp := *account
	return &cp, nil
}

func (m *memoryDirectory) AddPending(ctx context.Context, accountID int64, amount decimal.Decimal) (*Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.postingErr[accountID]; ok {
		return nil, err
	}
	a, ok := m.accounts[accountID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	a.PendingEarnings = a.PendingEarnings.Add(amount)
	cp := *a
	return &cp, nil
}

func (m *memoryDirectory) SettleEarnings(ctx context.Context, accountID int64, amount decimal.Decimal) (*Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[accountID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	a.TotalEarnings = a.TotalEarnings.Add(amount)
	a.PendingEarnings = a.PendingEarnings.Sub(amount)
	cp := *a
	return &cp, nil
}

var (
	_ DirectoryPort = (*memoryDirectory)(nil)
	_ GraphPort     = (*memoryDirectory)(nil)
	_ LedgerPort    = (*memoryDirectory)(nil)
	_ RegistrarPort = (*memoryDirectory)(nil)
)
