package affiliate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/inkwell-press/inkwell/internal/shared"
)

// codeGenAttempts bounds referral-code generation retries. Exhaustion means
// the code space is effectively full, which is a capacity problem rather than
// a user error.
const codeGenAttempts = 5

// RegistrarPort exposes the account-creation operations. CreateReferred must
// persist the new account and increment the referrer's counter as one unit of
// work.
type RegistrarPort interface {
	FindByReferralCode(ctx context.Context, code string) (*Account, error)
	Create(ctx context.Context, draft AccountDraft, referralCode string) (*Account, error)
	CreateReferred(ctx context.Context, draft AccountDraft, referralCode, referrerCode string) (*Account, error)
}

// Registrar issues referral codes to new accounts and links them to their
// referrer.
type Registrar struct {
	store RegistrarPort
}

// NewRegistrar builds a Registrar instance.
func NewRegistrar(store RegistrarPort) *Registrar {
	return &Registrar{store: store}
}

// Register creates an account with a freshly generated unique referral code.
// When referrerCode is non-empty it must resolve to an existing account; a
// code that resolves to nothing rejects the registration with
// shared.ErrInvalidReferralCode rather than storing a dangling link. On
// success the referrer's direct referral counter is incremented exactly once,
// atomically with the account insert.
func (r *Registrar) Register(ctx context.Context, draft AccountDraft, referrerCode string) (*Account, error) {
	if referrerCode != "" {
		if _, err := r.store.FindByReferralCode(ctx, referrerCode); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, fmt.Errorf("%w: %s", shared.ErrInvalidReferralCode, referrerCode)
			}
			return nil, err
		}
	}

	for attempt := 0; attempt < codeGenAttempts; attempt++ {
		code := newReferralCode()

		var (
			account *Account
			err     error
		)
		if referrerCode == "" {
			account, err = r.store.Create(ctx, draft, code)
		} else {
			account, err = r.store.CreateReferred(ctx, draft, code, referrerCode)
		}
		if errors.Is(err, ErrCodeCollision) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return account, nil
	}

	return nil, fmt.Errorf("affiliate: referral code generation exhausted after %d attempts", codeGenAttempts)
}

// newReferralCode derives a short opaque code from a random UUID. Uniqueness
// is enforced by the store; collisions surface as ErrCodeCollision and are
// retried by Register.
func newReferralCode() string {
	return strings.ToUpper(uuid.NewString()[:8])
}
