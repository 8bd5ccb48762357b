package affiliate

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Tier thresholds compare an account's direct referral count against a fixed
// cutoff. Reaching the cutoff selects the elevated rate.
const (
	DirectEliteThreshold   = 10
	IndirectEliteThreshold = 5
)

var (
	directBaseRate       = decimal.NewFromFloat(0.30)
	directElevatedRate   = decimal.NewFromFloat(0.40)
	indirectBaseRate     = decimal.NewFromFloat(0.05)
	indirectElevatedRate = decimal.NewFromFloat(0.10)
)

// DirectRate returns the first-tier commission rate for a referrer with the
// given direct referral count.
func DirectRate(directReferrals int) decimal.Decimal {
	if directReferrals >= DirectEliteThreshold {
		return directElevatedRate
	}
	return directBaseRate
}

// IndirectRate returns the second-tier commission rate for a referrer with the
// given direct referral count.
func IndirectRate(directReferrals int) decimal.Decimal {
	if directReferrals >= IndirectEliteThreshold {
		return indirectElevatedRate
	}
	return indirectBaseRate
}

// Account is the referral-facing projection of a user record.
type Account struct {
	ID                  int64           `json:"id"`
	Email               string          `json:"email"`
	Username            string          `json:"username"`
	ReferralCode        string          `json:"referralCode"`
	ReferredBy          string          `json:"referredBy,omitempty"`
	DirectReferralCount int             `json:"directReferralCount"`
	TotalEarnings       decimal.Decimal `json:"totalEarnings"`
	PendingEarnings     decimal.Decimal `json:"pendingEarnings"`
	CreatedAt           time.Time       `json:"createdAt"`
}

// AccountDraft carries the fields required to create a new account.
type AccountDraft struct {
	Email        string
	Username     string
	PasswordHash string
	Role         string
}

// Breakdown is the tiered commission split for a single payment. Direct and
// Indirect accrue to two different accounts; Total is informational only and
// is never posted as one ledger entry.
type Breakdown struct {
	Direct   decimal.Decimal
	Indirect decimal.Decimal
	Total    decimal.Decimal
}

// ZeroBreakdown is returned when no commission is attributable.
func ZeroBreakdown() Breakdown {
	return Breakdown{Direct: decimal.Zero, Indirect: decimal.Zero, Total: decimal.Zero}
}

// TreeBranch is one direct referral together with its own direct referrals.
type TreeBranch struct {
	Account           Account   `json:"account"`
	IndirectReferrals []Account `json:"indirectReferrals"`
}

// Tree is the two-level referral view for display. Branches are rendered
// verbatim per direct referral, without cross-branch deduplication.
type Tree struct {
	Account         Account      `json:"account"`
	DirectReferrals []TreeBranch `json:"directReferrals"`
}

// Stats summarises an account's referral standing.
type Stats struct {
	Account             Account         `json:"account"`
	DirectReferrals     []Account       `json:"directReferrals"`
	IndirectReferrals   []Account       `json:"indirectReferrals"`
	DirectRatePercent   decimal.Decimal `json:"directRatePercent"`
	IndirectRatePercent decimal.Decimal `json:"indirectRatePercent"`
	ReferralLink        string          `json:"referralLink"`
}

// ErrCodeCollision indicates a freshly generated referral code already exists.
// It is retried internally during code generation.
var ErrCodeCollision = errors.New("referral code collision")

// PostingError reports a failed ledger posting for one referrer. Postings for
// the two tiers are independent; a PostingError for one never implies the
// sibling posting was rolled back.
type PostingError struct {
	Tier      string
	AccountID int64
	Err       error
}

func (e *PostingError) Error() string {
	return fmt.Sprintf("affiliate: post %s commission to account %d: %v", e.Tier, e.AccountID, e.Err)
}

func (e *PostingError) Unwrap() error { return e.Err }
