package subscriptions

import (
	"time"

	"github.com/shopspring/decimal"
)

// SubscriptionStatus enumerates subscription states.
type SubscriptionStatus string

const (
	StatusActive    SubscriptionStatus = "active"
	StatusPastDue   SubscriptionStatus = "past_due"
	StatusCancelled SubscriptionStatus = "cancelled"
)

// Plans offered to subscribers.
const (
	PlanBasic    = "basic"
	PlanStandard = "standard"
	PlanPremium  = "premium"
)

// Subscription model.
type Subscription struct {
	ID          int64              `json:"id"`
	UserID      int64              `json:"userId"`
	Plan        string             `json:"plan"`
	Status      SubscriptionStatus `json:"status"`
	Amount      decimal.Decimal    `json:"amount"`
	PeriodStart time.Time          `json:"periodStart"`
	PeriodEnd   time.Time          `json:"periodEnd"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

// SubscriptionInput for creating subscriptions.
type SubscriptionInput struct {
	UserID      int64
	Plan        string
	Amount      decimal.Decimal
	PeriodStart time.Time
	PeriodEnd   time.Time
}

// Payment records one completed charge reported by the billing provider.
type Payment struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"userId"`
	Amount    decimal.Decimal `json:"amount"`
	Reference string          `json:"reference"`
	CreatedAt time.Time       `json:"createdAt"`
}
