package users

import (
	"time"

	"github.com/shopspring/decimal"
)

// Roles assignable to a user account.
const (
	RoleAdmin      = "admin"
	RoleAuthor     = "author"
	RoleSubscriber = "subscriber"
)

// User represents a user account.
type User struct {
	ID                  int64           `json:"id"`
	Email               string          `json:"email"`
	Username            string          `json:"username"`
	Role                string          `json:"role"`
	ReferralCode        string          `json:"referralCode"`
	ReferredBy          string          `json:"referredBy,omitempty"`
	DirectReferralCount int             `json:"directReferralCount"`
	TotalEarnings       decimal.Decimal `json:"totalEarnings"`
	PendingEarnings     decimal.Decimal `json:"pendingEarnings"`
	CreatedAt           time.Time       `json:"createdAt"`
	UpdatedAt           time.Time       `json:"updatedAt"`
}

// RegisterInput carries a signup request.
type RegisterInput struct {
	Email        string
	Username     string
	Password     string
	ReferralCode string
}
