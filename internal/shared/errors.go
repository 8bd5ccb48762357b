package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate indicates a uniqueness violation on creation.
	ErrDuplicate = errors.New("duplicate entry")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidReferralCode occurs when a supplied referral code resolves to no account.
	ErrInvalidReferralCode = errors.New("invalid referral code")
	// ErrForbidden occurs when the authenticated user lacks the required role.
	ErrForbidden = errors.New("forbidden")
	// ErrUnauthorized occurs when no valid credentials accompany the request.
	ErrUnauthorized = errors.New("unauthorized")
)
