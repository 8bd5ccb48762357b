package auth

import "time"

// Credential is the minimal projection needed to authenticate a user.
type Credential struct {
	UserID       int64
	Email        string
	PasswordHash string
	Role         string
}

// Token is an issued access token with its expiry.
type Token struct {
	Value     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}
