package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/inkwell-press/inkwell/internal/shared"
)

type stubRepo struct {
	cred *Credential
}

func (s *stubRepo) FindByEmail(ctx context.Context, email string) (*Credential, error) {
	if s.cred == nil || s.cred.Email != email {
		return nil, shared.ErrNotFound
	}
	return s.cred, nil
}

func newTestService(t *testing.T, password string) (*Service, *Credential) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	cred := &Credential{UserID: 42, Email: "user@example.com", PasswordHash: string(hash), Role: "author"}
	return NewService(&stubRepo{cred: cred}, "test-secret", time.Hour), cred
}

func TestAuthenticate(t *testing.T) {
	svc, _ := newTestService(t, "correct horse")

	cred, err := svc.Authenticate(context.Background(), "user@example.com", "correct horse")
	require.NoError(t, err)
	require.Equal(t, int64(42), cred.UserID)

	_, err = svc.Authenticate(context.Background(), "user@example.com", "wrong")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)

	_, err = svc.Authenticate(context.Background(), "nobody@example.com", "correct horse")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestTokenRoundTrip(t *testing.T) {
	svc, cred := newTestService(t, "correct horse")

	token, err := svc.IssueToken(cred)
	require.NoError(t, err)
	require.NotEmpty(t, token.Value)

	identity, err := svc.ParseToken(token.Value)
	require.NoError(t, err)
	require.Equal(t, int64(42), identity.UserID)
	require.Equal(t, "author", identity.Role)
}

func TestParseTokenRejectsForgedSignature(t *testing.T) {
	svc, cred := newTestService(t, "correct horse")
	other := NewService(&stubRepo{}, "other-secret", time.Hour)

	token, err := svc.IssueToken(cred)
	require.NoError(t, err)

	_, err = other.ParseToken(token.Value)
	require.ErrorIs(t, err, shared.ErrUnauthorized)
}
