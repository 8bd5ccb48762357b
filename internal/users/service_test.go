package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/inkwell-press/inkwell/internal/affiliate"
	"github.com/inkwell-press/inkwell/internal/shared"
)

type memoryUserRepo struct {
	users map[int64]*User
}

func (r *memoryUserRepo) FindByID(ctx context.Context, id int64) (*User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memoryUserRepo) ListUsers(ctx context.Context) ([]User, error) {
	var out []User
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, nil
}

func (r *memoryUserRepo) UpdateRole(ctx context.Context, id int64, role string) (*User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	u.Role = role
	cp := *u
	return &cp, nil
}

type capturingRegistrar struct {
	draft        affiliate.AccountDraft
	referrerCode string
}

func (r *capturingRegistrar) Register(ctx context.Context, draft affiliate.AccountDraft, referrerCode string) (*affiliate.Account, error) {
	r.draft = draft
	r.referrerCode = referrerCode
	return &affiliate.Account{ID: 1, Email: draft.Email, Username: draft.Username, ReferralCode: "NEW00001", ReferredBy: referrerCode}, nil
}

func TestRegisterHashesPasswordAndLinksReferrer(t *testing.T) {
	registrar := &capturingRegistrar{}
	svc := NewService(&memoryUserRepo{users: map[int64]*User{}}, registrar)

	account, err := svc.Register(context.Background(), RegisterInput{
		Email:        "new@example.com",
		Username:     "new",
		Password:     "hunter2hunter2",
		ReferralCode: "REF00001",
	})
	require.NoError(t, err)
	require.Equal(t, "REF00001", account.ReferredBy)
	require.Equal(t, "REF00001", registrar.referrerCode)
	require.Equal(t, RoleSubscriber, registrar.draft.Role)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(registrar.draft.PasswordHash), []byte("hunter2hunter2")))
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	svc := NewService(&memoryUserRepo{users: map[int64]*User{}}, &capturingRegistrar{})

	_, err := svc.Register(context.Background(), RegisterInput{Email: "a@example.com", Username: "a", Password: "short"})
	require.Error(t, err)
}

func TestChangeRoleValidatesRole(t *testing.T) {
	repo := &memoryUserRepo{users: map[int64]*User{7: {ID: 7, Role: RoleSubscriber}}}
	svc := NewService(repo, &capturingRegistrar{})

	_, err := svc.ChangeRole(context.Background(), 7, "owner")
	require.Error(t, err)

	user, err := svc.ChangeRole(context.Background(), 7, RoleAuthor)
	require.NoError(t, err)
	require.Equal(t, RoleAuthor, user.Role)
}
