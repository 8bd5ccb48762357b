package users

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/inkwell-press/inkwell/internal/affiliate"
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	FindByID(ctx context.Context, id int64) (*User, error)
	ListUsers(ctx context.Context) ([]User, error)
	UpdateRole(ctx context.Context, id int64, role string) (*User, error)
}

// ReferralRegistrar creates the account record and links it to its referrer.
type ReferralRegistrar interface {
	Register(ctx context.Context, draft affiliate.AccountDraft, referrerCode string) (*affiliate.Account, error)
}

// Service handles user business logic.
type Service struct {
	repo      RepositoryPort
	registrar ReferralRegistrar
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, registrar ReferralRegistrar) *Service {
	return &Service{repo: repo, registrar: registrar}
}

// Register creates a new account. When input carries a referral code the
// account is linked to its referrer; an unknown code rejects the signup.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*affiliate.Account, error) {
	if input.Email == "" {
		return nil, errors.New("email required")
	}
	if len(input.Password) < 8 {
		return nil, errors.New("password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("users: hash password: %w", err)
	}

	draft := affiliate.AccountDraft{
		Email:        input.Email,
		Username:     input.Username,
		PasswordHash: string(hash),
		Role:         RoleSubscriber,
	}
	return s.registrar.Register(ctx, draft, input.ReferralCode)
}

// GetProfile returns a user's own record.
func (s *Service) GetProfile(ctx context.Context, id int64) (*User, error) {
	return s.repo.FindByID(ctx, id)
}

// ListUsers returns all users.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	return s.repo.ListUsers(ctx)
}

// ChangeRole assigns a new role to a user.
func (s *Service) ChangeRole(ctx context.Context, id int64, role string) (*User, error) {
	switch role {
	case RoleAdmin, RoleAuthor, RoleSubscriber:
	default:
		return nil, fmt.Errorf("users: unknown role %q", role)
	}
	return s.repo.UpdateRole(ctx, id, role)
}
