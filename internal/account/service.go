package account

import (
	"context"
	"fmt"
)

type Repository interface {
	CreateAccount(ctx context.Context, a *Account) error
	GetAccount(ctx context.Context, id int64) (*Account, error)
	UpdateAccount(ctx context.Context, a *Account) error
	// DeleteAccount removes the account together with its items, layers and
	// balance overrides.
	DeleteAccount(ctx context.Context, id int64) error
	ListAccounts(ctx context.Context) ([]*Account, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, a *Account) (*Account, error) {
	if a.Name == "" {
		return nil, fmt.Errorf("account name is required")
	}

	if err := s.repo.CreateAccount(ctx, a); err != nil {
		return nil, err
	}

	return a, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Account, error) {
	return s.repo.GetAccount(ctx, id)
}

func (s *Service) Update(ctx context.Context, a *Account) error {
	if a.Name == "" {
		return fmt.Errorf("account name is required")
	}

	return s.repo.UpdateAccount(ctx, a)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.DeleteAccount(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*Account, error) {
	return s.repo.ListAccounts(ctx)
}
