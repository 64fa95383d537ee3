package services

import (
	"context"
	"errors"
	"strings"

	"github.com/minbank/ledger-service/internal/models"
	repo "github.com/minbank/ledger-service/internal/repository"
)

type AccountService struct {
	accounts       repo.Accounts
	openingBalance int64
}

func NewAccountService(a repo.Accounts, openingBalance int64) *AccountService {
	return &AccountService{accounts: a, openingBalance: openingBalance}
}

// Open creates a standard account with the deployment's opening balance.
func (s *AccountService) Open(ctx context.Context, username string) (models.Account, error) {
	acc := models.Account{
		Username: strings.TrimSpace(username),
		Balance:  s.openingBalance,
		Role:     models.RoleStandard,
	}
	if err := acc.Validate(); err != nil {
		return models.Account{}, err
	}
	return s.accounts.Create(ctx, acc)
}

func (s *AccountService) Get(ctx context.Context, username string) (models.Account, error) {
	acc, ok, err := s.accounts.Get(ctx, username)
	if err != nil {
		return models.Account{}, err
	}
	if !ok {
		return models.Account{}, models.ErrAccountNotFound
	}
	return acc, nil
}

func (s *AccountService) List(ctx context.Context) ([]models.Account, error) {
	return s.accounts.List(ctx)
}

// EnsureSystemAccount seeds the privileged treasury account used to
// issue funds. Idempotent across restarts.
func (s *AccountService) EnsureSystemAccount(ctx context.Context, username string) error {
	_, ok, err := s.accounts.Get(ctx, username)
	if err != nil || ok {
		return err
	}
	_, err = s.accounts.Create(ctx, models.Account{
		Username: username,
		Balance:  0,
		Role:     models.RolePrivileged,
	})
	if errors.Is(err, models.ErrAccountExists) {
		// lost the race to another instance, account is there
		return nil
	}
	return err
}
