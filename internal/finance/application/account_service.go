package application

import (
	"context"

	"github.com/sebuszqo/FinanceLedger/internal/finance/domain"
)

type AccountService struct {
	repo domain.AccountRepository
}

func NewAccountService(repo domain.AccountRepository) *AccountService {
	return &AccountService{repo: repo}
}

func (s *AccountService) GetActiveAccounts(ctx context.Context) ([]domain.Account, error) {
	return s.repo.FindActive(ctx)
}

func (s *AccountService) GetAccount(ctx context.Context, accountID int) (*domain.Account, error) {
	return s.repo.FindAccountByID(ctx, accountID)
}

func (s *AccountService) CreateAccount(ctx context.Context, name, abbreviation string, icon *string) (*domain.Account, error) {
	account := &domain.Account{
		Name:         name,
		Abbreviation: abbreviation,
		Icon:         icon,
		IsActive:     true,
	}
	if err := account.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.CreateAccount(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

func (s *AccountService) DeactivateAccount(ctx context.Context, accountID int) error {
	return s.repo.SetAccountActive(ctx, accountID, false)
}

// DeleteAccount fails with a ReferentialIntegrityError while any transaction references the account.
func (s *AccountService) DeleteAccount(ctx context.Context, accountID int) error {
	return s.repo.DeleteAccount(ctx, accountID)
}
