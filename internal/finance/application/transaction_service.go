package application

import (
	"context"

	"github.com/google/uuid"
	"github.com/sebuszqo/FinanceLedger/internal/finance/domain"
	financeErrors "github.com/sebuszqo/FinanceLedger/internal/finance/errors"
)

// UserDirectory resolves user ids to the login shown next to a transaction.
type UserDirectory interface {
	DisplayNames(ctx context.Context, userIDs []string) (map[string]string, error)
}

// TransactionView is a transaction as exposed to API clients.
type TransactionView struct {
	domain.Transaction
	CreatedByName string `json:"created_by"`
	UpdatedByName string `json:"updated_by"`
}

type TransactionService struct {
	repo  domain.TransactionRepository
	users UserDirectory
}

func NewTransactionService(repo domain.TransactionRepository, users UserDirectory) *TransactionService {
	return &TransactionService{repo: repo, users: users}
}

// ListTransactions returns the transactions visible to the actor. Actors without
// the view-all capability only see their own.
func (s *TransactionService) ListTransactions(ctx context.Context, actor domain.Actor, filter domain.TransactionFilter) ([]TransactionView, error) {
	if actor.UserID == "" {
		return nil, financeErrors.NewPermissionDenied("list transactions without an authenticated user")
	}
	if !actor.CanViewAll {
		filter.UserID = actor.UserID
	}
	if filter.StartDate != nil && filter.EndDate != nil && filter.StartDate.After(*filter.EndDate) {
		return nil, financeErrors.NewFieldValidationError("start_date", "start_date must not be after end_date")
	}

	transactions, err := s.repo.FindTransactions(ctx, filter)
	if err != nil {
		return nil, err
	}
	return s.describe(ctx, transactions)
}

func (s *TransactionService) GetTransaction(ctx context.Context, actor domain.Actor, transactionID string) (*TransactionView, error) {
	if _, err := uuid.Parse(transactionID); err != nil {
		return nil, financeErrors.ErrTransactionNotFound
	}
	transaction, err := s.repo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccess(transaction.UserID) {
		return nil, financeErrors.NewPermissionDenied("view a transaction owned by another user")
	}

	views, err := s.describe(ctx, []domain.Transaction{*transaction})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// Describe attaches display names to a single transaction, typically one just written by the ledger.
func (s *TransactionService) Describe(ctx context.Context, transaction domain.Transaction) (*TransactionView, error) {
	views, err := s.describe(ctx, []domain.Transaction{transaction})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *TransactionService) describe(ctx context.Context, transactions []domain.Transaction) ([]TransactionView, error) {
	seen := make(map[string]struct{})
	var userIDs []string
	for _, t := range transactions {
		for _, id := range []string{t.CreatedBy, t.UpdatedBy} {
			if _, ok := seen[id]; ok || id == "" {
				continue
			}
			seen[id] = struct{}{}
			userIDs = append(userIDs, id)
		}
	}

	names := map[string]string{}
	if s.users != nil && len(userIDs) > 0 {
		var err error
		names, err = s.users.DisplayNames(ctx, userIDs)
		if err != nil {
			return nil, err
		}
	}

	views := make([]TransactionView, 0, len(transactions))
	for _, t := range transactions {
		views = append(views, TransactionView{
			Transaction:   t,
			CreatedByName: names[t.CreatedBy],
			UpdatedByName: names[t.UpdatedBy],
		})
	}
	return views, nil
}
