package infrastructure

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/sebuszqo/FinanceLedger/internal/finance/domain"
	financeErrors "github.com/sebuszqo/FinanceLedger/internal/finance/errors"
)

type TransactionRepository struct {
	db DBTX
}

func NewTransactionRepository(db DBTX) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = $1`, transactionID)
	transaction, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, financeErrors.ErrTransactionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find transaction %s: %w", transactionID, err)
	}
	return transaction, nil
}

func (r *TransactionRepository) FindTransactions(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	var conditions []string
	var args []any

	addCondition := func(clause string, value any) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(clause, len(args)))
	}

	if filter.UserID != "" {
		addCondition("user_id = $%d", filter.UserID)
	}
	if filter.AccountID != nil {
		addCondition("account_id = $%d", *filter.AccountID)
	}
	if filter.StartDate != nil {
		addCondition("date >= $%d", *filter.StartDate)
	}
	if filter.EndDate != nil {
		addCondition("date <= $%d", *filter.EndDate)
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	limit, offset := pagination(filter.Limit, filter.Page)
	args = append(args, limit, offset)
	query += fmt.Sprintf(" ORDER BY date DESC, created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	transactions := []domain.Transaction{}
	for rows.Next() {
		transaction, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, *transaction)
	}
	return transactions, rows.Err()
}

// pagination turns a filter's limit and page into LIMIT and OFFSET values, clamping
// both so the offset can never overflow.
func pagination(limit, page int) (int, int) {
	if limit <= 0 {
		limit = domain.DefaultTransactionLimit
	}
	if limit > domain.MaxTransactionLimit {
		limit = domain.MaxTransactionLimit
	}
	if page <= 0 {
		page = 1
	}
	if page > domain.MaxTransactionPage {
		page = domain.MaxTransactionPage
	}
	return limit, (page - 1) * limit
}
