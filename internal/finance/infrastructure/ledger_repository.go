package infrastructure

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/sebuszqo/FinanceLedger/internal/finance/domain"
	"github.com/sebuszqo/FinanceLedger/internal/log"
	"github.com/shopspring/decimal"
)

const transactionColumns = `id, user_id, account_id, category_id, date, description, amount, action,
        tax_deduction, created_at, created_by, updated_at, updated_by`

type LedgerRepository struct {
	db     *sql.DB
	logger *log.Logger
}

func NewLedgerRepository(db *sql.DB, logger *log.Logger) *LedgerRepository {
	return &LedgerRepository{db: db, logger: logger.WithComponent(log.ComponentStorage)}
}

func (r *LedgerRepository) WithinTransaction(ctx context.Context, fn func(tx domain.LedgerTx) error) error {
	return r.run(ctx, nil, fn)
}

func (r *LedgerRepository) ReadSnapshot(ctx context.Context, fn func(tx domain.LedgerTx) error) error {
	return r.run(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}, fn)
}

func (r *LedgerRepository) run(ctx context.Context, opts *sql.TxOptions, fn func(tx domain.LedgerTx) error) (err error) {
	tx, err := r.db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			r.safeRollback(ctx, tx)
			panic(p)
		}
		if err != nil {
			r.safeRollback(ctx, tx)
			return
		}
		if commitErr := tx.Commit(); commitErr != nil {
			err = translateError(fmt.Errorf("commit transaction: %w", commitErr), "", nil)
		}
	}()

	return fn(&ledgerTx{tx: tx})
}

func (r *LedgerRepository) safeRollback(ctx context.Context, tx *sql.Tx) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		r.logger.ErrorContext(ctx, "error during transaction rollback", log.FieldError, err.Error())
	}
}

func (r *LedgerRepository) FindBalance(ctx context.Context, accountID int) (*domain.Balance, error) {
	balance := &domain.Balance{}
	err := r.db.QueryRowContext(ctx,
		`SELECT account_id, value, updated_at FROM balances WHERE account_id = $1`, accountID,
	).Scan(&balance.AccountID, &balance.Value, &balance.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find balance for account %d: %w", accountID, err)
	}
	return balance, nil
}

func (r *LedgerRepository) FindBalances(ctx context.Context) ([]domain.AccountBalance, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT a.id, a.name, a.abbreviation, a.icon, a.is_active, b.value, b.updated_at
        FROM balances b
        JOIN accounts a ON a.id = b.account_id
        ORDER BY a.name, a.id`)
	if err != nil {
		return nil, fmt.Errorf("list balances: %w", err)
	}
	defer rows.Close()

	balances := []domain.AccountBalance{}
	for rows.Next() {
		var b domain.AccountBalance
		if err := rows.Scan(&b.Account.ID, &b.Account.Name, &b.Account.Abbreviation, &b.Account.Icon,
			&b.Account.IsActive, &b.Value, &b.UpdatedAt); err != nil {
			return nil, err
		}
		balances = append(balances, b)
	}
	return balances, rows.Err()
}

type ledgerTx struct {
	tx *sql.Tx
}

func (l *ledgerTx) AccountExists(ctx context.Context, accountID int) (bool, error) {
	var exists bool
	query := "SELECT EXISTS(SELECT 1 FROM accounts WHERE id = $1)"
	err := l.tx.QueryRowContext(ctx, query, accountID).Scan(&exists)
	if err != nil {
		return false, translateError(err, "", nil)
	}
	return exists, nil
}

func (l *ledgerTx) CategoryExists(ctx context.Context, categoryID int) (bool, error) {
	var exists bool
	query := "SELECT EXISTS(SELECT 1 FROM categories WHERE id = $1)"
	err := l.tx.QueryRowContext(ctx, query, categoryID).Scan(&exists)
	if err != nil {
		return false, translateError(err, "", nil)
	}
	return exists, nil
}

func (l *ledgerTx) LockTransaction(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	row := l.tx.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = $1 FOR UPDATE`, transactionID)
	transaction, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, translateError(fmt.Errorf("lock transaction %s: %w", transactionID, err), "", nil)
	}
	return transaction, nil
}

func (l *ledgerTx) InsertTransaction(ctx context.Context, t domain.Transaction) error {
	_, err := l.tx.ExecContext(ctx, `
        INSERT INTO transactions (`+transactionColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		t.ID, t.UserID, t.AccountID, t.CategoryID, t.Date, t.Description, t.Amount, int(t.Direction),
		t.TaxDeduction, t.CreatedAt, t.CreatedBy, t.UpdatedAt, t.UpdatedBy,
	)
	if err != nil {
		return translateInsertError(fmt.Errorf("insert transaction %s: %w", t.ID, err))
	}
	return nil
}

func (l *ledgerTx) UpdateTransaction(ctx context.Context, t domain.Transaction) error {
	_, err := l.tx.ExecContext(ctx, `
        UPDATE transactions
        SET account_id = $1, category_id = $2, date = $3, description = $4, amount = $5,
            action = $6, tax_deduction = $7, updated_at = $8, updated_by = $9
        WHERE id = $10`,
		t.AccountID, t.CategoryID, t.Date, t.Description, t.Amount,
		int(t.Direction), t.TaxDeduction, t.UpdatedAt, t.UpdatedBy, t.ID,
	)
	if err != nil {
		return translateError(fmt.Errorf("update transaction %s: %w", t.ID, err), "", nil)
	}
	return nil
}

func (l *ledgerTx) DeleteTransaction(ctx context.Context, transactionID string) error {
	_, err := l.tx.ExecContext(ctx, `DELETE FROM transactions WHERE id = $1`, transactionID)
	if err != nil {
		return translateError(fmt.Errorf("delete transaction %s: %w", transactionID, err), "", nil)
	}
	return nil
}

// ApplyBalanceDelta is a single atomic upsert, so concurrent writers never lose an increment.
func (l *ledgerTx) ApplyBalanceDelta(ctx context.Context, accountID int, delta decimal.Decimal, at time.Time) error {
	_, err := l.tx.ExecContext(ctx, `
        INSERT INTO balances (account_id, value, updated_at)
        VALUES ($1, $2, $3)
        ON CONFLICT (account_id) DO UPDATE
        SET value = balances.value + EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
		accountID, delta, at,
	)
	if err != nil {
		return translateError(fmt.Errorf("apply balance delta to account %d: %w", accountID, err), "account", accountID)
	}
	return nil
}

func (l *ledgerTx) LockLedger(ctx context.Context) error {
	if _, err := l.tx.ExecContext(ctx, `LOCK TABLE transactions, balances IN SHARE ROW EXCLUSIVE MODE`); err != nil {
		return translateError(fmt.Errorf("lock ledger: %w", err), "", nil)
	}
	return nil
}

func (l *ledgerTx) SumContributions(ctx context.Context) (map[int]decimal.Decimal, error) {
	rows, err := l.tx.QueryContext(ctx,
		`SELECT account_id, SUM(amount * action) FROM transactions GROUP BY account_id`)
	if err != nil {
		return nil, translateError(fmt.Errorf("sum contributions: %w", err), "", nil)
	}
	defer rows.Close()

	sums := make(map[int]decimal.Decimal)
	for rows.Next() {
		var accountID int
		var sum decimal.Decimal
		if err := rows.Scan(&accountID, &sum); err != nil {
			return nil, err
		}
		sums[accountID] = sum
	}
	return sums, rows.Err()
}

func (l *ledgerTx) ListBalances(ctx context.Context) ([]domain.Balance, error) {
	rows, err := l.tx.QueryContext(ctx, `SELECT account_id, value, updated_at FROM balances ORDER BY account_id`)
	if err != nil {
		return nil, translateError(fmt.Errorf("list balances: %w", err), "", nil)
	}
	defer rows.Close()

	var balances []domain.Balance
	for rows.Next() {
		var b domain.Balance
		if err := rows.Scan(&b.AccountID, &b.Value, &b.UpdatedAt); err != nil {
			return nil, err
		}
		balances = append(balances, b)
	}
	return balances, rows.Err()
}

func (l *ledgerTx) ReplaceBalances(ctx context.Context, values map[int]decimal.Decimal, at time.Time) error {
	if _, err := l.tx.ExecContext(ctx, `UPDATE balances SET value = 0, updated_at = $1`, at); err != nil {
		return translateError(fmt.Errorf("reset balances: %w", err), "", nil)
	}

	accountIDs := make([]int, 0, len(values))
	for accountID := range values {
		accountIDs = append(accountIDs, accountID)
	}
	sort.Ints(accountIDs)

	for _, accountID := range accountIDs {
		_, err := l.tx.ExecContext(ctx, `
            INSERT INTO balances (account_id, value, updated_at)
            VALUES ($1, $2, $3)
            ON CONFLICT (account_id) DO UPDATE
            SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
			accountID, values[accountID], at,
		)
		if err != nil {
			return translateError(fmt.Errorf("replace balance of account %d: %w", accountID, err), "account", accountID)
		}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (*domain.Transaction, error) {
	var t domain.Transaction
	var action int
	err := row.Scan(&t.ID, &t.UserID, &t.AccountID, &t.CategoryID, &t.Date, &t.Description, &t.Amount, &action,
		&t.TaxDeduction, &t.CreatedAt, &t.CreatedBy, &t.UpdatedAt, &t.UpdatedBy)
	if err != nil {
		return nil, err
	}
	t.Direction = domain.Direction(action)
	return &t, nil
}
