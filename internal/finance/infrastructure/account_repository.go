package infrastructure

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sebuszqo/FinanceLedger/internal/finance/domain"
	financeErrors "github.com/sebuszqo/FinanceLedger/internal/finance/errors"
)

type AccountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) FindActive(ctx context.Context) ([]domain.Account, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, abbreviation, icon, is_active FROM accounts WHERE is_active = TRUE ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	accounts := []domain.Account{}
	for rows.Next() {
		var account domain.Account
		if err := rows.Scan(&account.ID, &account.Name, &account.Abbreviation, &account.Icon, &account.IsActive); err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

func (r *AccountRepository) FindAccountByID(ctx context.Context, accountID int) (*domain.Account, error) {
	account := &domain.Account{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, abbreviation, icon, is_active FROM accounts WHERE id = $1`, accountID,
	).Scan(&account.ID, &account.Name, &account.Abbreviation, &account.Icon, &account.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, financeErrors.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find account %d: %w", accountID, err)
	}
	return account, nil
}

func (r *AccountRepository) CreateAccount(ctx context.Context, account *domain.Account) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO accounts (name, abbreviation, icon, is_active) VALUES ($1, $2, $3, $4) RETURNING id`,
		account.Name, account.Abbreviation, account.Icon, account.IsActive,
	).Scan(&account.ID)
	if err != nil {
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

func (r *AccountRepository) SetAccountActive(ctx context.Context, accountID int, active bool) error {
	result, err := r.db.ExecContext(ctx, `UPDATE accounts SET is_active = $1 WHERE id = $2`, active, accountID)
	if err != nil {
		return fmt.Errorf("set account %d active: %w", accountID, err)
	}
	return requireAffected(result, financeErrors.ErrAccountNotFound)
}

// DeleteAccount removes an account no transaction references. A zero balance row
// left behind by deleted transactions is removed with it.
func (r *AccountRepository) DeleteAccount(ctx context.Context, accountID int) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM balances WHERE account_id = $1 AND value = 0`, accountID); err != nil {
		return fmt.Errorf("delete balance of account %d: %w", accountID, err)
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM accounts WHERE id = $1`, accountID)
	if err != nil {
		return translateDeleteError(err, "account", accountID)
	}
	return requireAffected(result, financeErrors.ErrAccountNotFound)
}

func requireAffected(result sql.Result, notFound error) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return notFound
	}
	return nil
}
