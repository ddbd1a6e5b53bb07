package infrastructure

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	financeErrors "github.com/sebuszqo/FinanceLedger/internal/finance/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wrapped(pgErr *pgconn.PgError) error {
	return fmt.Errorf("insert transaction 4d8a3b8e: %w", pgErr)
}

func TestTranslateError_ForeignKeyNamesReferencedEntity(t *testing.T) {
	tests := []struct {
		constraint string
		entity     string
	}{
		{constraint: "transactions_account_id_fkey", entity: "account"},
		{constraint: "transactions_category_id_fkey", entity: "category"},
		{constraint: "transactions_user_id_fkey", entity: "user"},
		{constraint: "transactions_updated_by_fkey", entity: "user"},
		{constraint: "balances_account_id_fkey", entity: "account"},
		{constraint: "some_other_fkey", entity: "reference"},
	}

	for _, tt := range tests {
		t.Run(tt.constraint, func(t *testing.T) {
			err := translateError(wrapped(&pgconn.PgError{
				Code:           pgForeignKeyViolation,
				TableName:      "transactions",
				ConstraintName: tt.constraint,
			}), "", nil)

			var refErr *financeErrors.ReferentialIntegrityError
			require.ErrorAs(t, err, &refErr)
			assert.Equal(t, tt.entity, refErr.Entity)
			assert.False(t, refErr.InUse)
			assert.Equal(t, "referenced "+tt.entity+" does not exist", refErr.Error())
		})
	}
}

func TestTranslateError_ExplicitEntity(t *testing.T) {
	err := translateError(wrapped(&pgconn.PgError{Code: pgForeignKeyViolation}), "account", 7)

	assert.EqualError(t, err, "account 7 does not exist")
}

func TestTranslateError_NumericOutOfRange(t *testing.T) {
	err := translateError(wrapped(&pgconn.PgError{Code: pgNumericOutOfRange}), "account", 1)

	assert.True(t, financeErrors.IsValidationError(err))
	assert.Contains(t, err.Error(), "amount:")
}

func TestTranslateError_Conflicts(t *testing.T) {
	for _, code := range []string{pgSerializationFailure, pgDeadlockDetected} {
		err := translateError(wrapped(&pgconn.PgError{Code: code}), "", nil)
		assert.True(t, financeErrors.IsConcurrentUpdateConflict(err), code)
	}

	plain := errors.New("connection reset")
	assert.Same(t, plain, translateError(plain, "", nil))
}

func TestTranslateInsertError(t *testing.T) {
	duplicate := translateInsertError(wrapped(&pgconn.PgError{
		Code:           pgUniqueViolation,
		ConstraintName: "transactions_pkey",
	}))
	assert.True(t, financeErrors.IsConcurrentUpdateConflict(duplicate))

	otherUnique := translateInsertError(wrapped(&pgconn.PgError{
		Code:           pgUniqueViolation,
		ConstraintName: "users_login_key",
	}))
	assert.False(t, financeErrors.IsConcurrentUpdateConflict(otherUnique))

	missing := translateInsertError(wrapped(&pgconn.PgError{
		Code:           pgForeignKeyViolation,
		ConstraintName: "transactions_category_id_fkey",
	}))
	assert.True(t, financeErrors.IsReferentialIntegrityError(missing))
}

func TestTranslateDeleteError(t *testing.T) {
	err := translateDeleteError(wrapped(&pgconn.PgError{Code: pgForeignKeyViolation}), "category", 3)

	var refErr *financeErrors.ReferentialIntegrityError
	require.ErrorAs(t, err, &refErr)
	assert.True(t, refErr.InUse)
}
