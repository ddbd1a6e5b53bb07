package infrastructure

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	financeErrors "github.com/sebuszqo/FinanceLedger/internal/finance/errors"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx, so queries can run inside or outside a unit of work.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const (
	pgUniqueViolation      = "23505"
	pgForeignKeyViolation  = "23503"
	pgNumericOutOfRange    = "22003"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

// translateError maps the Postgres errors the ledger cares about onto domain errors.
// entity and id describe the row a foreign key violation is reported against; when
// entity is empty it is derived from the violated constraint.
func translateError(err error, entity string, id any) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgSerializationFailure, pgDeadlockDetected:
		return financeErrors.NewConcurrentUpdateConflict(err)
	case pgForeignKeyViolation:
		if entity == "" {
			return &financeErrors.ReferentialIntegrityError{Entity: referencedEntity(pgErr.ConstraintName)}
		}
		return financeErrors.NewMissingReferenceError(entity, id)
	case pgNumericOutOfRange:
		return financeErrors.NewFieldValidationError("amount", "Ensure the resulting balance stays within the supported range.")
	}
	return err
}

// translateInsertError also treats a primary key clash as a lost race: another writer
// created the same row first, and a retry will find it.
func translateInsertError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation && strings.HasSuffix(pgErr.ConstraintName, "_pkey") {
		return financeErrors.NewConcurrentUpdateConflict(err)
	}
	return translateError(err, "", nil)
}

// translateDeleteError reports a foreign key violation on delete as "still referenced".
func translateDeleteError(err error, entity string, id any) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
		return financeErrors.NewReferenceInUseError(entity, id)
	}
	return translateError(err, entity, id)
}

// referencedEntity names the table a foreign key points at, from the default
// <table>_<column>_fkey constraint names.
func referencedEntity(constraint string) string {
	switch {
	case strings.Contains(constraint, "account_id"):
		return "account"
	case strings.Contains(constraint, "category_id"):
		return "category"
	case strings.Contains(constraint, "user_id"),
		strings.Contains(constraint, "created_by"),
		strings.Contains(constraint, "updated_by"):
		return "user"
	}
	return "reference"
}
