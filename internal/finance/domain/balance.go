package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type Balance struct {
	AccountID int             `json:"account_id"`
	Value     decimal.Decimal `json:"value"`
	UpdatedAt time.Time       `json:"updated"`
}

// AccountBalance is a materialized balance together with the account it belongs to.
type AccountBalance struct {
	Account   Account         `json:"account"`
	Value     decimal.Decimal `json:"value"`
	UpdatedAt time.Time       `json:"updated"`
}

// BalanceDrift describes an account whose materialized balance disagrees with
// the sum of its transaction contributions.
type BalanceDrift struct {
	AccountID  int             `json:"account_id"`
	Expected   decimal.Decimal `json:"expected"`
	Actual     decimal.Decimal `json:"actual"`
	Difference decimal.Decimal `json:"difference"`
}

// BalanceChange is emitted for every balance touched by a committed ledger write.
type BalanceChange struct {
	AccountID     int             `json:"account_id"`
	TransactionID string          `json:"transaction_id"`
	Operation     string          `json:"operation"`
	Delta         decimal.Decimal `json:"delta"`
	ActorID       string          `json:"actor_id"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

// LedgerRepository owns transactions and balances. Every write goes through
// WithinTransaction so that a transaction row and its balance deltas commit together.
type LedgerRepository interface {
	WithinTransaction(ctx context.Context, fn func(tx LedgerTx) error) error
	// ReadSnapshot runs fn in a read-only unit of work that sees one consistent snapshot.
	ReadSnapshot(ctx context.Context, fn func(tx LedgerTx) error) error
	FindBalance(ctx context.Context, accountID int) (*Balance, error)
	FindBalances(ctx context.Context) ([]AccountBalance, error)
}

// LedgerTx is the unit of work handed to WithinTransaction and ReadSnapshot.
type LedgerTx interface {
	AccountExists(ctx context.Context, accountID int) (bool, error)
	CategoryExists(ctx context.Context, categoryID int) (bool, error)
	// LockTransaction returns the current row under a write lock, or nil when absent.
	LockTransaction(ctx context.Context, transactionID string) (*Transaction, error)
	InsertTransaction(ctx context.Context, transaction Transaction) error
	UpdateTransaction(ctx context.Context, transaction Transaction) error
	DeleteTransaction(ctx context.Context, transactionID string) error
	// ApplyBalanceDelta adds delta to the account balance, creating it at zero first if needed.
	ApplyBalanceDelta(ctx context.Context, accountID int, delta decimal.Decimal, at time.Time) error

	// LockLedger blocks concurrent transaction writes until the unit of work ends.
	LockLedger(ctx context.Context) error
	// SumContributions recomputes Σ amount*direction per account from the stored transactions.
	SumContributions(ctx context.Context) (map[int]decimal.Decimal, error)
	ListBalances(ctx context.Context) ([]Balance, error)
	// ReplaceBalances overwrites every balance; accounts missing from values are reset to zero.
	ReplaceBalances(ctx context.Context, values map[int]decimal.Decimal, at time.Time) error
}
