package application

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sebuszqo/FinanceLedger/internal/finance/domain"
	financeErrors "github.com/sebuszqo/FinanceLedger/internal/finance/errors"
	"github.com/sebuszqo/FinanceLedger/internal/log"
	"github.com/shopspring/decimal"
)

const (
	defaultMaxRetries   = 3
	defaultRetryBackoff = 20 * time.Millisecond
)

// BalanceEventPublisher is notified once per touched balance after a ledger write commits.
type BalanceEventPublisher interface {
	PublishBalanceChanged(ctx context.Context, change domain.BalanceChange) error
}

// LedgerService records, amends and deletes transactions while keeping every
// account balance equal to the sum of its transaction contributions.
type LedgerService struct {
	ledger       domain.LedgerRepository
	publisher    BalanceEventPublisher
	logger       *log.Logger
	maxRetries   int
	retryBackoff time.Duration
	now          func() time.Time
	newID        func() string
}

type LedgerOption func(*LedgerService)

func WithPublisher(publisher BalanceEventPublisher) LedgerOption {
	return func(s *LedgerService) { s.publisher = publisher }
}

// WithMaxRetries bounds how often an operation is retried after a concurrent update conflict.
func WithMaxRetries(maxRetries int) LedgerOption {
	return func(s *LedgerService) { s.maxRetries = maxRetries }
}

func WithRetryBackoff(backoff time.Duration) LedgerOption {
	return func(s *LedgerService) { s.retryBackoff = backoff }
}

func WithClock(now func() time.Time) LedgerOption {
	return func(s *LedgerService) { s.now = now }
}

func WithIDGenerator(newID func() string) LedgerOption {
	return func(s *LedgerService) { s.newID = newID }
}

func NewLedgerService(ledger domain.LedgerRepository, logger *log.Logger, opts ...LedgerOption) *LedgerService {
	s := &LedgerService{
		ledger:       ledger,
		logger:       logger.WithComponent(log.ComponentLedger),
		maxRetries:   defaultMaxRetries,
		retryBackoff: defaultRetryBackoff,
		now:          func() time.Time { return time.Now().UTC() },
		newID:        uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// balanceDelta is one pending mutation of one account balance.
type balanceDelta struct {
	accountID int
	delta     decimal.Decimal
}

// planBalanceDeltas derives the balance mutations of a write from the row as it was
// before the write (orig, nil for a creation) and the row as it will be after it
// (updated, nil for a deletion). orig must be read before the row is modified.
func planBalanceDeltas(orig, updated *domain.Transaction) []balanceDelta {
	switch {
	case orig == nil && updated == nil:
		return nil
	case orig == nil:
		return []balanceDelta{{accountID: updated.AccountID, delta: updated.Contribution()}}
	case updated == nil:
		return []balanceDelta{{accountID: orig.AccountID, delta: orig.Contribution().Neg()}}
	}

	oldContribution := orig.Contribution()
	newContribution := updated.Contribution()

	if orig.AccountID == updated.AccountID {
		delta := newContribution.Sub(oldContribution)
		if delta.IsZero() {
			return nil
		}
		return []balanceDelta{{accountID: orig.AccountID, delta: delta}}
	}

	deltas := []balanceDelta{
		{accountID: orig.AccountID, delta: oldContribution.Neg()},
		{accountID: updated.AccountID, delta: newContribution},
	}
	// Lock balance rows in a stable order so two transfers cannot deadlock each other.
	sort.Slice(deltas, func(i, j int) bool { return deltas[i].accountID < deltas[j].accountID })
	return deltas
}

func (s *LedgerService) applyDeltas(ctx context.Context, tx domain.LedgerTx, deltas []balanceDelta, at time.Time) error {
	for _, d := range deltas {
		if err := tx.ApplyBalanceDelta(ctx, d.accountID, d.delta, at); err != nil {
			return err
		}
	}
	return nil
}

func checkReferences(ctx context.Context, tx domain.LedgerTx, fields domain.TransactionFields) error {
	exists, err := tx.AccountExists(ctx, fields.AccountID)
	if err != nil {
		return err
	}
	if !exists {
		return financeErrors.NewMissingReferenceError("account", fields.AccountID)
	}
	exists, err = tx.CategoryExists(ctx, fields.CategoryID)
	if err != nil {
		return err
	}
	if !exists {
		return financeErrors.NewMissingReferenceError("category", fields.CategoryID)
	}
	return nil
}

func requireActor(actor domain.Actor, action string) error {
	if actor.UserID == "" {
		return financeErrors.NewPermissionDenied(action + " without an authenticated user")
	}
	return nil
}

// Record stores a new transaction and applies its full contribution to its account balance.
func (s *LedgerService) Record(ctx context.Context, actor domain.Actor, fields domain.TransactionFields) (*domain.Transaction, error) {
	if err := requireActor(actor, "record transaction"); err != nil {
		return nil, err
	}
	if err := fields.Validate(); err != nil {
		return nil, err
	}

	id := s.newID()
	var recorded domain.Transaction
	var deltas []balanceDelta

	err := s.runWithRetry(ctx, log.OpRecord, func(tx domain.LedgerTx) error {
		var err error
		recorded, deltas, err = s.create(ctx, tx, actor, id, fields)
		return err
	})
	if err != nil {
		s.logger.OperationError(ctx, log.OpRecord, err, log.FieldUserID, actor.UserID)
		return nil, err
	}

	s.logger.InfoContext(ctx, "transaction recorded",
		log.FieldTransactionID, recorded.ID,
		log.FieldAccountID, recorded.AccountID,
		log.FieldDelta, recorded.Contribution().String(),
	)
	s.publish(ctx, log.OpRecord, recorded.ID, actor, deltas)
	return &recorded, nil
}

func (s *LedgerService) create(ctx context.Context, tx domain.LedgerTx, actor domain.Actor, id string, fields domain.TransactionFields) (domain.Transaction, []balanceDelta, error) {
	if err := checkReferences(ctx, tx, fields); err != nil {
		return domain.Transaction{}, nil, err
	}

	now := s.now()
	transaction := domain.Transaction{
		ID:        id,
		UserID:    actor.UserID,
		CreatedAt: now,
		CreatedBy: actor.UserID,
		UpdatedAt: now,
		UpdatedBy: actor.UserID,
	}
	transaction.Apply(fields)

	if err := tx.InsertTransaction(ctx, transaction); err != nil {
		return domain.Transaction{}, nil, err
	}
	deltas := planBalanceDeltas(nil, &transaction)
	if err := s.applyDeltas(ctx, tx, deltas, now); err != nil {
		return domain.Transaction{}, nil, err
	}
	return transaction, deltas, nil
}

// Amend replaces the mutable fields of a transaction and moves the difference
// between its old and new contribution into the affected balances. An unknown id
// records a new transaction under that id.
func (s *LedgerService) Amend(ctx context.Context, actor domain.Actor, transactionID string, amendment domain.Amendment) (*domain.Transaction, error) {
	if err := requireActor(actor, "amend transaction"); err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(transactionID); err != nil {
		return nil, financeErrors.ErrTransactionNotFound
	}
	if err := amendment.Validate(); err != nil {
		return nil, err
	}

	var amended domain.Transaction
	var deltas []balanceDelta

	err := s.runWithRetry(ctx, log.OpAmend, func(tx domain.LedgerTx) error {
		orig, err := tx.LockTransaction(ctx, transactionID)
		if err != nil {
			return err
		}
		if orig == nil {
			amended, deltas, err = s.create(ctx, tx, actor, transactionID, amendment)
			return err
		}
		if !actor.CanAccess(orig.UserID) {
			return financeErrors.NewPermissionDenied("amend a transaction owned by another user")
		}
		if err := checkReferences(ctx, tx, amendment); err != nil {
			return err
		}

		now := s.now()
		updated := *orig
		updated.Apply(amendment)
		updated.UpdatedAt = now
		updated.UpdatedBy = actor.UserID

		deltas = planBalanceDeltas(orig, &updated)
		if err := s.applyDeltas(ctx, tx, deltas, now); err != nil {
			return err
		}
		if err := tx.UpdateTransaction(ctx, updated); err != nil {
			return err
		}
		amended = updated
		return nil
	})
	if err != nil {
		s.logger.OperationError(ctx, log.OpAmend, err, log.FieldTransactionID, transactionID, log.FieldUserID, actor.UserID)
		return nil, err
	}

	s.logger.InfoContext(ctx, "transaction amended",
		log.FieldTransactionID, amended.ID,
		log.FieldAccountID, amended.AccountID,
		"balance_writes", len(deltas),
	)
	s.publish(ctx, log.OpAmend, amended.ID, actor, deltas)
	return &amended, nil
}

// Delete removes a transaction and reverses its contribution.
func (s *LedgerService) Delete(ctx context.Context, actor domain.Actor, transactionID string) error {
	if err := requireActor(actor, "delete transaction"); err != nil {
		return err
	}
	if _, err := uuid.Parse(transactionID); err != nil {
		return financeErrors.ErrTransactionNotFound
	}

	var deltas []balanceDelta
	err := s.runWithRetry(ctx, log.OpDelete, func(tx domain.LedgerTx) error {
		orig, err := tx.LockTransaction(ctx, transactionID)
		if err != nil {
			return err
		}
		if orig == nil {
			return financeErrors.ErrTransactionNotFound
		}
		if !actor.CanAccess(orig.UserID) {
			return financeErrors.NewPermissionDenied("delete a transaction owned by another user")
		}

		deltas = planBalanceDeltas(orig, nil)
		if err := s.applyDeltas(ctx, tx, deltas, s.now()); err != nil {
			return err
		}
		return tx.DeleteTransaction(ctx, transactionID)
	})
	if err != nil {
		s.logger.OperationError(ctx, log.OpDelete, err, log.FieldTransactionID, transactionID, log.FieldUserID, actor.UserID)
		return err
	}

	s.logger.InfoContext(ctx, "transaction deleted", log.FieldTransactionID, transactionID)
	s.publish(ctx, log.OpDelete, transactionID, actor, deltas)
	return nil
}

// ReadBalance returns the materialized balance of an account. An existing account
// without transactions has a zero balance.
func (s *LedgerService) ReadBalance(ctx context.Context, accountID int) (domain.Balance, error) {
	balance, err := s.ledger.FindBalance(ctx, accountID)
	if err != nil {
		return domain.Balance{}, err
	}
	if balance != nil {
		return *balance, nil
	}

	err = s.ledger.ReadSnapshot(ctx, func(tx domain.LedgerTx) error {
		exists, err := tx.AccountExists(ctx, accountID)
		if err != nil {
			return err
		}
		if !exists {
			return financeErrors.ErrAccountNotFound
		}
		return nil
	})
	if err != nil {
		return domain.Balance{}, err
	}
	return domain.Balance{AccountID: accountID, Value: decimal.Zero}, nil
}

func (s *LedgerService) ListBalances(ctx context.Context) ([]domain.AccountBalance, error) {
	return s.ledger.FindBalances(ctx)
}

// VerifyBalances recomputes every balance from the transactions and reports the accounts that drifted.
func (s *LedgerService) VerifyBalances(ctx context.Context) ([]domain.BalanceDrift, error) {
	var drifts []domain.BalanceDrift
	err := s.ledger.ReadSnapshot(ctx, func(tx domain.LedgerTx) error {
		sums, err := tx.SumContributions(ctx)
		if err != nil {
			return err
		}
		balances, err := tx.ListBalances(ctx)
		if err != nil {
			return err
		}
		drifts = computeDrift(sums, balances)
		return nil
	})
	if err != nil {
		s.logger.OperationError(ctx, log.OpVerify, err)
		return nil, err
	}

	for _, drift := range drifts {
		s.logger.WarnContext(ctx, "balance drift detected",
			log.FieldOperation, log.OpVerify,
			log.FieldAccountID, drift.AccountID,
			"expected", drift.Expected.String(),
			"actual", drift.Actual.String(),
		)
	}
	return drifts, nil
}

// RebuildBalances recomputes every balance from scratch while transaction writes
// are blocked. It returns the drift that was repaired.
func (s *LedgerService) RebuildBalances(ctx context.Context) ([]domain.BalanceDrift, error) {
	var drifts []domain.BalanceDrift
	err := s.runWithRetry(ctx, log.OpRebuild, func(tx domain.LedgerTx) error {
		if err := tx.LockLedger(ctx); err != nil {
			return err
		}
		sums, err := tx.SumContributions(ctx)
		if err != nil {
			return err
		}
		balances, err := tx.ListBalances(ctx)
		if err != nil {
			return err
		}
		drifts = computeDrift(sums, balances)
		return tx.ReplaceBalances(ctx, sums, s.now())
	})
	if err != nil {
		s.logger.OperationError(ctx, log.OpRebuild, err)
		return nil, err
	}
	s.logger.InfoContext(ctx, "balances rebuilt", log.FieldOperation, log.OpRebuild, "repaired", len(drifts))
	return drifts, nil
}

func computeDrift(sums map[int]decimal.Decimal, balances []domain.Balance) []domain.BalanceDrift {
	actual := make(map[int]decimal.Decimal, len(balances))
	for _, b := range balances {
		actual[b.AccountID] = b.Value
	}

	accountIDs := make([]int, 0, len(sums)+len(actual))
	for accountID := range sums {
		accountIDs = append(accountIDs, accountID)
	}
	for accountID := range actual {
		if _, ok := sums[accountID]; !ok {
			accountIDs = append(accountIDs, accountID)
		}
	}
	sort.Ints(accountIDs)

	drifts := []domain.BalanceDrift{}
	for _, accountID := range accountIDs {
		expected := sums[accountID]
		value := actual[accountID]
		if expected.Equal(value) {
			continue
		}
		drifts = append(drifts, domain.BalanceDrift{
			AccountID:  accountID,
			Expected:   expected,
			Actual:     value,
			Difference: value.Sub(expected),
		})
	}
	return drifts
}

// runWithRetry runs fn in a fresh unit of work, starting over after a concurrent
// update conflict at most maxRetries times.
func (s *LedgerService) runWithRetry(ctx context.Context, operation string, fn func(tx domain.LedgerTx) error) error {
	attempts := s.maxRetries + 1
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		err := s.ledger.WithinTransaction(ctx, fn)
		if err == nil {
			return nil
		}
		var conflict *financeErrors.ConcurrentUpdateConflict
		if !errors.As(err, &conflict) {
			return err
		}
		lastErr = conflict.Err

		if attempt == attempts {
			break
		}
		s.logger.WarnContext(ctx, "concurrent update conflict, retrying",
			log.FieldOperation, operation,
			log.FieldAttempt, attempt,
			log.FieldError, err.Error(),
		)
		if s.retryBackoff > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(s.retryBackoff * time.Duration(attempt)):
			}
		}
	}

	return &financeErrors.ConcurrentUpdateConflict{Attempts: attempts, Err: lastErr}
}

func (s *LedgerService) publish(ctx context.Context, operation, transactionID string, actor domain.Actor, deltas []balanceDelta) {
	if s.publisher == nil {
		return
	}
	occurredAt := s.now()
	for _, d := range deltas {
		change := domain.BalanceChange{
			AccountID:     d.accountID,
			TransactionID: transactionID,
			Operation:     operation,
			Delta:         d.delta,
			ActorID:       actor.UserID,
			OccurredAt:    occurredAt,
		}
		if err := s.publisher.PublishBalanceChanged(ctx, change); err != nil {
			s.logger.OperationError(ctx, log.OpPublish, err,
				log.FieldAccountID, d.accountID,
				log.FieldTransactionID, transactionID,
			)
		}
	}
}
