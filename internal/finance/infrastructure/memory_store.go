package infrastructure

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sebuszqo/FinanceLedger/internal/finance/domain"
	financeErrors "github.com/sebuszqo/FinanceLedger/internal/finance/errors"
	"github.com/shopspring/decimal"
)

// MemoryStore keeps the whole ledger in process memory. Units of work run one at a
// time against a copy of the state that replaces the original only on success.
// It backs the service and handler tests.
type MemoryStore struct {
	mu    sync.Mutex
	state memoryState

	// BalanceWrites counts committed balance mutations.
	BalanceWrites int
}

type memoryState struct {
	accounts     map[int]domain.Account
	categories   map[int]domain.Category
	transactions map[string]domain.Transaction
	balances     map[int]domain.Balance
	nextID       int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: memoryState{
		accounts:     make(map[int]domain.Account),
		categories:   make(map[int]domain.Category),
		transactions: make(map[string]domain.Transaction),
		balances:     make(map[int]domain.Balance),
	}}
}

func (s memoryState) clone() memoryState {
	c := memoryState{
		accounts:     make(map[int]domain.Account, len(s.accounts)),
		categories:   make(map[int]domain.Category, len(s.categories)),
		transactions: make(map[string]domain.Transaction, len(s.transactions)),
		balances:     make(map[int]domain.Balance, len(s.balances)),
		nextID:       s.nextID,
	}
	for k, v := range s.accounts {
		c.accounts[k] = v
	}
	for k, v := range s.categories {
		c.categories[k] = v
	}
	for k, v := range s.transactions {
		c.transactions[k] = v
	}
	for k, v := range s.balances {
		c.balances[k] = v
	}
	return c
}

func (m *MemoryStore) WithinTransaction(ctx context.Context, fn func(tx domain.LedgerTx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	tx := &memoryTx{state: m.state.clone()}
	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	m.state = tx.state
	m.BalanceWrites += tx.balanceWrites
	return nil
}

func (m *MemoryStore) ReadSnapshot(ctx context.Context, fn func(tx domain.LedgerTx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return fn(&memoryTx{state: m.state.clone()})
}

func (m *MemoryStore) FindBalance(_ context.Context, accountID int) (*domain.Balance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	balance, ok := m.state.balances[accountID]
	if !ok {
		return nil, nil
	}
	return &balance, nil
}

func (m *MemoryStore) FindBalances(_ context.Context) ([]domain.AccountBalance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	balances := []domain.AccountBalance{}
	for accountID, balance := range m.state.balances {
		balances = append(balances, domain.AccountBalance{
			Account:   m.state.accounts[accountID],
			Value:     balance.Value,
			UpdatedAt: balance.UpdatedAt,
		})
	}
	sort.Slice(balances, func(i, j int) bool { return balances[i].Account.ID < balances[j].Account.ID })
	return balances, nil
}

// Balance returns the stored value for an account, zero when no balance exists.
func (m *MemoryStore) Balance(accountID int) decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.state.balances[accountID].Value
}

// HasBalance reports whether a balance row exists for the account.
func (m *MemoryStore) HasBalance(accountID int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.state.balances[accountID]
	return ok
}

// SetBalance overwrites a balance directly, bypassing the ledger. Tests use it to simulate drift.
func (m *MemoryStore) SetBalance(accountID int, value decimal.Decimal) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state.balances[accountID] = domain.Balance{AccountID: accountID, Value: value, UpdatedAt: time.Now()}
}

func (m *MemoryStore) FindTransactionByID(_ context.Context, transactionID string) (*domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	transaction, ok := m.state.transactions[transactionID]
	if !ok {
		return nil, financeErrors.ErrTransactionNotFound
	}
	return &transaction, nil
}

func (m *MemoryStore) FindTransactions(_ context.Context, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []domain.Transaction
	for _, t := range m.state.transactions {
		if filter.UserID != "" && t.UserID != filter.UserID {
			continue
		}
		if filter.AccountID != nil && t.AccountID != *filter.AccountID {
			continue
		}
		if filter.StartDate != nil && t.Date.Before(*filter.StartDate) {
			continue
		}
		if filter.EndDate != nil && t.Date.After(*filter.EndDate) {
			continue
		}
		matched = append(matched, t)
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].Date.Equal(matched[j].Date) {
			return matched[i].Date.After(matched[j].Date)
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	limit, offset := pagination(filter.Limit, filter.Page)
	transactions := []domain.Transaction{}
	for i := offset; i < len(matched) && i < offset+limit; i++ {
		transactions = append(transactions, matched[i])
	}
	return transactions, nil
}

func (m *MemoryStore) FindActive(_ context.Context) ([]domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	accounts := []domain.Account{}
	for _, account := range m.state.accounts {
		if account.IsActive {
			accounts = append(accounts, account)
		}
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].ID < accounts[j].ID })
	return accounts, nil
}

func (m *MemoryStore) FindAccountByID(_ context.Context, accountID int) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	account, ok := m.state.accounts[accountID]
	if !ok {
		return nil, financeErrors.ErrAccountNotFound
	}
	return &account, nil
}

func (m *MemoryStore) CreateAccount(_ context.Context, account *domain.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state.nextID++
	account.ID = m.state.nextID
	m.state.accounts[account.ID] = *account
	return nil
}

func (m *MemoryStore) SetAccountActive(_ context.Context, accountID int, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	account, ok := m.state.accounts[accountID]
	if !ok {
		return financeErrors.ErrAccountNotFound
	}
	account.IsActive = active
	m.state.accounts[accountID] = account
	return nil
}

func (m *MemoryStore) DeleteAccount(_ context.Context, accountID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.state.accounts[accountID]; !ok {
		return financeErrors.ErrAccountNotFound
	}
	for _, t := range m.state.transactions {
		if t.AccountID == accountID {
			return financeErrors.NewReferenceInUseError("account", accountID)
		}
	}
	if balance, ok := m.state.balances[accountID]; ok {
		if !balance.Value.IsZero() {
			return financeErrors.NewReferenceInUseError("account", accountID)
		}
		delete(m.state.balances, accountID)
	}
	delete(m.state.accounts, accountID)
	return nil
}

func (m *MemoryStore) FindActiveCategories(_ context.Context) ([]domain.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	categories := []domain.Category{}
	for _, category := range m.state.categories {
		if category.IsActive {
			categories = append(categories, category)
		}
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].ID < categories[j].ID })
	return categories, nil
}

func (m *MemoryStore) FindCategoryByID(_ context.Context, categoryID int) (*domain.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	category, ok := m.state.categories[categoryID]
	if !ok {
		return nil, financeErrors.ErrCategoryNotFound
	}
	return &category, nil
}

func (m *MemoryStore) CreateCategory(_ context.Context, category *domain.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state.nextID++
	category.ID = m.state.nextID
	m.state.categories[category.ID] = *category
	return nil
}

func (m *MemoryStore) SetCategoryActive(_ context.Context, categoryID int, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	category, ok := m.state.categories[categoryID]
	if !ok {
		return financeErrors.ErrCategoryNotFound
	}
	category.IsActive = active
	m.state.categories[categoryID] = category
	return nil
}

func (m *MemoryStore) DeleteCategory(_ context.Context, categoryID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.state.categories[categoryID]; !ok {
		return financeErrors.ErrCategoryNotFound
	}
	for _, t := range m.state.transactions {
		if t.CategoryID == categoryID {
			return financeErrors.NewReferenceInUseError("category", categoryID)
		}
	}
	delete(m.state.categories, categoryID)
	return nil
}

type memoryTx struct {
	state         memoryState
	balanceWrites int
}

func (t *memoryTx) AccountExists(_ context.Context, accountID int) (bool, error) {
	_, ok := t.state.accounts[accountID]
	return ok, nil
}

func (t *memoryTx) CategoryExists(_ context.Context, categoryID int) (bool, error) {
	_, ok := t.state.categories[categoryID]
	return ok, nil
}

func (t *memoryTx) LockTransaction(_ context.Context, transactionID string) (*domain.Transaction, error) {
	transaction, ok := t.state.transactions[transactionID]
	if !ok {
		return nil, nil
	}
	return &transaction, nil
}

func (t *memoryTx) checkReferences(transaction domain.Transaction) error {
	if _, ok := t.state.accounts[transaction.AccountID]; !ok {
		return financeErrors.NewMissingReferenceError("account", transaction.AccountID)
	}
	if _, ok := t.state.categories[transaction.CategoryID]; !ok {
		return financeErrors.NewMissingReferenceError("category", transaction.CategoryID)
	}
	return nil
}

func (t *memoryTx) InsertTransaction(_ context.Context, transaction domain.Transaction) error {
	if err := t.checkReferences(transaction); err != nil {
		return err
	}
	if _, exists := t.state.transactions[transaction.ID]; exists {
		return financeErrors.NewConcurrentUpdateConflict(fmt.Errorf("transaction %s already exists", transaction.ID))
	}
	t.state.transactions[transaction.ID] = transaction
	return nil
}

func (t *memoryTx) UpdateTransaction(_ context.Context, transaction domain.Transaction) error {
	if err := t.checkReferences(transaction); err != nil {
		return err
	}
	t.state.transactions[transaction.ID] = transaction
	return nil
}

func (t *memoryTx) DeleteTransaction(_ context.Context, transactionID string) error {
	delete(t.state.transactions, transactionID)
	return nil
}

func (t *memoryTx) ApplyBalanceDelta(_ context.Context, accountID int, delta decimal.Decimal, at time.Time) error {
	if _, ok := t.state.accounts[accountID]; !ok {
		return financeErrors.NewMissingReferenceError("account", accountID)
	}
	balance := t.state.balances[accountID]
	balance.AccountID = accountID
	balance.Value = balance.Value.Add(delta)
	balance.UpdatedAt = at
	t.state.balances[accountID] = balance
	t.balanceWrites++
	return nil
}

func (t *memoryTx) LockLedger(context.Context) error {
	return nil
}

func (t *memoryTx) SumContributions(context.Context) (map[int]decimal.Decimal, error) {
	sums := make(map[int]decimal.Decimal)
	for _, transaction := range t.state.transactions {
		sums[transaction.AccountID] = sums[transaction.AccountID].Add(transaction.Contribution())
	}
	return sums, nil
}

func (t *memoryTx) ListBalances(context.Context) ([]domain.Balance, error) {
	balances := make([]domain.Balance, 0, len(t.state.balances))
	for _, balance := range t.state.balances {
		balances = append(balances, balance)
	}
	sort.Slice(balances, func(i, j int) bool { return balances[i].AccountID < balances[j].AccountID })
	return balances, nil
}

func (t *memoryTx) ReplaceBalances(_ context.Context, values map[int]decimal.Decimal, at time.Time) error {
	for accountID, balance := range t.state.balances {
		balance.Value = decimal.Zero
		balance.UpdatedAt = at
		t.state.balances[accountID] = balance
	}
	for accountID, value := range values {
		t.state.balances[accountID] = domain.Balance{AccountID: accountID, Value: value, UpdatedAt: at}
		t.balanceWrites++
	}
	return nil
}
