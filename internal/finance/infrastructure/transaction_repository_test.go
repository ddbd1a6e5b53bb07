package infrastructure

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/sebuszqo/FinanceLedger/internal/finance/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPagination(t *testing.T) {
	tests := []struct {
		name           string
		limit, page    int
		expectedLimit  int
		expectedOffset int
	}{
		{name: "defaults", limit: 0, page: 0, expectedLimit: 20, expectedOffset: 0},
		{name: "second page", limit: 10, page: 2, expectedLimit: 10, expectedOffset: 10},
		{name: "limit is capped", limit: 10000, page: 1, expectedLimit: 500, expectedOffset: 0},
		{
			name:           "huge page does not overflow",
			limit:          500,
			page:           math.MaxInt,
			expectedLimit:  500,
			expectedOffset: (domain.MaxTransactionPage - 1) * 500,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limit, offset := pagination(tt.limit, tt.page)
			assert.Equal(t, tt.expectedLimit, limit)
			assert.Equal(t, tt.expectedOffset, offset)
			assert.GreaterOrEqual(t, offset, 0)
		})
	}
}

func TestMemoryStore_FindTransactionsPastTheEnd(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	account := &domain.Account{Name: "Checking", Abbreviation: "CHK", IsActive: true}
	category := &domain.Category{Name: "Salary", IsActive: true}
	require.NoError(t, store.CreateAccount(ctx, account))
	require.NoError(t, store.CreateCategory(ctx, category))
	require.NoError(t, store.WithinTransaction(ctx, func(tx domain.LedgerTx) error {
		return tx.InsertTransaction(ctx, domain.Transaction{
			ID:         "4d8a3b8e-0000-4000-8000-000000000001",
			AccountID:  account.ID,
			CategoryID: category.ID,
			Amount:     decimal.RequireFromString("1.00"),
			Direction:  domain.Credit,
			Date:       time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
		})
	}))

	var transactions []domain.Transaction
	assert.NotPanics(t, func() {
		var err error
		transactions, err = store.FindTransactions(ctx, domain.TransactionFilter{Limit: 500, Page: math.MaxInt})
		require.NoError(t, err)
	})
	assert.Empty(t, transactions)
}
