package application

import (
	"context"
	"testing"

	"github.com/sebuszqo/FinanceLedger/internal/finance/domain"
	financeErrors "github.com/sebuszqo/FinanceLedger/internal/finance/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountService_Lifecycle(t *testing.T) {
	f := newLedgerFixture(t)
	service := NewAccountService(f.store)
	ctx := context.Background()

	icon := "icons/card.svg"
	created, err := service.CreateAccount(ctx, "Credit card", "CC", &icon)
	require.NoError(t, err)
	assert.True(t, created.IsActive)

	active, err := service.GetActiveAccounts(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 3)

	require.NoError(t, service.DeactivateAccount(ctx, created.ID))
	active, err = service.GetActiveAccounts(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 2)

	found, err := service.GetAccount(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, found.IsActive)

	require.NoError(t, service.DeleteAccount(ctx, created.ID))
	_, err = service.GetAccount(ctx, created.ID)
	assert.ErrorIs(t, err, financeErrors.ErrAccountNotFound)
}

func TestAccountService_CreateValidates(t *testing.T) {
	service := NewAccountService(newLedgerFixture(t).store)

	_, err := service.CreateAccount(context.Background(), "", "TOOLONG", nil)

	var ve *financeErrors.ValidationErrors
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields(), "name")
	assert.Contains(t, ve.Fields(), "abbreviation")
}

func TestAccountService_DeleteReferencedAccount(t *testing.T) {
	f := newLedgerFixture(t)
	service := NewAccountService(f.store)
	f.record(t, f.accountA, "10.00", domain.Credit)

	err := service.DeleteAccount(context.Background(), f.accountA)

	assert.True(t, financeErrors.IsReferentialIntegrityError(err))
	assertDecimal(t, "10.00", f.store.Balance(f.accountA))
}

func TestCategoryService_Lifecycle(t *testing.T) {
	f := newLedgerFixture(t)
	service := NewCategoryService(f.store)
	ctx := context.Background()

	created, err := service.CreateCategory(ctx, "Travel")
	require.NoError(t, err)

	active, err := service.GetActiveCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 2)

	require.NoError(t, service.DeactivateCategory(ctx, created.ID))
	active, err = service.GetActiveCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 1)

	require.NoError(t, service.DeleteCategory(ctx, created.ID))
	_, err = service.GetCategory(ctx, created.ID)
	assert.ErrorIs(t, err, financeErrors.ErrCategoryNotFound)
}

func TestCategoryService_DeleteReferencedCategory(t *testing.T) {
	f := newLedgerFixture(t)
	service := NewCategoryService(f.store)
	f.record(t, f.accountA, "10.00", domain.Credit)

	err := service.DeleteCategory(context.Background(), f.categoryID)

	assert.True(t, financeErrors.IsReferentialIntegrityError(err))
}

func TestCategoryService_CreateValidates(t *testing.T) {
	service := NewCategoryService(newLedgerFixture(t).store)

	_, err := service.CreateCategory(context.Background(), "")

	assert.True(t, financeErrors.IsValidationError(err))
}
