package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/sebuszqo/FinanceLedger/internal/finance/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validFields() TransactionFields {
	return TransactionFields{
		AccountID:   1,
		CategoryID:  2,
		Amount:      decimal.RequireFromString("100.00"),
		Direction:   Credit,
		Date:        time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
		Description: "salary",
	}
}

func TestTransactionFields_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(f *TransactionFields)
		field   string
		message string
	}{
		{name: "valid", mutate: func(f *TransactionFields) {}},
		{name: "zero amount is allowed", mutate: func(f *TransactionFields) { f.Amount = decimal.Zero }},
		{name: "largest amount", mutate: func(f *TransactionFields) { f.Amount = MaxAmount }},
		{
			name:    "missing account",
			mutate:  func(f *TransactionFields) { f.AccountID = 0 },
			field:   "account_id",
			message: "You must select an account.",
		},
		{
			name:    "missing category",
			mutate:  func(f *TransactionFields) { f.CategoryID = 0 },
			field:   "category_id",
			message: "You must select a category.",
		},
		{
			name:    "negative amount",
			mutate:  func(f *TransactionFields) { f.Amount = decimal.RequireFromString("-0.01") },
			field:   "amount",
			message: "Ensure this value is greater than or equal to 0.",
		},
		{
			name:    "three decimal places",
			mutate:  func(f *TransactionFields) { f.Amount = decimal.RequireFromString("1.005") },
			field:   "amount",
			message: "Ensure that there are no more than 2 decimal places.",
		},
		{
			name:    "too many digits",
			mutate:  func(f *TransactionFields) { f.Amount = decimal.RequireFromString("10000000.00") },
			field:   "amount",
			message: "Ensure that there are no more than 9 digits in total.",
		},
		{
			name:    "unknown direction",
			mutate:  func(f *TransactionFields) { f.Direction = 2 },
			field:   "action",
			message: "Select an action.",
		},
		{
			name:    "missing date",
			mutate:  func(f *TransactionFields) { f.Date = time.Time{} },
			field:   "date",
			message: "You must enter a valid date (try YYYY-MM-DD).",
		},
		{
			name:    "blank description",
			mutate:  func(f *TransactionFields) { f.Description = "" },
			field:   "description",
			message: "This field may not be blank.",
		},
		{
			name:    "long description",
			mutate:  func(f *TransactionFields) { f.Description = strings.Repeat("ż", 257) },
			field:   "description",
			message: "Ensure this field has no more than 256 characters.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := validFields()
			tt.mutate(&fields)

			err := fields.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var ve *errors.ValidationErrors
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, []string{tt.message}, ve.Fields()[tt.field])
		})
	}
}

func TestTransactionFields_ValidateCollectsEveryField(t *testing.T) {
	err := TransactionFields{}.Validate()

	var ve *errors.ValidationErrors
	require.ErrorAs(t, err, &ve)
	for _, field := range []string{"account_id", "category_id", "action", "date", "description"} {
		assert.Contains(t, ve.Fields(), field)
	}
}

func TestTransaction_Contribution(t *testing.T) {
	credit := Transaction{Amount: decimal.RequireFromString("12.50"), Direction: Credit}
	debit := Transaction{Amount: decimal.RequireFromString("12.50"), Direction: Debit}

	assert.True(t, decimal.RequireFromString("12.50").Equal(credit.Contribution()))
	assert.True(t, decimal.RequireFromString("-12.50").Equal(debit.Contribution()))
}

func TestTransaction_ApplyKeepsIdentity(t *testing.T) {
	transaction := Transaction{ID: "id-1", UserID: "user-1", CreatedBy: "user-1"}
	fields := validFields()
	fields.Amount = decimal.RequireFromString("7.1")

	transaction.Apply(fields)

	assert.Equal(t, "id-1", transaction.ID)
	assert.Equal(t, "user-1", transaction.UserID)
	assert.Equal(t, fields.AccountID, transaction.AccountID)
	assert.Equal(t, "7.10", transaction.Amount.StringFixed(2))
	assert.Equal(t, fields.Description, transaction.Fields().Description)
}

func TestParseAmountAndDate(t *testing.T) {
	amount, err := ParseAmount("19.99")
	require.NoError(t, err)
	assert.Equal(t, "19.99", amount.String())

	_, err = ParseAmount("nineteen")
	assert.EqualError(t, err, "amount: You must enter a valid amount.")

	date, err := ParseDate("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, time.February, date.Month())

	_, err = ParseDate("29/02/2024")
	assert.EqualError(t, err, "date: You must enter a valid date (try YYYY-MM-DD).")
}

func TestActor_CanAccess(t *testing.T) {
	assert.True(t, Actor{UserID: "a"}.CanAccess("a"))
	assert.False(t, Actor{UserID: "a"}.CanAccess("b"))
	assert.True(t, Actor{UserID: "a", CanViewAll: true}.CanAccess("b"))
}
