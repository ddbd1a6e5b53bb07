package domain

import (
	"context"
	"math"
	"time"
	"unicode/utf8"

	"github.com/sebuszqo/FinanceLedger/internal/finance/errors"
	"github.com/shopspring/decimal"
)

const (
	DateLayout = "2006-01-02"

	maxDescriptionLength = 256
	amountDecimalPlaces  = 2
	amountMaxDigits      = 9
)

// MaxAmount is the largest amount that fits NUMERIC(9,2).
var MaxAmount = decimal.New(1, amountMaxDigits-amountDecimalPlaces).Sub(decimal.New(1, -amountDecimalPlaces))

// Direction is the sign applied to an amount: Credit adds to the balance, Debit subtracts.
type Direction int

const (
	Credit Direction = 1
	Debit  Direction = -1
)

func (d Direction) Valid() bool {
	return d == Credit || d == Debit
}

func (d Direction) String() string {
	switch d {
	case Credit:
		return "credit"
	case Debit:
		return "debit"
	default:
		return "unknown"
	}
}

// TransactionFields carries every caller-mutable field of a transaction. It is
// the input of a record and the amendment value of an amend.
type TransactionFields struct {
	AccountID    int
	CategoryID   int
	Amount       decimal.Decimal
	Direction    Direction
	Date         time.Time
	Description  string
	TaxDeduction bool
}

// Amendment is the full replacement value of a transaction's mutable fields.
type Amendment = TransactionFields

// Contribution is the signed effect of the fields on the account balance.
func (f TransactionFields) Contribution() decimal.Decimal {
	return f.Amount.Mul(decimal.NewFromInt(int64(f.Direction)))
}

// Validate reports every field problem at once. It does not check that the
// referenced account and category exist.
func (f TransactionFields) Validate() error {
	ve := &errors.ValidationErrors{}
	if f.AccountID <= 0 {
		ve.Add(errors.NewFieldValidationError("account_id", "You must select an account."))
	}
	if f.CategoryID <= 0 {
		ve.Add(errors.NewFieldValidationError("category_id", "You must select a category."))
	}
	if err := validateAmount(f.Amount); err != nil {
		ve.Add(err)
	}
	if !f.Direction.Valid() {
		ve.Add(errors.NewFieldValidationError("action", "Select an action."))
	}
	if f.Date.IsZero() {
		ve.Add(errors.NewFieldValidationError("date", "You must enter a valid date (try YYYY-MM-DD)."))
	}
	if f.Description == "" {
		ve.Add(errors.NewFieldValidationError("description", "This field may not be blank."))
	} else if utf8.RuneCountInString(f.Description) > maxDescriptionLength {
		ve.Add(errors.NewFieldValidationError("description", "Ensure this field has no more than 256 characters."))
	}
	return ve.ErrOrNil()
}

func validateAmount(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return errors.NewFieldValidationError("amount", "Ensure this value is greater than or equal to 0.")
	}
	if !amount.Equal(amount.Round(amountDecimalPlaces)) {
		return errors.NewFieldValidationError("amount", "Ensure that there are no more than 2 decimal places.")
	}
	if amount.GreaterThan(MaxAmount) {
		return errors.NewFieldValidationError("amount", "Ensure that there are no more than 9 digits in total.")
	}
	return nil
}

// ParseAmount accepts the textual form of an amount, as sent by API clients.
func ParseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, errors.NewFieldValidationError("amount", "You must enter a valid amount.")
	}
	return amount, nil
}

func ParseDate(raw string) (time.Time, error) {
	date, err := time.Parse(DateLayout, raw)
	if err != nil {
		return time.Time{}, errors.NewFieldValidationError("date", "You must enter a valid date (try YYYY-MM-DD).")
	}
	return date, nil
}

type Transaction struct {
	ID           string          `json:"id"`
	UserID       string          `json:"user_id"`
	AccountID    int             `json:"account_id"`
	CategoryID   int             `json:"category_id"`
	Amount       decimal.Decimal `json:"amount"`
	Direction    Direction       `json:"action"`
	Date         time.Time       `json:"date"`
	Description  string          `json:"description"`
	TaxDeduction bool            `json:"tax_deduction"`
	CreatedAt    time.Time       `json:"created"`
	CreatedBy    string          `json:"created_by_id"`
	UpdatedAt    time.Time       `json:"updated"`
	UpdatedBy    string          `json:"updated_by_id"`
}

func (t *Transaction) Contribution() decimal.Decimal {
	return t.Fields().Contribution()
}

func (t *Transaction) Fields() TransactionFields {
	return TransactionFields{
		AccountID:    t.AccountID,
		CategoryID:   t.CategoryID,
		Amount:       t.Amount,
		Direction:    t.Direction,
		Date:         t.Date,
		Description:  t.Description,
		TaxDeduction: t.TaxDeduction,
	}
}

// Apply copies the mutable fields onto the transaction.
func (t *Transaction) Apply(f TransactionFields) {
	t.AccountID = f.AccountID
	t.CategoryID = f.CategoryID
	t.Amount = f.Amount.Round(amountDecimalPlaces)
	t.Direction = f.Direction
	t.Date = f.Date
	t.Description = f.Description
	t.TaxDeduction = f.TaxDeduction
}

const (
	DefaultTransactionLimit = 20
	MaxTransactionLimit     = 500
	// MaxTransactionPage keeps (page-1)*limit well inside the range of an OFFSET.
	MaxTransactionPage = math.MaxInt32 / MaxTransactionLimit
)

// TransactionFilter narrows a transaction listing. An empty UserID lists every owner.
type TransactionFilter struct {
	UserID    string
	AccountID *int
	StartDate *time.Time
	EndDate   *time.Time
	Limit     int
	Page      int
}

type TransactionRepository interface {
	FindTransactionByID(ctx context.Context, transactionID string) (*Transaction, error)
	FindTransactions(ctx context.Context, filter TransactionFilter) ([]Transaction, error)
}
