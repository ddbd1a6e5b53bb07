package domain

import (
	"context"
	"unicode/utf8"

	"github.com/sebuszqo/FinanceLedger/internal/finance/errors"
)

const (
	maxAccountNameLength         = 128
	maxAccountAbbreviationLength = 5
)

type Account struct {
	ID           int     `json:"id"`
	Name         string  `json:"name"`
	Abbreviation string  `json:"abbreviation"`
	Icon         *string `json:"icon"`
	IsActive     bool    `json:"is_active"`
}

func (a *Account) Validate() error {
	ve := &errors.ValidationErrors{}
	if a.Name == "" {
		ve.Add(errors.NewFieldValidationError("name", "This field may not be blank."))
	} else if utf8.RuneCountInString(a.Name) > maxAccountNameLength {
		ve.Add(errors.NewFieldValidationError("name", "Ensure this field has no more than 128 characters."))
	}
	if a.Abbreviation == "" {
		ve.Add(errors.NewFieldValidationError("abbreviation", "This field may not be blank."))
	} else if utf8.RuneCountInString(a.Abbreviation) > maxAccountAbbreviationLength {
		ve.Add(errors.NewFieldValidationError("abbreviation", "Ensure this field has no more than 5 characters."))
	}
	return ve.ErrOrNil()
}

type AccountRepository interface {
	FindActive(ctx context.Context) ([]Account, error)
	FindAccountByID(ctx context.Context, accountID int) (*Account, error)
	CreateAccount(ctx context.Context, account *Account) error
	SetAccountActive(ctx context.Context, accountID int, active bool) error
	DeleteAccount(ctx context.Context, accountID int) error
}
