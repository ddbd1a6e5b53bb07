package interfaces

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/sebuszqo/FinanceLedger/internal/finance/domain"
	financeErrors "github.com/sebuszqo/FinanceLedger/internal/finance/errors"
	"github.com/shopspring/decimal"
)

// transactionRequest is the body of a record or amend call. Amount may be sent as a
// JSON string or number.
type transactionRequest struct {
	AccountID    int             `json:"account_id"`
	CategoryID   int             `json:"category_id"`
	Amount       json.RawMessage `json:"amount"`
	Action       int             `json:"action"`
	Date         string          `json:"date"`
	Description  string          `json:"description"`
	TaxDeduction bool            `json:"tax_deduction"`
}

func parseRequestAmount(raw json.RawMessage) (decimal.Decimal, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return decimal.Zero, financeErrors.NewFieldValidationError("amount", "You must enter a valid amount.")
	}
	if raw[0] == '"' {
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			return decimal.Zero, financeErrors.NewFieldValidationError("amount", "You must enter a valid amount.")
		}
		return domain.ParseAmount(text)
	}
	return domain.ParseAmount(string(raw))
}

// toFields converts the request and reports every field problem at once.
func (req transactionRequest) toFields() (domain.TransactionFields, error) {
	ve := &financeErrors.ValidationErrors{}
	flagged := make(map[string]bool)

	amount, err := parseRequestAmount(req.Amount)
	if err != nil {
		ve.Add(err)
		flagged["amount"] = true
	}
	date, err := domain.ParseDate(req.Date)
	if err != nil {
		ve.Add(err)
		flagged["date"] = true
	}

	fields := domain.TransactionFields{
		AccountID:    req.AccountID,
		CategoryID:   req.CategoryID,
		Amount:       amount,
		Direction:    domain.Direction(req.Action),
		Date:         date,
		Description:  req.Description,
		TaxDeduction: req.TaxDeduction,
	}

	if err := fields.Validate(); err != nil {
		var fieldErrs *financeErrors.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fieldErr := range fieldErrs.Errors {
				var single *financeErrors.ValidationError
				if errors.As(fieldErr, &single) && flagged[single.Field] {
					continue
				}
				ve.Add(fieldErr)
			}
		}
	}
	return fields, ve.ErrOrNil()
}
