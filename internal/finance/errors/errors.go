package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError describes a malformed or missing field. Field is empty for
// errors that are not tied to a single input field.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

func NewValidationError(msg string) error {
	return &ValidationError{Msg: msg}
}

func NewFieldValidationError(field, msg string) error {
	return &ValidationError{Field: field, Msg: msg}
}

func IsValidationError(err error) bool {
	var validationError *ValidationError
	ok := errors.As(err, &validationError)
	return ok
}

type ValidationErrors struct {
	Errors []error
}

func (ve *ValidationErrors) Error() string {
	errorMessages := make([]string, len(ve.Errors))
	for i, err := range ve.Errors {
		errorMessages[i] = err.Error()
	}
	return fmt.Sprintf("multiple validation errors: %s", strings.Join(errorMessages, "; "))
}

func (ve *ValidationErrors) Add(err error) {
	ve.Errors = append(ve.Errors, err)
}

// ErrOrNil returns nil when nothing was collected, so callers can return it directly.
func (ve *ValidationErrors) ErrOrNil() error {
	if len(ve.Errors) == 0 {
		return nil
	}
	return ve
}

// Fields groups the collected messages by field name.
func (ve *ValidationErrors) Fields() map[string][]string {
	fields := make(map[string][]string)
	for _, err := range ve.Errors {
		var validationError *ValidationError
		if errors.As(err, &validationError) {
			key := validationError.Field
			if key == "" {
				key = "non_field_errors"
			}
			fields[key] = append(fields[key], validationError.Msg)
			continue
		}
		fields["non_field_errors"] = append(fields["non_field_errors"], err.Error())
	}
	return fields
}

func IsValidationErrors(err error) bool {
	var validationErrors *ValidationErrors
	ok := errors.As(err, &validationErrors)
	return ok
}

// ReferentialIntegrityError is returned when a write references a missing
// account or category, or when a delete would orphan transactions.
type ReferentialIntegrityError struct {
	Entity string
	ID     string
	InUse  bool
}

func (e *ReferentialIntegrityError) Error() string {
	if e.InUse {
		return fmt.Sprintf("%s %s is still referenced by transactions", e.Entity, e.ID)
	}
	if e.ID == "" {
		return fmt.Sprintf("referenced %s does not exist", e.Entity)
	}
	return fmt.Sprintf("%s %s does not exist", e.Entity, e.ID)
}

func NewMissingReferenceError(entity string, id any) error {
	return &ReferentialIntegrityError{Entity: entity, ID: fmt.Sprint(id)}
}

func NewReferenceInUseError(entity string, id any) error {
	return &ReferentialIntegrityError{Entity: entity, ID: fmt.Sprint(id), InUse: true}
}

func IsReferentialIntegrityError(err error) bool {
	var refErr *ReferentialIntegrityError
	return errors.As(err, &refErr)
}

// ConcurrentUpdateConflict marks a lost-update race detected by the database.
// Attempts is set once the bounded retry gave up.
type ConcurrentUpdateConflict struct {
	Attempts int
	Err      error
}

func (e *ConcurrentUpdateConflict) Error() string {
	if e.Attempts > 0 {
		return fmt.Sprintf("concurrent update conflict after %d attempts: %v", e.Attempts, e.Err)
	}
	return fmt.Sprintf("concurrent update conflict: %v", e.Err)
}

func (e *ConcurrentUpdateConflict) Unwrap() error {
	return e.Err
}

func NewConcurrentUpdateConflict(err error) error {
	return &ConcurrentUpdateConflict{Err: err}
}

func IsConcurrentUpdateConflict(err error) bool {
	var conflict *ConcurrentUpdateConflict
	return errors.As(err, &conflict)
}

type PermissionDenied struct {
	Action string
}

func (e *PermissionDenied) Error() string {
	return fmt.Sprintf("permission denied: %s", e.Action)
}

func NewPermissionDenied(action string) error {
	return &PermissionDenied{Action: action}
}

func IsPermissionDenied(err error) bool {
	var denied *PermissionDenied
	return errors.As(err, &denied)
}

var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrAccountNotFound     = errors.New("account not found")
	ErrCategoryNotFound    = errors.New("category not found")
	ErrUserNotFound        = errors.New("user not found")
)
