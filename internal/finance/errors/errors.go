package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound covers both missing rows and rows owned by another user.
var ErrNotFound = errors.New("not found")

type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func NewValidationError(msg string) error {
	return &ValidationError{Msg: msg}
}

func IsValidationError(err error) bool {
	var validationError *ValidationError
	return errors.As(err, &validationError)
}

func NewIndexedValidationError(index int, msg string) error {
	return &ValidationError{Msg: fmt.Sprintf("Validation error at transaction %d: %s", index, msg)}
}

var (
	ErrInvalidAccount  = NewValidationError("Account does not exist")
	ErrInvalidCategory = NewValidationError("Category does not exist")
	ErrInvalidRange    = NewValidationError("'from' must not be after 'to'")
	ErrRangeTooLong    = NewValidationError("Date range must not exceed 3660 days")
	ErrNoIDs           = NewValidationError("At least one id is required")
)

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

// Messages returns each collected error message, for the "errors" response field.
func (ve *ValidationErrors) Messages() []string {
	messages := make([]string, len(ve.Errors))
	for i, err := range ve.Errors {
		messages[i] = err.Error()
	}
	return messages
}

func IsValidationErrors(err error) bool {
	var validationErrors *ValidationErrors
	return errors.As(err, &validationErrors)
}
