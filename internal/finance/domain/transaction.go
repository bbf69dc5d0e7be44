package domain

import (
	"context"
	"strings"

	"github.com/sebuszqo/FinanceTracker/internal/finance/errors"
)

const maxPayeeLength = 200

// Transaction amounts are milliunits: 12.34 is stored as 12340. Negative is an expense.
type Transaction struct {
	ID         string  `json:"id"`
	Amount     int64   `json:"amount"`
	Payee      string  `json:"payee"`
	Notes      *string `json:"notes"`
	Date       Date    `json:"date"`
	AccountID  string  `json:"account_id"`
	CategoryID *string `json:"category_id"`
}

// TransactionView is a listed transaction with its account and category names.
type TransactionView struct {
	Transaction
	Account  string  `json:"account"`
	Category *string `json:"category"`
}

type TransactionInput struct {
	Amount     int64   `json:"amount"`
	Payee      string  `json:"payee"`
	Notes      *string `json:"notes"`
	Date       Date    `json:"date"`
	AccountID  string  `json:"account_id"`
	CategoryID *string `json:"category_id"`
}

func (in *TransactionInput) Validate() error {
	in.Payee = strings.TrimSpace(in.Payee)
	if in.Payee == "" {
		return errors.NewValidationError("Payee is required")
	}
	if len(in.Payee) > maxPayeeLength {
		return errors.NewValidationError("Payee must be at most 200 characters long")
	}
	if in.Date.IsZero() {
		return errors.NewValidationError("Date is required")
	}
	if in.AccountID == "" {
		return errors.NewValidationError("Account is required")
	}
	if in.CategoryID != nil && *in.CategoryID == "" {
		in.CategoryID = nil
	}
	if in.Notes != nil && strings.TrimSpace(*in.Notes) == "" {
		in.Notes = nil
	}
	return nil
}

type TransactionFilter struct {
	From      Date
	To        Date
	AccountID string
}

// TransactionRepository scopes every call to userID through the owning account.
type TransactionRepository interface {
	List(ctx context.Context, userID string, filter TransactionFilter) ([]TransactionView, error)
	Get(ctx context.Context, userID, id string) (*Transaction, error)
	Create(ctx context.Context, userID string, tx Transaction) (*Transaction, error)
	CreateBulk(ctx context.Context, userID string, txs []Transaction) ([]Transaction, error)
	Update(ctx context.Context, userID string, tx Transaction) (*Transaction, error)
	Delete(ctx context.Context, userID string, ids []string) ([]string, error)
}
