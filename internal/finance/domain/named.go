package domain

import (
	"context"
	"strings"

	"github.com/sebuszqo/FinanceTracker/internal/finance/errors"
)

const maxNameLength = 100

// Account is a user-owned place money lives in, such as a bank account or wallet.
type Account struct {
	ID         string  `json:"id"`
	UserID     string  `json:"-"`
	Name       string  `json:"name"`
	ExternalID *string `json:"external_id,omitempty"`
}

type Category struct {
	ID         string  `json:"id"`
	UserID     string  `json:"-"`
	Name       string  `json:"name"`
	ExternalID *string `json:"external_id,omitempty"`
}

// NamedInput is the create/update payload for accounts and categories.
type NamedInput struct {
	Name       string  `json:"name"`
	ExternalID *string `json:"external_id,omitempty"`
}

func (in *NamedInput) Validate() error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return errors.NewValidationError("Name is required")
	}
	if len(in.Name) > maxNameLength {
		return errors.NewValidationError("Name must be at most 100 characters long")
	}
	return nil
}

// NamedRepository stores accounts or categories. Every method is scoped to userID.
type NamedRepository[T any] interface {
	List(ctx context.Context, userID string) ([]T, error)
	Get(ctx context.Context, userID, id string) (*T, error)
	Create(ctx context.Context, userID, id string, input NamedInput) (*T, error)
	Update(ctx context.Context, userID, id string, input NamedInput) (*T, error)
	Delete(ctx context.Context, userID string, ids []string) ([]string, error)
}
