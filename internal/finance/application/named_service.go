package application

import (
	"context"

	"github.com/google/uuid"
	"github.com/sebuszqo/FinanceTracker/internal/events"
	"github.com/sebuszqo/FinanceTracker/internal/finance/domain"
	financeErrors "github.com/sebuszqo/FinanceTracker/internal/finance/errors"
)

// NamedService serves accounts and categories, which share one shape.
type NamedService[T any] struct {
	resource domain.Resource
	repo     domain.NamedRepository[T]
	notifier ChangeNotifier
	newID    func() string
}

func NewNamedService[T any](resource domain.Resource, repo domain.NamedRepository[T], notifier ChangeNotifier) *NamedService[T] {
	return &NamedService[T]{
		resource: resource,
		repo:     repo,
		notifier: notifier,
		newID:    uuid.NewString,
	}
}

func NewAccountService(repo domain.NamedRepository[domain.Account], notifier ChangeNotifier) *NamedService[domain.Account] {
	return NewNamedService[domain.Account](domain.ResourceAccounts, repo, notifier)
}

func NewCategoryService(repo domain.NamedRepository[domain.Category], notifier ChangeNotifier) *NamedService[domain.Category] {
	return NewNamedService[domain.Category](domain.ResourceCategories, repo, notifier)
}

func (s *NamedService[T]) Resource() domain.Resource {
	return s.resource
}

func (s *NamedService[T]) List(ctx context.Context, userID string) ([]T, error) {
	items, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		return []T{}, nil
	}
	return items, nil
}

func (s *NamedService[T]) Get(ctx context.Context, userID, id string) (*T, error) {
	return s.repo.Get(ctx, userID, id)
}

func (s *NamedService[T]) Create(ctx context.Context, userID string, input domain.NamedInput) (*T, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	id := s.newID()
	item, err := s.repo.Create(ctx, userID, id, input)
	if err != nil {
		return nil, err
	}
	s.notifier.Changed(ctx, userID, s.resource, events.ActionCreated, []string{id})
	return item, nil
}

func (s *NamedService[T]) Update(ctx context.Context, userID, id string, input domain.NamedInput) (*T, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	item, err := s.repo.Update(ctx, userID, id, input)
	if err != nil {
		return nil, err
	}
	s.notifier.Changed(ctx, userID, s.resource, events.ActionUpdated, []string{id})
	return item, nil
}

func (s *NamedService[T]) Delete(ctx context.Context, userID, id string) ([]string, error) {
	deleted, err := s.repo.Delete(ctx, userID, []string{id})
	if err != nil {
		return nil, err
	}
	if len(deleted) == 0 {
		return nil, financeErrors.ErrNotFound
	}
	s.notifier.Changed(ctx, userID, s.resource, events.ActionDeleted, deleted)
	return deleted, nil
}

// BulkDelete removes the ids the user owns and silently skips the rest.
func (s *NamedService[T]) BulkDelete(ctx context.Context, userID string, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, financeErrors.ErrNoIDs
	}
	deleted, err := s.repo.Delete(ctx, userID, ids)
	if err != nil {
		return nil, err
	}
	if len(deleted) > 0 {
		s.notifier.Changed(ctx, userID, s.resource, events.ActionDeleted, deleted)
	}
	return deleted, nil
}
