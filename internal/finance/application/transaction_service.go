package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/sebuszqo/FinanceTracker/internal/events"
	"github.com/sebuszqo/FinanceTracker/internal/finance/domain"
	financeErrors "github.com/sebuszqo/FinanceTracker/internal/finance/errors"
)

const (
	// DefaultRangeDays is how far back list and summary reach when "from" is omitted.
	DefaultRangeDays = 30
	// MaxRangeDays bounds a resolved range, both ends included.
	MaxRangeDays = 3660
)

type TransactionService struct {
	repo       domain.TransactionRepository
	accounts   domain.NamedRepository[domain.Account]
	categories domain.NamedRepository[domain.Category]
	notifier   ChangeNotifier
	now        func() time.Time
	newID      func() string
}

func NewTransactionService(repo domain.TransactionRepository, accounts domain.NamedRepository[domain.Account], categories domain.NamedRepository[domain.Category], notifier ChangeNotifier) *TransactionService {
	return &TransactionService{
		repo:       repo,
		accounts:   accounts,
		categories: categories,
		notifier:   notifier,
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

// ResolveRange fills a missing bound: to defaults to today, from to DefaultRangeDays before today.
func ResolveRange(from, to domain.Date, now time.Time) (domain.Date, domain.Date, error) {
	today := domain.DateOf(now)
	if to.IsZero() {
		to = today
	}
	if from.IsZero() {
		from = today.AddDays(-DefaultRangeDays)
	}
	if from.After(to.Time) {
		return domain.Date{}, domain.Date{}, financeErrors.ErrInvalidRange
	}
	if from.DaysUntil(to)+1 > MaxRangeDays {
		return domain.Date{}, domain.Date{}, financeErrors.ErrRangeTooLong
	}
	return from, to, nil
}

func (s *TransactionService) List(ctx context.Context, userID string, filter domain.TransactionFilter) ([]domain.TransactionView, error) {
	from, to, err := ResolveRange(filter.From, filter.To, s.now())
	if err != nil {
		return nil, err
	}
	filter.From, filter.To = from, to

	views, err := s.repo.List(ctx, userID, filter)
	if err != nil {
		return nil, err
	}
	if views == nil {
		return []domain.TransactionView{}, nil
	}
	return views, nil
}

func (s *TransactionService) Get(ctx context.Context, userID, id string) (*domain.Transaction, error) {
	return s.repo.Get(ctx, userID, id)
}

func toTransaction(id string, in domain.TransactionInput) domain.Transaction {
	return domain.Transaction{
		ID:         id,
		Amount:     in.Amount,
		Payee:      in.Payee,
		Notes:      in.Notes,
		Date:       in.Date,
		AccountID:  in.AccountID,
		CategoryID: in.CategoryID,
	}
}

func (s *TransactionService) Create(ctx context.Context, userID string, input domain.TransactionInput) (*domain.Transaction, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	created, err := s.repo.Create(ctx, userID, toTransaction(s.newID(), input))
	if err != nil {
		return nil, err
	}
	s.notifier.Changed(ctx, userID, domain.ResourceTransactions, events.ActionCreated, []string{created.ID})
	return created, nil
}

// CreateBulk validates every input first and reports all failures at once,
// numbered from 1. Nothing is written unless the whole batch is valid.
func (s *TransactionService) CreateBulk(ctx context.Context, userID string, inputs []domain.TransactionInput) ([]domain.Transaction, error) {
	if len(inputs) == 0 {
		return nil, financeErrors.NewValidationError("At least one transaction is required")
	}

	accountMap, categoryMap, err := s.ownedReferences(ctx, userID)
	if err != nil {
		return nil, err
	}

	var validationErrors = &financeErrors.ValidationErrors{}
	txs := make([]domain.Transaction, 0, len(inputs))
	for i := range inputs {
		input := inputs[i]
		if err := input.Validate(); err != nil {
			validationErrors.Add(financeErrors.NewIndexedValidationError(i+1, err.Error()))
			continue
		}
		if _, exists := accountMap[input.AccountID]; !exists {
			validationErrors.Add(financeErrors.NewIndexedValidationError(i+1, financeErrors.ErrInvalidAccount.Error()))
			continue
		}
		if input.CategoryID != nil {
			if _, exists := categoryMap[*input.CategoryID]; !exists {
				validationErrors.Add(financeErrors.NewIndexedValidationError(i+1, financeErrors.ErrInvalidCategory.Error()))
				continue
			}
		}
		txs = append(txs, toTransaction(s.newID(), input))
	}
	if len(validationErrors.Errors) > 0 {
		return nil, validationErrors
	}

	created, err := s.repo.CreateBulk(ctx, userID, txs)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(created))
	for i, t := range created {
		ids[i] = t.ID
	}
	s.notifier.Changed(ctx, userID, domain.ResourceTransactions, events.ActionCreated, ids)
	return created, nil
}

func (s *TransactionService) ownedReferences(ctx context.Context, userID string) (map[string]bool, map[string]bool, error) {
	var accounts []domain.Account
	var categories []domain.Category

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		accounts, err = s.accounts.List(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		categories, err = s.categories.List(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	accountMap := make(map[string]bool, len(accounts))
	for _, account := range accounts {
		accountMap[account.ID] = true
	}
	categoryMap := make(map[string]bool, len(categories))
	for _, category := range categories {
		categoryMap[category.ID] = true
	}
	return accountMap, categoryMap, nil
}

func (s *TransactionService) Update(ctx context.Context, userID, id string, input domain.TransactionInput) (*domain.Transaction, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	updated, err := s.repo.Update(ctx, userID, toTransaction(id, input))
	if err != nil {
		return nil, err
	}
	s.notifier.Changed(ctx, userID, domain.ResourceTransactions, events.ActionUpdated, []string{id})
	return updated, nil
}

func (s *TransactionService) Delete(ctx context.Context, userID, id string) ([]string, error) {
	deleted, err := s.repo.Delete(ctx, userID, []string{id})
	if err != nil {
		return nil, err
	}
	if len(deleted) == 0 {
		return nil, financeErrors.ErrNotFound
	}
	s.notifier.Changed(ctx, userID, domain.ResourceTransactions, events.ActionDeleted, deleted)
	return deleted, nil
}

func (s *TransactionService) BulkDelete(ctx context.Context, userID string, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, financeErrors.ErrNoIDs
	}
	deleted, err := s.repo.Delete(ctx, userID, ids)
	if err != nil {
		return nil, err
	}
	if len(deleted) > 0 {
		s.notifier.Changed(ctx, userID, domain.ResourceTransactions, events.ActionDeleted, deleted)
	}
	return deleted, nil
}
