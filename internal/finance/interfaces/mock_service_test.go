package interfaces

import (
	"context"
	"net/http"

	"github.com/sebuszqo/FinanceTracker/internal/finance/domain"
	financeErrors "github.com/sebuszqo/FinanceTracker/internal/finance/errors"
	"github.com/sebuszqo/FinanceTracker/internal/user"
)

type MockNamedService[T any] struct {
	Items     map[string]T
	Err       error
	LastInput domain.NamedInput
	LastUser  string
	build     func(id string, input domain.NamedInput) T
}

func newMockAccountService() *MockNamedService[domain.Account] {
	return &MockNamedService[domain.Account]{
		Items: map[string]domain.Account{"acc-1": {ID: "acc-1", Name: "Checking"}},
		build: func(id string, input domain.NamedInput) domain.Account {
			return domain.Account{ID: id, Name: input.Name, ExternalID: input.ExternalID}
		},
	}
}

func (m *MockNamedService[T]) List(ctx context.Context, userID string) ([]T, error) {
	m.LastUser = userID
	if m.Err != nil {
		return nil, m.Err
	}
	items := []T{}
	for _, item := range m.Items {
		items = append(items, item)
	}
	return items, nil
}

func (m *MockNamedService[T]) Get(ctx context.Context, userID, id string) (*T, error) {
	item, ok := m.Items[id]
	if !ok {
		return nil, financeErrors.ErrNotFound
	}
	return &item, nil
}

func (m *MockNamedService[T]) Create(ctx context.Context, userID string, input domain.NamedInput) (*T, error) {
	m.LastInput = input
	if err := input.Validate(); err != nil {
		return nil, err
	}
	if m.Err != nil {
		return nil, m.Err
	}
	item := m.build("new-id", input)
	return &item, nil
}

func (m *MockNamedService[T]) Update(ctx context.Context, userID, id string, input domain.NamedInput) (*T, error) {
	if _, ok := m.Items[id]; !ok {
		return nil, financeErrors.ErrNotFound
	}
	item := m.build(id, input)
	m.Items[id] = item
	return &item, nil
}

func (m *MockNamedService[T]) Delete(ctx context.Context, userID, id string) ([]string, error) {
	if _, ok := m.Items[id]; !ok {
		return nil, financeErrors.ErrNotFound
	}
	delete(m.Items, id)
	return []string{id}, nil
}

func (m *MockNamedService[T]) BulkDelete(ctx context.Context, userID string, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, financeErrors.ErrNoIDs
	}
	deleted := []string{}
	for _, id := range ids {
		if _, ok := m.Items[id]; ok {
			delete(m.Items, id)
			deleted = append(deleted, id)
		}
	}
	return deleted, nil
}

type MockTransactionService struct {
	LastFilter domain.TransactionFilter
	LastInputs []domain.TransactionInput
	Err        error
}

func (m *MockTransactionService) List(ctx context.Context, userID string, filter domain.TransactionFilter) ([]domain.TransactionView, error) {
	m.LastFilter = filter
	return []domain.TransactionView{}, nil
}

func (m *MockTransactionService) Get(ctx context.Context, userID, id string) (*domain.Transaction, error) {
	return nil, financeErrors.ErrNotFound
}

func (m *MockTransactionService) Create(ctx context.Context, userID string, input domain.TransactionInput) (*domain.Transaction, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return &domain.Transaction{ID: "tx-1", Amount: input.Amount, Payee: input.Payee, Date: input.Date, AccountID: input.AccountID}, nil
}

func (m *MockTransactionService) CreateBulk(ctx context.Context, userID string, inputs []domain.TransactionInput) ([]domain.Transaction, error) {
	m.LastInputs = inputs
	validationErrors := &financeErrors.ValidationErrors{}
	for i := range inputs {
		if err := inputs[i].Validate(); err != nil {
			validationErrors.Add(financeErrors.NewIndexedValidationError(i+1, err.Error()))
		}
	}
	if len(validationErrors.Errors) > 0 {
		return nil, validationErrors
	}
	return make([]domain.Transaction, len(inputs)), nil
}

func (m *MockTransactionService) Update(ctx context.Context, userID, id string, input domain.TransactionInput) (*domain.Transaction, error) {
	return nil, financeErrors.ErrInvalidAccount
}

func (m *MockTransactionService) Delete(ctx context.Context, userID, id string) ([]string, error) {
	return []string{id}, nil
}

func (m *MockTransactionService) BulkDelete(ctx context.Context, userID string, ids []string) ([]string, error) {
	return ids, nil
}

type MockSummaryService struct {
	LastQuery domain.SummaryQuery
	Err       error
}

func (m *MockSummaryService) GetSummary(ctx context.Context, userID string, q domain.SummaryQuery) (*domain.Summary, error) {
	m.LastQuery = q
	if m.Err != nil {
		return nil, m.Err
	}
	if !q.From.IsZero() && !q.To.IsZero() && q.From.After(q.To.Time) {
		return nil, financeErrors.ErrInvalidRange
	}
	return &domain.Summary{
		Current:       domain.PeriodTotals{Income: 5000, Expenses: -2000, Balance: 3000},
		TopCategories: []domain.CategorySpending{},
		Days:          []domain.DayTotals{},
	}, nil
}

// testAuth trusts the X-User header, standing in for the access token middleware.
func testAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get("X-User")
		if userID == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(user.WithID(r.Context(), userID)))
	})
}
