package application

import (
	"context"
	"sync"

	"github.com/sebuszqo/FinanceTracker/internal/events"
	"github.com/sebuszqo/FinanceTracker/internal/finance/domain"
	financeErrors "github.com/sebuszqo/FinanceTracker/internal/finance/errors"
)

type MockAccountRepository struct {
	Accounts []domain.Account
	Err      error
}

func (m *MockAccountRepository) List(ctx context.Context, userID string) ([]domain.Account, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	var result []domain.Account
	for _, a := range m.Accounts {
		if a.UserID == userID {
			result = append(result, a)
		}
	}
	return result, nil
}

func (m *MockAccountRepository) Get(ctx context.Context, userID, id string) (*domain.Account, error) {
	for _, a := range m.Accounts {
		if a.ID == id && a.UserID == userID {
			account := a
			return &account, nil
		}
	}
	return nil, financeErrors.ErrNotFound
}

func (m *MockAccountRepository) Create(ctx context.Context, userID, id string, input domain.NamedInput) (*domain.Account, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	account := domain.Account{ID: id, UserID: userID, Name: input.Name, ExternalID: input.ExternalID}
	m.Accounts = append(m.Accounts, account)
	return &account, nil
}

func (m *MockAccountRepository) Update(ctx context.Context, userID, id string, input domain.NamedInput) (*domain.Account, error) {
	for i, a := range m.Accounts {
		if a.ID == id && a.UserID == userID {
			m.Accounts[i].Name = input.Name
			account := m.Accounts[i]
			return &account, nil
		}
	}
	return nil, financeErrors.ErrNotFound
}

func (m *MockAccountRepository) Delete(ctx context.Context, userID string, ids []string) ([]string, error) {
	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	deleted := []string{}
	kept := m.Accounts[:0]
	for _, a := range m.Accounts {
		if a.UserID == userID && wanted[a.ID] {
			deleted = append(deleted, a.ID)
			continue
		}
		kept = append(kept, a)
	}
	m.Accounts = kept
	return deleted, nil
}

type MockCategoryRepository struct {
	Categories []domain.Category
}

func (m *MockCategoryRepository) List(ctx context.Context, userID string) ([]domain.Category, error) {
	var result []domain.Category
	for _, c := range m.Categories {
		if c.UserID == userID {
			result = append(result, c)
		}
	}
	return result, nil
}

func (m *MockCategoryRepository) Get(ctx context.Context, userID, id string) (*domain.Category, error) {
	return nil, financeErrors.ErrNotFound
}

func (m *MockCategoryRepository) Create(ctx context.Context, userID, id string, input domain.NamedInput) (*domain.Category, error) {
	category := domain.Category{ID: id, UserID: userID, Name: input.Name}
	m.Categories = append(m.Categories, category)
	return &category, nil
}

func (m *MockCategoryRepository) Update(ctx context.Context, userID, id string, input domain.NamedInput) (*domain.Category, error) {
	return nil, financeErrors.ErrNotFound
}

func (m *MockCategoryRepository) Delete(ctx context.Context, userID string, ids []string) ([]string, error) {
	return []string{}, nil
}

type MockTransactionRepository struct {
	Transactions []domain.Transaction
	LastFilter   domain.TransactionFilter
	BulkCalls    int
}

func (m *MockTransactionRepository) List(ctx context.Context, userID string, filter domain.TransactionFilter) ([]domain.TransactionView, error) {
	m.LastFilter = filter
	return nil, nil
}

func (m *MockTransactionRepository) Get(ctx context.Context, userID, id string) (*domain.Transaction, error) {
	for _, t := range m.Transactions {
		if t.ID == id {
			tx := t
			return &tx, nil
		}
	}
	return nil, financeErrors.ErrNotFound
}

func (m *MockTransactionRepository) Create(ctx context.Context, userID string, tx domain.Transaction) (*domain.Transaction, error) {
	m.Transactions = append(m.Transactions, tx)
	return &tx, nil
}

func (m *MockTransactionRepository) CreateBulk(ctx context.Context, userID string, txs []domain.Transaction) ([]domain.Transaction, error) {
	m.BulkCalls++
	m.Transactions = append(m.Transactions, txs...)
	return txs, nil
}

func (m *MockTransactionRepository) Update(ctx context.Context, userID string, tx domain.Transaction) (*domain.Transaction, error) {
	for i, t := range m.Transactions {
		if t.ID == tx.ID {
			m.Transactions[i] = tx
			return &tx, nil
		}
	}
	return nil, financeErrors.ErrNotFound
}

func (m *MockTransactionRepository) Delete(ctx context.Context, userID string, ids []string) ([]string, error) {
	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	deleted := []string{}
	kept := m.Transactions[:0]
	for _, t := range m.Transactions {
		if wanted[t.ID] {
			deleted = append(deleted, t.ID)
			continue
		}
		kept = append(kept, t)
	}
	m.Transactions = kept
	return deleted, nil
}

type MockSummaryRepository struct {
	mu       sync.Mutex
	Totals   map[string]domain.PeriodTotals // keyed by period start
	Spending []domain.CategorySpending
	Days     []domain.DayTotals
	Err      error

	// Gate, when set, holds PeriodTotals after it has read its result and
	// until Gate is closed. Entered, when set, receives once per held call.
	Gate    chan struct{}
	Entered chan struct{}

	Calls        int
	SeriesPeriod domain.Period
}

func (m *MockSummaryRepository) SetTotals(from string, totals domain.PeriodTotals) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Totals == nil {
		m.Totals = make(map[string]domain.PeriodTotals)
	}
	m.Totals[from] = totals
}

func (m *MockSummaryRepository) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Calls
}

func (m *MockSummaryRepository) PeriodTotals(ctx context.Context, userID, accountID string, period domain.Period) (domain.PeriodTotals, error) {
	m.mu.Lock()
	m.Calls++
	totals, err := m.Totals[period.From.String()], m.Err
	m.mu.Unlock()
	if err != nil {
		return domain.PeriodTotals{}, err
	}

	if m.Gate != nil {
		if m.Entered != nil {
			m.Entered <- struct{}{}
		}
		<-m.Gate
	}
	if err := ctx.Err(); err != nil {
		return domain.PeriodTotals{}, err
	}
	return totals, nil
}

func (m *MockSummaryRepository) CategorySpending(ctx context.Context, userID, accountID string, period domain.Period) ([]domain.CategorySpending, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	return m.Spending, nil
}

func (m *MockSummaryRepository) DailyTotals(ctx context.Context, userID, accountID string, period domain.Period) ([]domain.DayTotals, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	m.SeriesPeriod = period
	return m.Days, nil
}

type change struct {
	UserID   string
	Resource domain.Resource
	Action   events.Action
	IDs      []string
}

type recordingNotifier struct {
	changes []change
}

func (n *recordingNotifier) Changed(ctx context.Context, userID string, resource domain.Resource, action events.Action, ids []string) {
	n.changes = append(n.changes, change{UserID: userID, Resource: resource, Action: action, IDs: ids})
}
