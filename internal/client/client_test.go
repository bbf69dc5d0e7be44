package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sebuszqo/FinanceTracker/internal/finance/domain"
	"github.com/sebuszqo/FinanceTracker/internal/respond"
)

type fakeAPI struct {
	mu      sync.Mutex
	hits    map[string]int
	release chan struct{}
	server  *httptest.Server
}

func newFakeAPI(t *testing.T) *fakeAPI {
	api := &fakeAPI{hits: map[string]int{}}
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/auth/register", func(w http.ResponseWriter, r *http.Request) {
		respond.Data(w, http.StatusCreated, map[string]string{"user_id": "user-1"})
	})
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req["email_or_login"] == "otp-user" {
			respond.Data(w, http.StatusOK, map[string]string{"session_token": "session-1"})
			return
		}
		if req["password"] != "secret123" {
			respond.Error(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		respond.Data(w, http.StatusOK, map[string]string{"access_token": "token-1"})
	})
	mux.HandleFunc("GET /api/protected/accounts", func(w http.ResponseWriter, r *http.Request) {
		api.hit(r)
		if r.Header.Get("Authorization") != "Bearer token-1" {
			respond.Error(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		api.mu.Lock()
		release := api.release
		api.mu.Unlock()
		if release != nil {
			<-release
		}
		respond.Data(w, http.StatusOK, []domain.Account{{ID: "acc-1", Name: "Checking"}})
	})
	mux.HandleFunc("POST /api/protected/accounts", func(w http.ResponseWriter, r *http.Request) {
		var input domain.NamedInput
		_ = json.NewDecoder(r.Body).Decode(&input)
		if input.Name == "" {
			respond.Error(w, http.StatusBadRequest, "Name is required")
			return
		}
		respond.Data(w, http.StatusCreated, domain.Account{ID: "acc-2", Name: input.Name})
	})
	mux.HandleFunc("GET /api/protected/transactions", func(w http.ResponseWriter, r *http.Request) {
		api.hit(r)
		category := "Food"
		respond.Data(w, http.StatusOK, []domain.TransactionView{{
			Transaction: domain.Transaction{ID: "tx-1", Amount: -12340, Payee: "Bistro", Date: domain.NewDate(2024, time.March, 2), AccountID: "acc-1"},
			Account:     "Checking",
			Category:    &category,
		}})
	})
	mux.HandleFunc("POST /api/protected/transactions", func(w http.ResponseWriter, r *http.Request) {
		var input domain.TransactionInput
		_ = json.NewDecoder(r.Body).Decode(&input)
		respond.Data(w, http.StatusCreated, domain.Transaction{ID: "tx-2", Amount: input.Amount, Payee: input.Payee, Date: input.Date, AccountID: input.AccountID})
	})
	mux.HandleFunc("POST /api/protected/transactions/bulk-create", func(w http.ResponseWriter, r *http.Request) {
		respond.Error(w, http.StatusBadRequest, "Validation errors occurred", []string{"Validation error at transaction 1: Payee is required"})
	})
	mux.HandleFunc("DELETE /api/protected/categories/{id}", func(w http.ResponseWriter, r *http.Request) {
		respond.JSON(w, http.StatusOK, []map[string]string{{"id": r.PathValue("id")}})
	})
	mux.HandleFunc("POST /api/protected/transactions/bulk-delete", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			IDs []string `json:"ids"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		rows := make([]map[string]string, len(req.IDs))
		for i, id := range req.IDs {
			rows[i] = map[string]string{"id": id}
		}
		respond.JSON(w, http.StatusOK, rows)
	})
	mux.HandleFunc("GET /api/protected/summary", func(w http.ResponseWriter, r *http.Request) {
		api.hit(r)
		respond.Data(w, http.StatusOK, domain.Summary{
			Current:       domain.PeriodTotals{Income: 250000, Expenses: -12340, Balance: 237660},
			TopCategories: []domain.CategorySpending{{Name: "Food", Value: 12340}},
			Days:          []domain.DayTotals{{Date: domain.NewDate(2024, time.March, 2), Expenses: -12340}},
		})
	})

	api.server = httptest.NewServer(mux)
	t.Cleanup(api.server.Close)
	return api
}

func (a *fakeAPI) hit(r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.hits[r.URL.Path]++
}

func (a *fakeAPI) hitsFor(path string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.hits[path]
}

func loggedInClient(t *testing.T, api *fakeAPI) *Client {
	t.Helper()
	c := New(api.server.URL)
	result, err := c.Login(context.Background(), "demo", "secret123")
	require.NoError(t, err)
	require.False(t, result.TwoFactorRequired)
	return c
}

func TestClient_RegisterAndLogin(t *testing.T) {
	api := newFakeAPI(t)
	c := New(api.server.URL + "/")
	ctx := context.Background()

	userID, err := c.Register(ctx, "demo@example.com", "demo", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)

	_, err = c.Login(ctx, "demo", "wrong")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "Invalid credentials", apiErr.Message)
	assert.Empty(t, c.Token())

	result, err := c.Login(ctx, "otp-user", "secret123")
	require.NoError(t, err)
	assert.True(t, result.TwoFactorRequired)
	assert.Equal(t, "session-1", result.SessionToken)

	_, err = c.Login(ctx, "demo", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "token-1", c.Token())
}

func TestClient_QueriesAreCached(t *testing.T) {
	api := newFakeAPI(t)
	c := loggedInClient(t, api)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		accounts, err := c.ListAccounts(ctx)
		require.NoError(t, err)
		require.Len(t, accounts, 1)
		assert.Equal(t, "Checking", accounts[0].Name)
	}
	assert.Equal(t, 1, api.hitsFor("/api/protected/accounts"))
}

func TestClient_ConcurrentQueriesShareOneRequest(t *testing.T) {
	api := newFakeAPI(t)
	release := make(chan struct{})
	api.mu.Lock()
	api.release = release
	api.mu.Unlock()
	c := loggedInClient(t, api)

	var wg sync.WaitGroup
	var failures int32
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.ListAccounts(context.Background()); err != nil {
				atomic.AddInt32(&failures, 1)
			}
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Zero(t, atomic.LoadInt32(&failures))
	assert.Equal(t, 1, api.hitsFor("/api/protected/accounts"))
}

func TestClient_MutationDuringQueryIsNotCached(t *testing.T) {
	api := newFakeAPI(t)
	release := make(chan struct{})
	api.mu.Lock()
	api.release = release
	api.mu.Unlock()
	c := loggedInClient(t, api)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := c.ListAccounts(ctx)
		done <- err
	}()
	require.Eventually(t, func() bool {
		return api.hitsFor("/api/protected/accounts") == 1
	}, time.Second, 5*time.Millisecond)

	_, err := c.CreateAccount(ctx, domain.NamedInput{Name: "Savings"})
	require.NoError(t, err)
	close(release)
	require.NoError(t, <-done)

	_, err = c.ListAccounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, api.hitsFor("/api/protected/accounts"))

	_, err = c.ListAccounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, api.hitsFor("/api/protected/accounts"))
}

func TestClient_MutationsInvalidateDependents(t *testing.T) {
	api := newFakeAPI(t)
	c := loggedInClient(t, api)
	ctx := context.Background()

	warm := func() {
		_, err := c.ListAccounts(ctx)
		require.NoError(t, err)
		_, err = c.ListTransactions(ctx, TransactionFilter{})
		require.NoError(t, err)
		_, err = c.GetSummary(ctx, TransactionFilter{})
		require.NoError(t, err)
	}

	warm()
	warm()
	assert.Equal(t, 1, api.hitsFor("/api/protected/summary"))

	_, err := c.CreateTransaction(ctx, TransactionInput{
		Amount: decimal.RequireFromString("-5.5"), Payee: "Cafe", Date: domain.NewDate(2024, time.March, 3), AccountID: "acc-1",
	})
	require.NoError(t, err)
	warm()
	assert.Equal(t, 1, api.hitsFor("/api/protected/accounts"))
	assert.Equal(t, 2, api.hitsFor("/api/protected/transactions"))
	assert.Equal(t, 2, api.hitsFor("/api/protected/summary"))

	_, err = c.CreateAccount(ctx, domain.NamedInput{Name: "Savings"})
	require.NoError(t, err)
	warm()
	assert.Equal(t, 2, api.hitsFor("/api/protected/accounts"))
	assert.Equal(t, 3, api.hitsFor("/api/protected/transactions"))
	assert.Equal(t, 3, api.hitsFor("/api/protected/summary"))

	ids, err := c.DeleteCategory(ctx, "cat-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"cat-1"}, ids)
	warm()
	assert.Equal(t, 2, api.hitsFor("/api/protected/accounts"))
	assert.Equal(t, 4, api.hitsFor("/api/protected/transactions"))
}

func TestClient_FailedMutationKeepsCache(t *testing.T) {
	api := newFakeAPI(t)
	c := loggedInClient(t, api)
	ctx := context.Background()

	_, err := c.ListAccounts(ctx)
	require.NoError(t, err)

	_, err = c.CreateAccount(ctx, domain.NamedInput{Name: ""})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)

	_, err = c.ListAccounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, api.hitsFor("/api/protected/accounts"))
}

func TestClient_AmountsUseDisplayUnits(t *testing.T) {
	api := newFakeAPI(t)
	c := loggedInClient(t, api)
	ctx := context.Background()

	created, err := c.CreateTransaction(ctx, TransactionInput{
		Amount: decimal.RequireFromString("12.34"), Payee: "Refund", Date: domain.NewDate(2024, time.March, 3), AccountID: "acc-1",
	})
	require.NoError(t, err)
	assert.True(t, created.Amount.Equal(decimal.RequireFromString("12.34")), created.Amount.String())

	transactions, err := c.ListTransactions(ctx, TransactionFilter{AccountID: "acc-1"})
	require.NoError(t, err)
	require.Len(t, transactions, 1)
	assert.Equal(t, "-12.34", transactions[0].Amount.String())
	assert.Equal(t, "Checking", transactions[0].Account)
	assert.Equal(t, "Food", *transactions[0].Category)

	summary, err := c.GetSummary(ctx, TransactionFilter{From: domain.NewDate(2024, time.March, 1), To: domain.NewDate(2024, time.March, 31)})
	require.NoError(t, err)
	assert.Equal(t, "250", summary.Current.Income.String())
	assert.Equal(t, "237.66", summary.Current.Balance.String())
	assert.Equal(t, "12.34", summary.TopCategories[0].Value.String())
	assert.Equal(t, "-12.34", summary.Days[0].Expenses.String())
}

func TestClient_BulkOperations(t *testing.T) {
	api := newFakeAPI(t)
	c := loggedInClient(t, api)
	ctx := context.Background()

	_, err := c.BulkCreateTransactions(ctx, []TransactionInput{{Amount: decimal.NewFromInt(1)}})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, []string{"Validation error at transaction 1: Payee is required"}, apiErr.Errors)
	assert.Contains(t, apiErr.Error(), "Payee is required")

	ids, err := c.BulkDeleteTransactions(ctx, []string{"tx-1", "tx-2"})
	require.NoError(t, err)
	assert.Equal(t, []string{"tx-1", "tx-2"}, ids)
}

func TestRangeQuery(t *testing.T) {
	assert.Equal(t, "", rangeQuery(domain.Date{}, domain.Date{}, ""))
	assert.Equal(t, "?account_id=a+b&from=2024-03-01",
		rangeQuery(domain.NewDate(2024, time.March, 1), domain.Date{}, "a b"))
}
