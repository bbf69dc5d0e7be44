package interfaces

import (
	"net/http"

	"github.com/sebuszqo/FinanceTracker/internal/finance/domain"
)

type Handlers struct {
	Accounts     *NamedHandler[domain.Account]
	Categories   *NamedHandler[domain.Category]
	Transactions *TransactionHandler
	Summary      *SummaryHandler
}

type crudHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
	BulkDelete(w http.ResponseWriter, r *http.Request)
}

// RegisterRoutes mounts every finance endpoint under /api/protected, each wrapped by protect.
func (h Handlers) RegisterRoutes(mux *http.ServeMux, protect func(http.Handler) http.Handler) {
	handle := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(pattern, protect(fn))
	}
	crud := func(resource domain.Resource, c crudHandler) {
		base := "/api/protected/" + resource.String()
		handle("GET "+base, c.List)
		handle("POST "+base, c.Create)
		handle("POST "+base+"/bulk-delete", c.BulkDelete)
		handle("GET "+base+"/{id}", c.Get)
		handle("PATCH "+base+"/{id}", c.Update)
		handle("DELETE "+base+"/{id}", c.Delete)
	}

	crud(domain.ResourceAccounts, h.Accounts)
	crud(domain.ResourceCategories, h.Categories)
	crud(domain.ResourceTransactions, h.Transactions)
	handle("POST /api/protected/transactions/bulk-create", h.Transactions.CreateBulk)

	handle("GET /api/protected/summary", h.Summary.Get)
}
