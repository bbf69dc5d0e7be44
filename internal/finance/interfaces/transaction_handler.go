package interfaces

import (
	"context"
	"net/http"

	"github.com/sebuszqo/FinanceTracker/internal/finance/domain"
)

type TransactionServiceInterface interface {
	List(ctx context.Context, userID string, filter domain.TransactionFilter) ([]domain.TransactionView, error)
	Get(ctx context.Context, userID, id string) (*domain.Transaction, error)
	Create(ctx context.Context, userID string, input domain.TransactionInput) (*domain.Transaction, error)
	CreateBulk(ctx context.Context, userID string, inputs []domain.TransactionInput) ([]domain.Transaction, error)
	Update(ctx context.Context, userID, id string, input domain.TransactionInput) (*domain.Transaction, error)
	Delete(ctx context.Context, userID, id string) ([]string, error)
	BulkDelete(ctx context.Context, userID string, ids []string) ([]string, error)
}

type TransactionHandler struct {
	responders
	service TransactionServiceInterface
}

func NewTransactionHandler(service TransactionServiceInterface, respondJSON RespondJSONFunc, respondError RespondErrorFunc) *TransactionHandler {
	if service == nil {
		panic("service must not be nil")
	}
	return &TransactionHandler{
		responders: newResponders(respondJSON, respondError),
		service:    service,
	}
}

// parseDateParam reads an optional YYYY-MM-DD query parameter; absent is the zero Date.
func parseDateParam(r *http.Request, name string) (domain.Date, error) {
	value := r.URL.Query().Get(name)
	if value == "" {
		return domain.Date{}, nil
	}
	return domain.ParseDate(value)
}

func (h responders) dateRange(w http.ResponseWriter, r *http.Request) (domain.Date, domain.Date, bool) {
	from, err := parseDateParam(r, "from")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid 'from' date format, expected YYYY-MM-DD")
		return domain.Date{}, domain.Date{}, false
	}
	to, err := parseDateParam(r, "to")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid 'to' date format, expected YYYY-MM-DD")
		return domain.Date{}, domain.Date{}, false
	}
	return from, to, true
}

func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	from, to, ok := h.dateRange(w, r)
	if !ok {
		return
	}

	filter := domain.TransactionFilter{From: from, To: to, AccountID: r.URL.Query().Get("account_id")}
	transactions, err := h.service.List(r.Context(), userID, filter)
	if err != nil {
		h.serviceError(w, r, err, "Failed to retrieve transactions")
		return
	}
	h.data(w, http.StatusOK, transactions)
}

func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	transaction, err := h.service.Get(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		h.serviceError(w, r, err, "Failed to retrieve transaction")
		return
	}
	h.data(w, http.StatusOK, transaction)
}

func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	var input domain.TransactionInput
	if !h.decode(w, r, &input) {
		return
	}
	transaction, err := h.service.Create(r.Context(), userID, input)
	if err != nil {
		h.serviceError(w, r, err, "Failed to create transaction")
		return
	}
	h.data(w, http.StatusCreated, transaction)
}

func (h *TransactionHandler) CreateBulk(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	var inputs []domain.TransactionInput
	if !h.decode(w, r, &inputs) {
		return
	}
	if len(inputs) == 0 {
		h.respondError(w, http.StatusBadRequest, "Invalid request body - no transactions provided")
		return
	}

	created, err := h.service.CreateBulk(r.Context(), userID, inputs)
	if err != nil {
		h.serviceError(w, r, err, "Failed to create transactions")
		return
	}
	h.data(w, http.StatusCreated, created)
}

func (h *TransactionHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	var input domain.TransactionInput
	if !h.decode(w, r, &input) {
		return
	}
	transaction, err := h.service.Update(r.Context(), userID, r.PathValue("id"), input)
	if err != nil {
		h.serviceError(w, r, err, "Failed to update transaction")
		return
	}
	h.data(w, http.StatusOK, transaction)
}

func (h *TransactionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	ids, err := h.service.Delete(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		h.serviceError(w, r, err, "Failed to delete transaction")
		return
	}
	h.deleted(w, ids)
}

func (h *TransactionHandler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	var req bulkDeleteRequest
	if !h.decode(w, r, &req) {
		return
	}
	ids, err := h.service.BulkDelete(r.Context(), userID, req.IDs)
	if err != nil {
		h.serviceError(w, r, err, "Failed to delete transactions")
		return
	}
	h.deleted(w, ids)
}
