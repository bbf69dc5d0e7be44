package interfaces

import (
	"context"
	"net/http"

	"github.com/sebuszqo/FinanceTracker/internal/finance/domain"
)

type NamedServiceInterface[T any] interface {
	List(ctx context.Context, userID string) ([]T, error)
	Get(ctx context.Context, userID, id string) (*T, error)
	Create(ctx context.Context, userID string, input domain.NamedInput) (*T, error)
	Update(ctx context.Context, userID, id string, input domain.NamedInput) (*T, error)
	Delete(ctx context.Context, userID, id string) ([]string, error)
	BulkDelete(ctx context.Context, userID string, ids []string) ([]string, error)
}

// NamedHandler serves the accounts and categories endpoints.
type NamedHandler[T any] struct {
	responders
	service NamedServiceInterface[T]
	plural  string
}

func NewNamedHandler[T any](
	service NamedServiceInterface[T],
	plural string,
	respondJSON RespondJSONFunc,
	respondError RespondErrorFunc,
) *NamedHandler[T] {
	if service == nil {
		panic("service must not be nil")
	}
	return &NamedHandler[T]{
		responders: newResponders(respondJSON, respondError),
		service:    service,
		plural:     plural,
	}
}

func (h *NamedHandler[T]) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	items, err := h.service.List(r.Context(), userID)
	if err != nil {
		h.serviceError(w, r, err, "Failed to retrieve "+h.plural)
		return
	}
	h.data(w, http.StatusOK, items)
}

func (h *NamedHandler[T]) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	item, err := h.service.Get(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		h.serviceError(w, r, err, "Failed to retrieve "+h.plural)
		return
	}
	h.data(w, http.StatusOK, item)
}

func (h *NamedHandler[T]) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	var input domain.NamedInput
	if !h.decode(w, r, &input) {
		return
	}
	item, err := h.service.Create(r.Context(), userID, input)
	if err != nil {
		h.serviceError(w, r, err, "Failed to create "+h.plural)
		return
	}
	h.data(w, http.StatusCreated, item)
}

func (h *NamedHandler[T]) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	var input domain.NamedInput
	if !h.decode(w, r, &input) {
		return
	}
	item, err := h.service.Update(r.Context(), userID, r.PathValue("id"), input)
	if err != nil {
		h.serviceError(w, r, err, "Failed to update "+h.plural)
		return
	}
	h.data(w, http.StatusOK, item)
}

func (h *NamedHandler[T]) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	ids, err := h.service.Delete(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		h.serviceError(w, r, err, "Failed to delete "+h.plural)
		return
	}
	h.deleted(w, ids)
}

func (h *NamedHandler[T]) BulkDelete(w http.ResponseWriter, r *http.Request) {
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
		h.serviceError(w, r, err, "Failed to delete "+h.plural)
		return
	}
	h.deleted(w, ids)
}
