package interfaces

import (
	"context"
	"net/http"

	"github.com/sebuszqo/FinanceTracker/internal/finance/domain"
)

type SummaryServiceInterface interface {
	GetSummary(ctx context.Context, userID string, q domain.SummaryQuery) (*domain.Summary, error)
}

type SummaryHandler struct {
	responders
	service SummaryServiceInterface
}

func NewSummaryHandler(service SummaryServiceInterface, respondJSON RespondJSONFunc, respondError RespondErrorFunc) *SummaryHandler {
	if service == nil {
		panic("service must not be nil")
	}
	return &SummaryHandler{
		responders: newResponders(respondJSON, respondError),
		service:    service,
	}
}

func (h *SummaryHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	from, to, ok := h.dateRange(w, r)
	if !ok {
		return
	}

	q := domain.SummaryQuery{From: from, To: to, AccountID: r.URL.Query().Get("account_id")}
	summary, err := h.service.GetSummary(r.Context(), userID, q)
	if err != nil {
		h.serviceError(w, r, err, "Failed to compute summary")
		return
	}
	h.data(w, http.StatusOK, summary)
}
