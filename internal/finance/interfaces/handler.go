package interfaces

import (
	"encoding/json"
	"errors"
	"net/http"

	financeErrors "github.com/sebuszqo/FinanceTracker/internal/finance/errors"
	"github.com/sebuszqo/FinanceTracker/internal/log"
	"github.com/sebuszqo/FinanceTracker/internal/user"
)

type RespondJSONFunc func(w http.ResponseWriter, status int, payload interface{})

type RespondErrorFunc func(w http.ResponseWriter, status int, message string, errors ...[]string)

// responders holds the JSON writers shared by every finance handler.
type responders struct {
	respondJSON  RespondJSONFunc
	respondError RespondErrorFunc
}

func newResponders(respondJSON RespondJSONFunc, respondError RespondErrorFunc) responders {
	if respondJSON == nil || respondError == nil {
		panic("response functions must not be nil")
	}
	return responders{respondJSON: respondJSON, respondError: respondError}
}

type deletedRow struct {
	ID string `json:"id"`
}

type bulkDeleteRequest struct {
	IDs []string `json:"ids"`
}

func (h responders) data(w http.ResponseWriter, status int, payload interface{}) {
	h.respondJSON(w, status, map[string]interface{}{"data": payload})
}

// deleted writes the removed ids as [{"id": ...}].
func (h responders) deleted(w http.ResponseWriter, ids []string) {
	rows := make([]deletedRow, len(ids))
	for i, id := range ids {
		rows[i] = deletedRow{ID: id}
	}
	h.respondJSON(w, http.StatusOK, rows)
}

func (h responders) userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := user.IDFromContext(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return "", false
	}
	return userID, true
}

func (h responders) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// serviceError maps a service failure to a status code. Anything unexpected
// is logged and reported as failure.
func (h responders) serviceError(w http.ResponseWriter, r *http.Request, err error, failure string) {
	var validationErrors *financeErrors.ValidationErrors
	switch {
	case errors.As(err, &validationErrors):
		h.respondError(w, http.StatusBadRequest, "Validation errors occurred", validationErrors.Messages())
	case financeErrors.IsValidationError(err):
		h.respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, financeErrors.ErrNotFound):
		h.respondError(w, http.StatusNotFound, "Not found")
	default:
		log.FromContext(r.Context()).WithComponent(log.ComponentFinance).
			ErrorContext(r.Context(), failure, "error", err, "path", r.URL.Path)
		h.respondError(w, http.StatusInternalServerError, failure)
	}
}
