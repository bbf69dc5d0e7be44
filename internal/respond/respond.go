// Package respond writes the JSON envelopes shared by every HTTP handler.
package respond

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

func JSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("JSON encoding error", "error", err)
	}
}

// Error writes {"status":"error","message","code"} plus "errors" when details are given.
func Error(w http.ResponseWriter, status int, message string, errors ...[]string) {
	payload := map[string]interface{}{
		"status":  "error",
		"message": message,
		"code":    status,
	}

	if len(errors) > 0 && len(errors[0]) > 0 {
		payload["errors"] = errors[0]
	}

	JSON(w, status, payload)
}

// Data wraps payload as {"data": payload}.
func Data(w http.ResponseWriter, status int, payload interface{}) {
	JSON(w, status, map[string]interface{}{"data": payload})
}
