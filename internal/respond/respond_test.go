package respond

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_WithDetails(t *testing.T) {
	w := httptest.NewRecorder()
	Error(w, http.StatusBadRequest, "Validation failed", []string{"a", "b"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "error", body["status"])
	assert.Equal(t, "Validation failed", body["message"])
	assert.Equal(t, float64(http.StatusBadRequest), body["code"])
	assert.Len(t, body["errors"], 2)
}

func TestError_WithoutDetails(t *testing.T) {
	w := httptest.NewRecorder()
	Error(w, http.StatusNotFound, "Not found", nil)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	_, hasErrors := body["errors"]
	assert.False(t, hasErrors)
}

func TestData(t *testing.T) {
	w := httptest.NewRecorder()
	Data(w, http.StatusCreated, map[string]string{"id": "1"})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"data":{"id":"1"}}`, w.Body.String())
}
