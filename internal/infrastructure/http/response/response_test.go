package response_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezkam/ledger/internal/application/ledger"
	"github.com/rezkam/ledger/internal/domain"
	"github.com/rezkam/ledger/internal/infrastructure/http/response"
)

// unencodableType fails during JSON encoding.
type unencodableType struct{}

func (unencodableType) MarshalJSON() ([]byte, error) {
	return nil, errors.New("cannot encode")
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) response.ErrorResponse {
	t.Helper()
	var body response.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func TestOK_Success_ReturnsValidJSON(t *testing.T) {
	w := httptest.NewRecorder()
	response.OK(w, map[string]string{"status": "ok"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestCreated_Success_ReturnsValidJSON(t *testing.T) {
	w := httptest.NewRecorder()
	response.Created(w, map[string]int{"n": 1})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"n":1}`, w.Body.String())
}

func TestOK_EncodingFailure_Returns500WithErrorJSON(t *testing.T) {
	for name, send := range map[string]func(http.ResponseWriter, any){
		"ok":      response.OK,
		"created": response.Created,
	} {
		t.Run(name, func(t *testing.T) {
			w := httptest.NewRecorder()
			send(w, unencodableType{})

			assert.Equal(t, http.StatusInternalServerError, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			body := decodeError(t, w)
			assert.Equal(t, "INTERNAL_ERROR", body.Error.Code)
			assert.Equal(t, "failed to encode response", body.Error.Message)
		})
	}
}

func TestError_HasEmptyDetailsArray(t *testing.T) {
	w := httptest.NewRecorder()
	response.BadRequest(w, "invalid JSON")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":{"code":"INVALID_REQUEST","message":"invalid JSON","details":[]}}`, w.Body.String())
}

func TestFromDomainError(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
		wantCode   string
		wantField  string
	}{
		{domain.ErrInvalidFrequency, http.StatusBadRequest, "VALIDATION_ERROR", "frequency"},
		{fmt.Errorf("wrapped: %w", domain.ErrInvalidAmount), http.StatusBadRequest, "VALIDATION_ERROR", "amount"},
		{domain.ErrInvalidTransactionType, http.StatusBadRequest, "VALIDATION_ERROR", "type"},
		{domain.ErrDescriptionTooLong, http.StatusBadRequest, "VALIDATION_ERROR", "description"},
		{domain.ErrInvalidTimezone, http.StatusBadRequest, "VALIDATION_ERROR", "timezone"},
		{domain.ErrInvalidTimeOfDay, http.StatusBadRequest, "VALIDATION_ERROR", "original_time_of_day"},
		{domain.ErrInvalidEndDate, http.StatusBadRequest, "VALIDATION_ERROR", "end_date"},
		{domain.ErrInvalidHorizon, http.StatusBadRequest, "VALIDATION_ERROR", "horizon_months"},
		{domain.ErrImmutableField, http.StatusBadRequest, "VALIDATION_ERROR", "update_mask"},
		{domain.ErrInvalidID, http.StatusBadRequest, "VALIDATION_ERROR", "id"},
		{domain.ErrTemplateNotFound, http.StatusNotFound, "NOT_FOUND", ""},
		{fmt.Errorf("read: %w", domain.ErrNotFound), http.StatusNotFound, "NOT_FOUND", ""},
		{domain.ErrVersionConflict, http.StatusConflict, "CONFLICT", ""},
		{ledger.ErrExportsDisabled, http.StatusNotImplemented, "EXPORTS_DISABLED", ""},
		{errors.New("disk on fire"), http.StatusInternalServerError, "INTERNAL_ERROR", ""},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/", nil)

			response.FromDomainError(w, r, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			body := decodeError(t, w)
			assert.Equal(t, tt.wantCode, body.Error.Code)
			if tt.wantField != "" {
				require.Len(t, body.Error.Details, 1)
				assert.Equal(t, tt.wantField, body.Error.Details[0].Field)
			}
		})
	}
}

func TestInternalError_HidesCause(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	response.InternalError(w, r, errors.New("password=hunter2"))

	assert.NotContains(t, w.Body.String(), "hunter2")
}
