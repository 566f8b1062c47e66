package handler

import (
	"log/slog"
	"net/http"

	"github.com/rezkam/ledger/internal/infrastructure/http/response"
)

// RunScheduler handles POST /v1/scheduler/run. It runs one cycle synchronously
// and reports what happened.
func (h *LedgerHandler) RunScheduler(w http.ResponseWriter, r *http.Request) {
	result, err := h.scheduler.RunOnce(r.Context())
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "scheduler cycle triggered via HTTP",
		"checked", result.Checked,
		"materialized", result.Materialized)
	response.OK(w, result)
}
