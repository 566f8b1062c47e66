package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/rezkam/ledger/internal/domain"
	"github.com/rezkam/ledger/internal/infrastructure/http/response"
)

// horizonParam reads horizon_months; absent means 0, which the service maps to its default.
func horizonParam(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("horizon_months")
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.ErrInvalidHorizon
	}
	return n, nil
}

// Forecast handles GET /v1/templates/{template_id}/forecast?horizon_months=N.
func (h *LedgerHandler) Forecast(w http.ResponseWriter, r *http.Request) {
	horizon, err := horizonParam(r)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	txs, err := h.ledger.Forecast(r.Context(), chi.URLParam(r, "template_id"), horizon)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	if txs == nil {
		txs = []domain.GeneratedTransaction{}
	}
	response.OK(w, map[string]any{"transactions": txs})
}

// ExportForecast handles POST /v1/templates/{template_id}/forecast/exports?horizon_months=N.
func (h *LedgerHandler) ExportForecast(w http.ResponseWriter, r *http.Request) {
	templateID := chi.URLParam(r, "template_id")

	horizon, err := horizonParam(r)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	name, err := h.ledger.ExportForecast(r.Context(), templateID, horizon)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to export forecast via HTTP",
			"template_id", templateID,
			"error", err)
		response.FromDomainError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "forecast exported via HTTP",
		"template_id", templateID,
		"export", name)
	response.Created(w, map[string]string{"name": name})
}

// ListExports handles GET /v1/templates/{template_id}/forecast/exports.
func (h *LedgerHandler) ListExports(w http.ResponseWriter, r *http.Request) {
	names, err := h.ledger.ListExports(r.Context(), chi.URLParam(r, "template_id"))
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	if names == nil {
		names = []string{}
	}
	response.OK(w, map[string]any{"exports": names})
}

// GetExport handles GET /v1/templates/{template_id}/forecast/exports/{export_name}.
func (h *LedgerHandler) GetExport(w http.ResponseWriter, r *http.Request) {
	doc, err := h.ledger.GetExport(r.Context(), chi.URLParam(r, "template_id"), chi.URLParam(r, "export_name"))
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	response.OK(w, doc)
}
