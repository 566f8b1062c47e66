package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rezkam/ledger/internal/application/ledger"
	"github.com/rezkam/ledger/internal/domain"
	"github.com/rezkam/ledger/internal/infrastructure/http/response"
	"github.com/rezkam/ledger/internal/ptr"
	"github.com/rezkam/ledger/internal/recurring"
)

// CreateTemplateRequest is the body of POST /v1/templates.
type CreateTemplateRequest struct {
	Amount         string  `json:"amount"`
	Type           string  `json:"type"`
	Description    string  `json:"description"`
	Category       string  `json:"category"`
	Account        string  `json:"account"`
	Frequency      string  `json:"frequency"`
	StartDate      string  `json:"start_date"`
	EndDate        *string `json:"end_date"`
	MaxOccurrences *int    `json:"max_occurrences"`
	Timezone       *string `json:"timezone"`
}

// UpdateTemplateRequest is the body of PATCH /v1/templates/{template_id}.
// Fields are applied only when named in UpdateMask; a null end_date,
// max_occurrences or category in the mask clears the value.
type UpdateTemplateRequest struct {
	UpdateMask     []string `json:"update_mask"`
	Etag           *string  `json:"etag"`
	Description    *string  `json:"description"`
	Amount         *string  `json:"amount"`
	Type           *string  `json:"type"`
	Category       *string  `json:"category"`
	Account        *string  `json:"account"`
	EndDate        *string  `json:"end_date"`
	MaxOccurrences *int     `json:"max_occurrences"`
	IsActive       *bool    `json:"is_active"`
}

// FrequencyDTO pairs a frequency value with its display name.
type FrequencyDTO struct {
	Value       string `json:"value"`
	DisplayName string `json:"display_name"`
}

// ListFrequencies handles GET /v1/frequencies.
func (h *LedgerHandler) ListFrequencies(w http.ResponseWriter, r *http.Request) {
	frequencies := domain.Frequencies()
	out := make([]FrequencyDTO, 0, len(frequencies))
	for _, f := range frequencies {
		out = append(out, FrequencyDTO{Value: string(f), DisplayName: recurring.FrequencyDisplayName(f)})
	}
	response.OK(w, map[string]any{"frequencies": out})
}

// CreateTemplate handles POST /v1/templates.
func (h *LedgerHandler) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	var req CreateTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON")
		return
	}

	amount, err := domain.NewAmount(req.Amount)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	// Bare dates are read on the template's own wall clock.
	loc, err := domain.LoadTimezone(req.Timezone)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	if strings.TrimSpace(req.StartDate) == "" {
		response.FromDomainError(w, r, domain.ErrStartDateRequired)
		return
	}
	start, err := parseDate(req.StartDate, loc)
	if err != nil {
		response.ValidationError(w, "start_date", err.Error())
		return
	}

	input := ledger.CreateTemplateInput{
		Amount:         amount,
		Type:           req.Type,
		Description:    req.Description,
		Category:       req.Category,
		Account:        req.Account,
		Frequency:      req.Frequency,
		StartDate:      start,
		MaxOccurrences: req.MaxOccurrences,
		Timezone:       req.Timezone,
	}

	if req.EndDate != nil {
		end, err := parseDate(*req.EndDate, loc)
		if err != nil {
			response.FromDomainError(w, r, domain.ErrInvalidEndDate)
			return
		}
		input.EndDate = &end
	}

	created, err := h.ledger.CreateTemplate(r.Context(), input)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to create recurring template via HTTP",
			"frequency", req.Frequency,
			"error", err)
		response.FromDomainError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "recurring template created via HTTP",
		"template_id", created.ID,
		"frequency", string(created.Frequency),
		"timezone", ptr.Deref(created.Timezone, "UTC"))

	response.Created(w, map[string]any{"template": MapTemplateToDTO(created)})
}

// ListTemplates handles GET /v1/templates?active=true.
func (h *LedgerHandler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	activeOnly := false
	if raw := r.URL.Query().Get("active"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			response.ValidationError(w, "active", "must be true or false")
			return
		}
		activeOnly = v
	}

	templates, err := h.ledger.ListTemplates(r.Context(), activeOnly)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	response.OK(w, map[string]any{"templates": MapTemplatesToDTO(templates)})
}

// GetTemplate handles GET /v1/templates/{template_id}.
func (h *LedgerHandler) GetTemplate(w http.ResponseWriter, r *http.Request) {
	template, err := h.ledger.GetTemplate(r.Context(), chi.URLParam(r, "template_id"))
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	response.OK(w, map[string]any{"template": MapTemplateToDTO(template)})
}

// UpdateTemplate handles PATCH /v1/templates/{template_id}.
// The etag may come from the body or an If-Match header.
func (h *LedgerHandler) UpdateTemplate(w http.ResponseWriter, r *http.Request) {
	templateID := chi.URLParam(r, "template_id")

	var req UpdateTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON")
		return
	}

	params := domain.UpdateTemplateParams{
		TemplateID:     templateID,
		Etag:           req.Etag,
		UpdateMask:     req.UpdateMask,
		Description:    req.Description,
		Category:       req.Category,
		Account:        req.Account,
		MaxOccurrences: req.MaxOccurrences,
		IsActive:       req.IsActive,
	}
	if params.Etag == nil {
		if ifMatch := strings.Trim(r.Header.Get("If-Match"), `"`); ifMatch != "" {
			params.Etag = ptr.To(ifMatch)
		}
	}

	if params.Has(domain.FieldAmount) && req.Amount != nil {
		amount, err := domain.NewAmount(*req.Amount)
		if err != nil {
			response.FromDomainError(w, r, err)
			return
		}
		params.Amount = &amount
	}

	if params.Has(domain.FieldType) && req.Type != nil {
		params.Type = ptr.To(domain.TransactionType(*req.Type))
	}

	if params.Has(domain.FieldEndDate) && req.EndDate != nil {
		end, ok := h.parseEndDate(w, r, templateID, *req.EndDate)
		if !ok {
			return
		}
		params.EndDate = end
	}

	updated, err := h.ledger.UpdateTemplate(r.Context(), params)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to update recurring template via HTTP",
			"template_id", templateID,
			"update_mask", params.UpdateMask,
			"error", err)
		response.FromDomainError(w, r, err)
		return
	}

	response.OK(w, map[string]any{"template": MapTemplateToDTO(updated)})
}

// parseEndDate reads a bare date on the stored template's wall clock.
// It writes the error response itself and reports whether parsing succeeded.
func (h *LedgerHandler) parseEndDate(w http.ResponseWriter, r *http.Request, templateID, raw string) (*time.Time, bool) {
	template, err := h.ledger.GetTemplate(r.Context(), templateID)
	if err != nil {
		response.FromDomainError(w, r, err)
		return nil, false
	}

	end, err := parseDate(raw, template.NextExecutionDate.Location())
	if err != nil {
		response.FromDomainError(w, r, domain.ErrInvalidEndDate)
		return nil, false
	}
	return &end, true
}

// DeleteTemplate handles DELETE /v1/templates/{template_id}.
func (h *LedgerHandler) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	templateID := chi.URLParam(r, "template_id")
	if err := h.ledger.DeleteTemplate(r.Context(), templateID); err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "recurring template deleted via HTTP", "template_id", templateID)
	response.NoContent(w)
}

// CheckDue handles GET /v1/templates/{template_id}/due.
func (h *LedgerHandler) CheckDue(w http.ResponseWriter, r *http.Request) {
	due, err := h.ledger.CheckDue(r.Context(), chi.URLParam(r, "template_id"))
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	response.OK(w, map[string]bool{"due": due})
}

// ListTransactions handles GET /v1/templates/{template_id}/transactions.
func (h *LedgerHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := h.ledger.ListTransactions(r.Context(), chi.URLParam(r, "template_id"))
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	if txs == nil {
		txs = []*domain.GeneratedTransaction{}
	}
	response.OK(w, map[string]any{"transactions": txs})
}
