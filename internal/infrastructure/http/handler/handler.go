package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rezkam/ledger/internal/application/ledger"
	"github.com/rezkam/ledger/internal/application/scheduler"
)

// SchedulerRunner runs a single scheduling cycle on demand.
type SchedulerRunner interface {
	RunOnce(ctx context.Context) (scheduler.Result, error)
}

// LedgerHandler adapts HTTP requests to ledger and scheduler calls.
type LedgerHandler struct {
	ledger    *ledger.Service
	scheduler SchedulerRunner
}

// NewLedgerHandler creates a new HTTP API handler.
func NewLedgerHandler(ledgerService *ledger.Service, runner SchedulerRunner) *LedgerHandler {
	return &LedgerHandler{
		ledger:    ledgerService,
		scheduler: runner,
	}
}

// NewRouter mounts the versioned API routes. Production code and tests share it.
func NewRouter(ledgerService *ledger.Service, runner SchedulerRunner) http.Handler {
	h := NewLedgerHandler(ledgerService, runner)

	r := chi.NewRouter()
	r.Route("/v1", func(r chi.Router) {
		r.Get("/frequencies", h.ListFrequencies)

		r.Route("/templates", func(r chi.Router) {
			r.Post("/", h.CreateTemplate)
			r.Get("/", h.ListTemplates)

			r.Route("/{template_id}", func(r chi.Router) {
				r.Get("/", h.GetTemplate)
				r.Patch("/", h.UpdateTemplate)
				r.Delete("/", h.DeleteTemplate)
				r.Get("/due", h.CheckDue)
				r.Get("/transactions", h.ListTransactions)

				r.Get("/forecast", h.Forecast)
				r.Post("/forecast/exports", h.ExportForecast)
				r.Get("/forecast/exports", h.ListExports)
				r.Get("/forecast/exports/{export_name}", h.GetExport)
			})
		})

		r.Post("/scheduler/run", h.RunScheduler)
	})

	return r
}
