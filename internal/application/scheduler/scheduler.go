package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/rezkam/ledger/internal/domain"
	"github.com/rezkam/ledger/internal/recurring"
)

const instrumentationName = "github.com/rezkam/ledger/internal/application/scheduler"

// Occurrence outcomes recorded on the ledger.scheduler.occurrences counter.
const (
	outcomeMaterialized = "materialized"
	outcomeDuplicate    = "duplicate"
	outcomeConflict     = "conflict"
	outcomeFailed       = "failed"
)

// Result summarizes one scheduling cycle.
type Result struct {
	Checked      int `json:"checked"`
	Due          int `json:"due"`
	Materialized int `json:"materialized"`
	Duplicates   int `json:"duplicates"`
	Conflicts    int `json:"conflicts"`
	Failed       int `json:"failed"`
}

// Scheduler drives the due -> materialize -> advance cycle over all active templates.
type Scheduler struct {
	repo             Repository
	clock            recurring.Clock
	interval         time.Duration
	operationTimeout time.Duration
	wg               sync.WaitGroup

	tracer      trace.Tracer
	occurrences metric.Int64Counter
	duration    metric.Float64Histogram
}

// Option is a functional option for configuring Scheduler.
type Option func(*Scheduler)

// WithInterval sets how often the scheduler checks templates.
func WithInterval(d time.Duration) Option {
	return func(s *Scheduler) {
		s.interval = d
	}
}

// WithOperationTimeout sets the timeout for a single cycle.
func WithOperationTimeout(d time.Duration) Option {
	return func(s *Scheduler) {
		s.operationTimeout = d
	}
}

// WithClock overrides the time source.
func WithClock(clock recurring.Clock) Option {
	return func(s *Scheduler) {
		s.clock = clock
	}
}

// New creates a new Scheduler with the given repository and options.
func New(repo Repository, opts ...Option) *Scheduler {
	s := &Scheduler{
		repo:             repo,
		clock:            recurring.SystemClock,
		interval:         1 * time.Hour,    // Default: check hourly
		operationTimeout: 30 * time.Second, // Default: 30s per cycle
	}

	for _, opt := range opts {
		opt(s)
	}

	meter := otel.Meter(instrumentationName)
	s.tracer = otel.Tracer(instrumentationName)

	var err error
	s.occurrences, err = meter.Int64Counter("ledger.scheduler.occurrences",
		metric.WithDescription("Due occurrences processed by the scheduler, by outcome"),
		metric.WithUnit("{occurrence}"),
	)
	if err != nil {
		otel.Handle(err)
	}
	s.duration, err = meter.Float64Histogram("ledger.scheduler.cycle.duration",
		metric.WithDescription("Duration of a scheduling cycle"),
		metric.WithUnit("s"),
	)
	if err != nil {
		otel.Handle(err)
	}

	return s
}

// Start runs the scheduler with a ticker loop.
// Runs until context is cancelled. On shutdown:
// 1. Stops starting new cycles
// 2. Waits for in-flight cycles to complete
// 3. Returns nil
func (s *Scheduler) Start(ctx context.Context) error {
	slog.InfoContext(ctx, "Scheduler started", "interval", s.interval)

	// Check immediately on startup
	startupCtx, startupCancel := context.WithTimeout(context.Background(), s.operationTimeout)
	if _, err := s.RunOnce(startupCtx); err != nil {
		slog.ErrorContext(startupCtx, "Error running scheduler on startup", "error", err)
	}
	startupCancel()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.wg.Go(func() {
				opCtx, cancel := context.WithTimeout(context.Background(), s.operationTimeout)
				defer cancel()
				if _, err := s.RunOnce(opCtx); err != nil {
					slog.ErrorContext(opCtx, "Error running scheduler", "error", err)
				}
			})
		case <-ctx.Done():
			slog.InfoContext(ctx, "Shutdown requested, waiting for in-flight cycles...")
			s.wg.Wait()
			slog.InfoContext(ctx, "Scheduler stopped gracefully")
			return nil
		}
	}
}

// RunOnce executes a single scheduling cycle.
//
// Each due template gets at most one occurrence per cycle; an overdue template
// catches up one step per call. Failures on one template are logged and counted
// and do not stop the others. An error is returned only when templates cannot be loaded.
func (s *Scheduler) RunOnce(ctx context.Context) (Result, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "scheduler.RunOnce")
	defer span.End()

	var result Result
	defer func() {
		s.duration.Record(ctx, time.Since(start).Seconds())
		span.SetAttributes(
			attribute.Int("ledger.templates.checked", result.Checked),
			attribute.Int("ledger.templates.due", result.Due),
			attribute.Int("ledger.occurrences.materialized", result.Materialized),
		)
	}()

	templates, err := s.repo.FindActiveTemplates(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to load templates")
		return result, fmt.Errorf("failed to get active templates: %w", err)
	}

	now := s.clock()
	result.Checked = len(templates)

	for _, template := range templates {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if !recurring.IsDue(template, now) {
			continue
		}
		result.Due++

		outcome, err := s.processTemplate(ctx, template, now)
		s.occurrences.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))

		switch outcome {
		case outcomeMaterialized:
			result.Materialized++
		case outcomeDuplicate:
			result.Duplicates++
		case outcomeConflict:
			result.Conflicts++
			slog.InfoContext(ctx, "Template already advanced by another runner", "template_id", template.ID)
		case outcomeFailed:
			result.Failed++
			slog.ErrorContext(ctx, "Failed to process template", "template_id", template.ID, "error", err)
		}
	}

	slog.InfoContext(ctx, "Scheduler cycle completed",
		"checked", result.Checked,
		"due", result.Due,
		"materialized", result.Materialized,
		"duplicates", result.Duplicates,
		"conflicts", result.Conflicts,
		"failed", result.Failed,
	)

	return result, nil
}

// processTemplate materializes the template's next occurrence and advances it in one transaction.
func (s *Scheduler) processTemplate(ctx context.Context, template *domain.RecurringTemplate, now time.Time) (string, error) {
	tx := recurring.Materialize(template, template.NextExecutionDate, now)

	advanced, err := recurring.AdvanceTemplate(template, now)
	if err != nil {
		return outcomeFailed, err
	}

	var inserted bool
	err = s.repo.Atomic(ctx, func(w OccurrenceWriter) error {
		var err error
		inserted, err = w.InsertTransactionIgnoreConflict(ctx, &tx)
		if err != nil {
			return fmt.Errorf("failed to insert transaction %s: %w", tx.ID, err)
		}
		if err := w.AdvanceTemplateSchedule(ctx, &advanced, template.NextExecutionDate); err != nil {
			return fmt.Errorf("failed to advance template: %w", err)
		}
		return nil
	})

	switch {
	case errors.Is(err, domain.ErrVersionConflict):
		return outcomeConflict, err
	case err != nil:
		return outcomeFailed, err
	case !inserted:
		// Occurrence survived an earlier run whose advance was lost; the advance now catches up.
		return outcomeDuplicate, nil
	default:
		return outcomeMaterialized, nil
	}
}
