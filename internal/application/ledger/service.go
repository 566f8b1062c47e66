package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rezkam/ledger/internal/domain"
	"github.com/rezkam/ledger/internal/ptr"
	"github.com/rezkam/ledger/internal/recurring"
)

// Default configuration values.
const (
	DefaultHorizonMonths = recurring.DefaultHorizonMonths
	MaxHorizonMonths     = 120
)

// Config holds configuration for the Service.
type Config struct {
	DefaultHorizonMonths int
	MaxHorizonMonths     int
	Clock                recurring.Clock
}

// Service provides business logic for recurring template management.
// It orchestrates operations using the Repository interface.
type Service struct {
	repo   Repository
	sink   Sink
	engine *recurring.Engine
	config Config
}

// NewService creates a new ledger service.
// Applies application defaults for zero or invalid config values.
// sink may be nil, in which case exports return ErrExportsDisabled.
func NewService(repo Repository, sink Sink, config Config) *Service {
	if config.MaxHorizonMonths <= 0 {
		config.MaxHorizonMonths = MaxHorizonMonths
	}
	if config.DefaultHorizonMonths <= 0 || config.DefaultHorizonMonths > config.MaxHorizonMonths {
		config.DefaultHorizonMonths = min(DefaultHorizonMonths, config.MaxHorizonMonths)
	}

	return &Service{
		repo:   repo,
		sink:   sink,
		engine: recurring.NewEngine(config.Clock),
		config: config,
	}
}

// CreateTemplateInput carries the client-supplied fields of a new template.
type CreateTemplateInput struct {
	Amount         decimal.Decimal
	Type           string
	Description    string
	Category       string
	Account        string
	Frequency      string
	StartDate      time.Time
	EndDate        *time.Time
	MaxOccurrences *int
	Timezone       *string
}

// CreateTemplate validates input and stores a new active template.
//
// The start date becomes the first occurrence and its day-of-month, read on the
// template's wall clock, becomes the anchor for monthly and yearly clamping.
func (s *Service) CreateTemplate(ctx context.Context, input CreateTemplateInput) (*domain.RecurringTemplate, error) {
	frequency, err := domain.NewFrequency(input.Frequency)
	if err != nil {
		return nil, err
	}

	typ, err := domain.NewTransactionType(input.Type)
	if err != nil {
		return nil, err
	}

	description, err := domain.NewDescription(input.Description)
	if err != nil {
		return nil, err
	}

	if !input.Amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}

	account := strings.TrimSpace(input.Account)
	if account == "" {
		return nil, domain.ErrAccountRequired
	}

	if input.StartDate.IsZero() {
		return nil, domain.ErrStartDateRequired
	}

	if input.MaxOccurrences != nil {
		if _, err := domain.NewMaxOccurrences(*input.MaxOccurrences); err != nil {
			return nil, err
		}
	}

	loc, err := domain.LoadTimezone(input.Timezone)
	if err != nil {
		return nil, err
	}
	var timezone *string
	if input.Timezone != nil && *input.Timezone != "" {
		timezone = ptr.To(*input.Timezone)
	}

	start := input.StartDate.In(loc)
	var endDate *time.Time
	if input.EndDate != nil {
		endDate = ptr.To(input.EndDate.In(loc))
	}

	idObj, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate id: %w", err)
	}

	now := s.engine.Now().UTC()
	template := &domain.RecurringTemplate{
		ID:                idObj.String(),
		Amount:            input.Amount,
		Type:              typ,
		Description:       description.String(),
		Category:          strings.TrimSpace(input.Category),
		Account:           account,
		Frequency:         frequency,
		OriginalTargetDay: ptr.To(start.Day()),
		OriginalTimeOfDay: ptr.To(domain.WallClock(start)),
		NextExecutionDate: start,
		EndDate:           endDate,
		MaxOccurrences:    input.MaxOccurrences,
		Timezone:          timezone,
		IsActive:          true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	created, err := s.repo.CreateTemplate(ctx, template)
	if err != nil {
		return nil, fmt.Errorf("failed to create template: %w", err)
	}

	return created, nil
}

// GetTemplate retrieves a template by ID.
func (s *Service) GetTemplate(ctx context.Context, id string) (*domain.RecurringTemplate, error) {
	if id == "" {
		return nil, domain.ErrTemplateNotFound
	}

	return s.repo.FindTemplateByID(ctx, id) // Repository returns domain errors
}

// ListTemplates lists templates, optionally only active ones.
func (s *Service) ListTemplates(ctx context.Context, activeOnly bool) ([]*domain.RecurringTemplate, error) {
	templates, err := s.repo.FindTemplates(ctx, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	return templates, nil
}

// UpdateTemplate updates a template using field mask.
// Schedule fields (frequency, next execution date, anchor day) cannot be changed;
// a different cadence is a new template.
func (s *Service) UpdateTemplate(ctx context.Context, params domain.UpdateTemplateParams) (*domain.RecurringTemplate, error) {
	if params.TemplateID == "" {
		return nil, domain.ErrTemplateNotFound
	}

	// Validate update mask and required fields
	if err := params.Validate(); err != nil {
		return nil, err
	}

	if params.Has(domain.FieldDescription) {
		description, err := domain.NewDescription(*params.Description)
		if err != nil {
			return nil, err
		}
		params.Description = ptr.To(description.String())
	}

	if params.Has(domain.FieldAmount) && !params.Amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}

	if params.Has(domain.FieldType) {
		typ, err := domain.NewTransactionType(string(*params.Type))
		if err != nil {
			return nil, err
		}
		params.Type = ptr.To(typ)
	}

	if params.Has(domain.FieldAccount) {
		account := strings.TrimSpace(*params.Account)
		if account == "" {
			return nil, domain.ErrAccountRequired
		}
		params.Account = ptr.To(account)
	}

	if params.Has(domain.FieldCategory) && params.Category != nil {
		params.Category = ptr.To(strings.TrimSpace(*params.Category))
	}

	if params.Has(domain.FieldMaxOccurrences) && params.MaxOccurrences != nil {
		if _, err := domain.NewMaxOccurrences(*params.MaxOccurrences); err != nil {
			return nil, err
		}
	}

	return s.repo.UpdateTemplate(ctx, params)
}

// SetActive pauses or resumes a template. A paused template is never due.
func (s *Service) SetActive(ctx context.Context, id string, active bool) (*domain.RecurringTemplate, error) {
	return s.UpdateTemplate(ctx, domain.UpdateTemplateParams{
		TemplateID: id,
		UpdateMask: []string{domain.FieldIsActive},
		IsActive:   ptr.To(active),
	})
}

// DeleteTemplate deletes a template.
func (s *Service) DeleteTemplate(ctx context.Context, id string) error {
	if id == "" {
		return domain.ErrTemplateNotFound
	}

	return s.repo.DeleteTemplate(ctx, id)
}

// CheckDue reports whether the template's next occurrence is due now.
func (s *Service) CheckDue(ctx context.Context, id string) (bool, error) {
	template, err := s.GetTemplate(ctx, id)
	if err != nil {
		return false, err
	}
	return s.engine.IsDue(template), nil
}

// Forecast previews the template's upcoming occurrences without changing it.
// horizonMonths of 0 uses the configured default.
func (s *Service) Forecast(ctx context.Context, id string, horizonMonths int) ([]domain.GeneratedTransaction, error) {
	horizon, err := s.horizon(horizonMonths)
	if err != nil {
		return nil, err
	}

	template, err := s.GetTemplate(ctx, id)
	if err != nil {
		return nil, err
	}

	return s.engine.Forecast(template, horizon)
}

// ListTransactions lists transactions generated from a template, newest first.
func (s *Service) ListTransactions(ctx context.Context, templateID string) ([]*domain.GeneratedTransaction, error) {
	// Confirm the template exists so an unknown ID is a 404, not an empty list.
	if _, err := s.GetTemplate(ctx, templateID); err != nil {
		return nil, err
	}

	txs, err := s.repo.FindTransactionsByTemplate(ctx, templateID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return txs, nil
}

func (s *Service) horizon(months int) (int, error) {
	if months == 0 {
		return s.config.DefaultHorizonMonths, nil
	}
	if months < 0 || months > s.config.MaxHorizonMonths {
		return 0, fmt.Errorf("%w: %d", domain.ErrInvalidHorizon, months)
	}
	return months, nil
}
