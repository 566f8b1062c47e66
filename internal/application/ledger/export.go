package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/rezkam/ledger/internal/domain"
)

// ErrExportsDisabled is returned when no archive sink is configured.
var ErrExportsDisabled = errors.New("forecast exports are not configured")

const exportPrefix = "forecasts"

// ForecastExport is the document written for each exported forecast.
type ForecastExport struct {
	TemplateID    string                        `json:"template_id"`
	Frequency     domain.Frequency              `json:"frequency"`
	GeneratedAt   time.Time                     `json:"generated_at"`
	HorizonMonths int                           `json:"horizon_months"`
	Transactions  []domain.GeneratedTransaction `json:"transactions"`
}

// ExportForecast writes the template's forecast to the archive sink and returns the object name.
func (s *Service) ExportForecast(ctx context.Context, id string, horizonMonths int) (string, error) {
	if s.sink == nil {
		return "", ErrExportsDisabled
	}

	horizon, err := s.horizon(horizonMonths)
	if err != nil {
		return "", err
	}

	template, err := s.GetTemplate(ctx, id)
	if err != nil {
		return "", err
	}

	now := s.engine.Now().UTC()
	txs, err := s.engine.Forecast(template, horizon)
	if err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(ForecastExport{
		TemplateID:    template.ID,
		Frequency:     template.Frequency,
		GeneratedAt:   now,
		HorizonMonths: horizon,
		Transactions:  txs,
	}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode forecast: %w", err)
	}

	name := path.Join(exportPrefix, template.ID, now.Format("20060102T150405.000Z")+".json")
	if err := s.sink.Put(ctx, name, data); err != nil {
		return "", fmt.Errorf("failed to store forecast export: %w", err)
	}

	return name, nil
}

// ListExports lists the names of stored forecast exports for a template, oldest first.
func (s *Service) ListExports(ctx context.Context, id string) ([]string, error) {
	if s.sink == nil {
		return nil, ErrExportsDisabled
	}

	if _, err := s.GetTemplate(ctx, id); err != nil {
		return nil, err
	}

	names, err := s.sink.List(ctx, path.Join(exportPrefix, id)+"/")
	if err != nil {
		return nil, fmt.Errorf("failed to list forecast exports: %w", err)
	}
	return names, nil
}

// GetExport reads a stored forecast export. name is either the full object name
// returned by ExportForecast or its base name.
func (s *Service) GetExport(ctx context.Context, id, name string) (*ForecastExport, error) {
	if s.sink == nil {
		return nil, ErrExportsDisabled
	}

	prefix := path.Join(exportPrefix, id) + "/"
	base := strings.TrimPrefix(name, prefix)
	if base == "" || strings.ContainsAny(base, "/\\") || strings.HasPrefix(base, ".") {
		return nil, fmt.Errorf("%w: export name %q", domain.ErrInvalidID, name)
	}

	data, err := s.sink.Get(ctx, prefix+base)
	if err != nil {
		return nil, fmt.Errorf("failed to read forecast export: %w", err)
	}

	var doc ForecastExport
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode forecast export: %w", err)
	}
	return &doc, nil
}
