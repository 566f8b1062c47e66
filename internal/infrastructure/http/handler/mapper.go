package handler

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rezkam/ledger/internal/domain"
	"github.com/rezkam/ledger/internal/recurring"
)

const dateLayout = time.DateOnly

// TemplateDTO is the JSON representation of a recurring template.
type TemplateDTO struct {
	ID                string          `json:"id"`
	Amount            decimal.Decimal `json:"amount"`
	Type              string          `json:"type"`
	Description       string          `json:"description"`
	Category          string          `json:"category"`
	Account           string          `json:"account"`
	Frequency         string          `json:"frequency"`
	FrequencyDisplay  string          `json:"frequency_display"`
	OriginalTargetDay *int            `json:"original_target_day,omitempty"`
	OriginalTimeOfDay *string         `json:"original_time_of_day,omitempty"`
	NextExecutionDate time.Time       `json:"next_execution_date"`
	EndDate           *time.Time      `json:"end_date,omitempty"`
	MaxOccurrences    *int            `json:"max_occurrences,omitempty"`
	Timezone          *string         `json:"timezone,omitempty"`
	IsActive          bool            `json:"is_active"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
	Etag              string          `json:"etag"`
}

// MapTemplateToDTO converts domain.RecurringTemplate to TemplateDTO.
func MapTemplateToDTO(t *domain.RecurringTemplate) TemplateDTO {
	return TemplateDTO{
		ID:                t.ID,
		Amount:            t.Amount,
		Type:              string(t.Type),
		Description:       t.Description,
		Category:          t.Category,
		Account:           t.Account,
		Frequency:         string(t.Frequency),
		FrequencyDisplay:  recurring.FrequencyDisplayName(t.Frequency),
		OriginalTargetDay: t.OriginalTargetDay,
		OriginalTimeOfDay: formatTimeOfDay(t.OriginalTimeOfDay),
		NextExecutionDate: t.NextExecutionDate,
		EndDate:           t.EndDate,
		MaxOccurrences:    t.MaxOccurrences,
		Timezone:          t.Timezone,
		IsActive:          t.IsActive,
		CreatedAt:         t.CreatedAt,
		UpdatedAt:         t.UpdatedAt,
		Etag:              t.Etag(),
	}
}

// formatTimeOfDay renders a wall-clock offset as HH:MM:SS with optional fraction.
func formatTimeOfDay(d *time.Duration) *string {
	if d == nil {
		return nil
	}
	s := time.Time{}.Add(*d).Format("15:04:05.999999999")
	return &s
}

// MapTemplatesToDTO converts a slice of templates.
func MapTemplatesToDTO(templates []*domain.RecurringTemplate) []TemplateDTO {
	out := make([]TemplateDTO, 0, len(templates))
	for _, t := range templates {
		out = append(out, MapTemplateToDTO(t))
	}
	return out
}

// parseDate accepts an RFC 3339 timestamp or a bare YYYY-MM-DD date.
// A bare date is midnight on loc's wall clock.
func parseDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(dateLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("expected YYYY-MM-DD or RFC 3339, got %q", s)
	}
	return t, nil
}
