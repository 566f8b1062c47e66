package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezkam/ledger/internal/domain"
	"github.com/rezkam/ledger/internal/ptr"
	"github.com/rezkam/ledger/internal/recurring"
)

// memoryRepository is a map-backed Repository for service tests.
type memoryRepository struct {
	templates    map[string]*domain.RecurringTemplate
	transactions []*domain.GeneratedTransaction

	createErr error
	updated   []domain.UpdateTemplateParams
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{templates: map[string]*domain.RecurringTemplate{}}
}

func (m *memoryRepository) CreateTemplate(ctx context.Context, template *domain.RecurringTemplate) (*domain.RecurringTemplate, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	stored := *template
	stored.Version = 1
	m.templates[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (m *memoryRepository) FindTemplateByID(ctx context.Context, id string) (*domain.RecurringTemplate, error) {
	tpl, ok := m.templates[id]
	if !ok {
		return nil, domain.ErrTemplateNotFound
	}
	out := *tpl
	return &out, nil
}

func (m *memoryRepository) FindTemplates(ctx context.Context, activeOnly bool) ([]*domain.RecurringTemplate, error) {
	var out []*domain.RecurringTemplate
	for _, tpl := range m.templates {
		if activeOnly && !tpl.IsActive {
			continue
		}
		c := *tpl
		out = append(out, &c)
	}
	return out, nil
}

func (m *memoryRepository) UpdateTemplate(ctx context.Context, params domain.UpdateTemplateParams) (*domain.RecurringTemplate, error) {
	m.updated = append(m.updated, params)
	tpl, ok := m.templates[params.TemplateID]
	if !ok {
		return nil, domain.ErrTemplateNotFound
	}
	if params.Etag != nil && *params.Etag != tpl.Etag() {
		return nil, domain.ErrVersionConflict
	}
	if params.Has(domain.FieldIsActive) {
		tpl.IsActive = *params.IsActive
	}
	if params.Has(domain.FieldDescription) {
		tpl.Description = *params.Description
	}
	tpl.Version++
	out := *tpl
	return &out, nil
}

func (m *memoryRepository) DeleteTemplate(ctx context.Context, id string) error {
	if _, ok := m.templates[id]; !ok {
		return domain.ErrTemplateNotFound
	}
	delete(m.templates, id)
	return nil
}

func (m *memoryRepository) FindTransactionsByTemplate(ctx context.Context, templateID string) ([]*domain.GeneratedTransaction, error) {
	var out []*domain.GeneratedTransaction
	for _, tx := range m.transactions {
		if tx.ParentRecurringID == templateID {
			out = append(out, tx)
		}
	}
	return out, nil
}

// memorySink is a map-backed Sink.
type memorySink struct {
	objects map[string][]byte
	putErr  error
}

func (m *memorySink) Put(ctx context.Context, name string, data []byte) error {
	if m.putErr != nil {
		return m.putErr
	}
	if m.objects == nil {
		m.objects = map[string][]byte{}
	}
	m.objects[name] = data
	return nil
}

func (m *memorySink) Get(ctx context.Context, name string) ([]byte, error) {
	data, ok := m.objects[name]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return data, nil
}

func (m *memorySink) List(ctx context.Context, prefix string) ([]string, error) {
	var names []string
	for name := range m.objects {
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names, nil
}

var testNow = time.Date(2024, 5, 29, 10, 0, 0, 0, time.UTC)

func newTestService(repo Repository, sink Sink) *Service {
	return NewService(repo, sink, Config{Clock: recurring.FixedClock(testNow)})
}

func validInput() CreateTemplateInput {
	return CreateTemplateInput{
		Amount:      decimal.RequireFromString("600.00"),
		Type:        "Expense",
		Description: "  Rent  ",
		Category:    "housing",
		Account:     "checking",
		Frequency:   "monthly",
		StartDate:   time.Date(2024, 5, 29, 0, 0, 0, 0, time.UTC),
	}
}

func TestCreateTemplate(t *testing.T) {
	repo := newMemoryRepository()
	svc := newTestService(repo, nil)

	created, err := svc.CreateTemplate(context.Background(), validInput())
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, domain.FrequencyMonthly, created.Frequency)
	assert.Equal(t, domain.TransactionTypeExpense, created.Type)
	assert.Equal(t, "Rent", created.Description)
	assert.Equal(t, 29, created.TargetDay())
	assert.Equal(t, time.Date(2024, 5, 29, 0, 0, 0, 0, time.UTC), created.NextExecutionDate)
	assert.True(t, created.IsActive)
	assert.Equal(t, testNow, created.CreatedAt)
	assert.Equal(t, 1, created.Version)
	assert.Nil(t, created.Timezone)
}

func TestCreateTemplate_AnchorUsesTemplateTimezone(t *testing.T) {
	svc := newTestService(newMemoryRepository(), nil)

	input := validInput()
	input.Timezone = ptr.To("Pacific/Auckland")
	// 2024-01-30 12:00 UTC is already the 31st in Auckland.
	input.StartDate = time.Date(2024, 1, 30, 12, 0, 0, 0, time.UTC)

	created, err := svc.CreateTemplate(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, 31, created.TargetDay())
	// 01:00 on the Auckland wall clock (UTC+13).
	tod, ok := created.TimeOfDay()
	require.True(t, ok)
	assert.Equal(t, time.Hour, tod)
	assert.Equal(t, "Pacific/Auckland", created.NextExecutionDate.Location().String())
	assert.True(t, created.NextExecutionDate.Equal(input.StartDate))
}

func TestCreateTemplate_Validation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*CreateTemplateInput)
		wantErr error
	}{
		{"unknown frequency", func(in *CreateTemplateInput) { in.Frequency = "fortnightly" }, domain.ErrInvalidFrequency},
		{"unknown type", func(in *CreateTemplateInput) { in.Type = "transfer" }, domain.ErrInvalidTransactionType},
		{"empty description", func(in *CreateTemplateInput) { in.Description = "   " }, domain.ErrDescriptionRequired},
		{"long description", func(in *CreateTemplateInput) { in.Description = strings.Repeat("x", 256) }, domain.ErrDescriptionTooLong},
		{"zero amount", func(in *CreateTemplateInput) { in.Amount = decimal.Zero }, domain.ErrInvalidAmount},
		{"negative amount", func(in *CreateTemplateInput) { in.Amount = decimal.NewFromInt(-5) }, domain.ErrInvalidAmount},
		{"missing account", func(in *CreateTemplateInput) { in.Account = "" }, domain.ErrAccountRequired},
		{"missing start date", func(in *CreateTemplateInput) { in.StartDate = time.Time{} }, domain.ErrStartDateRequired},
		{"zero max occurrences", func(in *CreateTemplateInput) { in.MaxOccurrences = ptr.To(0) }, domain.ErrInvalidMaxOccurrences},
		{"bad timezone", func(in *CreateTemplateInput) { in.Timezone = ptr.To("Mars/Olympus") }, domain.ErrInvalidTimezone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(newMemoryRepository(), nil)
			input := validInput()
			tt.mutate(&input)

			_, err := svc.CreateTemplate(context.Background(), input)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCreateTemplate_EndDateBeforeStartIsAccepted(t *testing.T) {
	svc := newTestService(newMemoryRepository(), nil)
	input := validInput()
	input.EndDate = ptr.To(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	created, err := svc.CreateTemplate(context.Background(), input)
	require.NoError(t, err)

	due, err := svc.CheckDue(context.Background(), created.ID)
	require.NoError(t, err)
	assert.False(t, due)
}

func TestCreateTemplate_RepositoryError(t *testing.T) {
	repo := newMemoryRepository()
	repo.createErr = errors.New("disk full")

	_, err := newTestService(repo, nil).CreateTemplate(context.Background(), validInput())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create template")
}

func TestUpdateTemplate(t *testing.T) {
	repo := newMemoryRepository()
	svc := newTestService(repo, nil)
	created, err := svc.CreateTemplate(context.Background(), validInput())
	require.NoError(t, err)

	updated, err := svc.UpdateTemplate(context.Background(), domain.UpdateTemplateParams{
		TemplateID:  created.ID,
		Etag:        ptr.To(created.Etag()),
		UpdateMask:  []string{domain.FieldDescription},
		Description: ptr.To("  New rent  "),
	})
	require.NoError(t, err)
	assert.Equal(t, "New rent", updated.Description)
	assert.Equal(t, 2, updated.Version)

	// Stale etag.
	_, err = svc.UpdateTemplate(context.Background(), domain.UpdateTemplateParams{
		TemplateID:  created.ID,
		Etag:        ptr.To(created.Etag()),
		UpdateMask:  []string{domain.FieldDescription},
		Description: ptr.To("Again"),
	})
	assert.ErrorIs(t, err, domain.ErrVersionConflict)
}

func TestUpdateTemplate_RejectsScheduleFields(t *testing.T) {
	repo := newMemoryRepository()
	svc := newTestService(repo, nil)

	_, err := svc.UpdateTemplate(context.Background(), domain.UpdateTemplateParams{
		TemplateID: "tpl",
		UpdateMask: []string{domain.FieldFrequency},
	})
	assert.ErrorIs(t, err, domain.ErrImmutableField)
	assert.Empty(t, repo.updated, "repository must not be called")
}

func TestUpdateTemplate_RejectsInvalidValues(t *testing.T) {
	svc := newTestService(newMemoryRepository(), nil)

	_, err := svc.UpdateTemplate(context.Background(), domain.UpdateTemplateParams{
		TemplateID: "tpl",
		UpdateMask: []string{domain.FieldAmount},
		Amount:     ptr.To(decimal.NewFromInt(-1)),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = svc.UpdateTemplate(context.Background(), domain.UpdateTemplateParams{
		TemplateID:     "tpl",
		UpdateMask:     []string{domain.FieldMaxOccurrences},
		MaxOccurrences: ptr.To(-3),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidMaxOccurrences)

	_, err = svc.UpdateTemplate(context.Background(), domain.UpdateTemplateParams{
		UpdateMask: []string{domain.FieldCategory},
	})
	assert.ErrorIs(t, err, domain.ErrTemplateNotFound)
}

func TestSetActive_PausedTemplateIsNeverDue(t *testing.T) {
	svc := newTestService(newMemoryRepository(), nil)
	created, err := svc.CreateTemplate(context.Background(), validInput())
	require.NoError(t, err)

	due, err := svc.CheckDue(context.Background(), created.ID)
	require.NoError(t, err)
	assert.True(t, due)

	paused, err := svc.SetActive(context.Background(), created.ID, false)
	require.NoError(t, err)
	assert.False(t, paused.IsActive)

	due, err = svc.CheckDue(context.Background(), created.ID)
	require.NoError(t, err)
	assert.False(t, due)

	active, err := svc.ListTemplates(context.Background(), true)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestDeleteTemplate(t *testing.T) {
	svc := newTestService(newMemoryRepository(), nil)
	created, err := svc.CreateTemplate(context.Background(), validInput())
	require.NoError(t, err)

	require.NoError(t, svc.DeleteTemplate(context.Background(), created.ID))

	_, err = svc.GetTemplate(context.Background(), created.ID)
	assert.ErrorIs(t, err, domain.ErrTemplateNotFound)
	assert.ErrorIs(t, svc.DeleteTemplate(context.Background(), created.ID), domain.ErrTemplateNotFound)
	assert.ErrorIs(t, svc.DeleteTemplate(context.Background(), ""), domain.ErrTemplateNotFound)
}

func TestForecast(t *testing.T) {
	svc := newTestService(newMemoryRepository(), nil)
	input := validInput()
	input.StartDate = time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	created, err := svc.CreateTemplate(context.Background(), input)
	require.NoError(t, err)

	txs, err := svc.Forecast(context.Background(), created.ID, 1)
	require.NoError(t, err)
	// Horizon ends 2024-06-29; stale start dates are projected from next_execution_date.
	require.Len(t, txs, 5)
	assert.Equal(t, time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC), txs[3].Date)
	assert.Equal(t, time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC), txs[4].Date)

	// Preview does not move the template.
	again, err := svc.GetTemplate(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.NextExecutionDate, again.NextExecutionDate)
}

func TestForecast_Horizon(t *testing.T) {
	svc := newTestService(newMemoryRepository(), nil)
	created, err := svc.CreateTemplate(context.Background(), validInput())
	require.NoError(t, err)

	txs, err := svc.Forecast(context.Background(), created.ID, 0)
	require.NoError(t, err)
	assert.Len(t, txs, 13)

	_, err = svc.Forecast(context.Background(), created.ID, -1)
	assert.ErrorIs(t, err, domain.ErrInvalidHorizon)

	_, err = svc.Forecast(context.Background(), created.ID, MaxHorizonMonths+1)
	assert.ErrorIs(t, err, domain.ErrInvalidHorizon)

	_, err = svc.Forecast(context.Background(), "missing", 3)
	assert.ErrorIs(t, err, domain.ErrTemplateNotFound)
}

func TestListTransactions(t *testing.T) {
	repo := newMemoryRepository()
	svc := newTestService(repo, nil)
	created, err := svc.CreateTemplate(context.Background(), validInput())
	require.NoError(t, err)

	tx := recurring.Materialize(created, created.NextExecutionDate, testNow)
	repo.transactions = append(repo.transactions, &tx, &domain.GeneratedTransaction{ID: "other", ParentRecurringID: "someone-else"})

	txs, err := svc.ListTransactions(context.Background(), created.ID)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, tx.ID, txs[0].ID)

	_, err = svc.ListTransactions(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrTemplateNotFound)
}

func TestExportForecast(t *testing.T) {
	sink := &memorySink{}
	svc := newTestService(newMemoryRepository(), sink)
	created, err := svc.CreateTemplate(context.Background(), validInput())
	require.NoError(t, err)

	name, err := svc.ExportForecast(context.Background(), created.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, "forecasts/"+created.ID+"/20240529T100000.000Z.json", name)

	var doc ForecastExport
	require.NoError(t, json.Unmarshal(sink.objects[name], &doc))
	assert.Equal(t, created.ID, doc.TemplateID)
	assert.Equal(t, 3, doc.HorizonMonths)
	assert.Len(t, doc.Transactions, 4)
	assert.True(t, doc.Transactions[0].Amount.Equal(decimal.RequireFromString("600")))

	names, err := svc.ListExports(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{name}, names)

	byBase, err := svc.GetExport(context.Background(), created.ID, "20240529T100000.000Z.json")
	require.NoError(t, err)
	assert.Len(t, byBase.Transactions, 4)

	byName, err := svc.GetExport(context.Background(), created.ID, name)
	require.NoError(t, err)
	assert.Equal(t, byBase.GeneratedAt, byName.GeneratedAt)
}

func TestGetExport_Errors(t *testing.T) {
	svc := newTestService(newMemoryRepository(), &memorySink{})

	_, err := svc.GetExport(context.Background(), "tpl", "missing.json")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	for _, name := range []string{"", "../other/x.json", "a/b.json", ".hidden"} {
		_, err := svc.GetExport(context.Background(), "tpl", name)
		assert.ErrorIs(t, err, domain.ErrInvalidID, name)
	}

	svc = newTestService(newMemoryRepository(), nil)
	_, err = svc.GetExport(context.Background(), "tpl", "x.json")
	assert.ErrorIs(t, err, ErrExportsDisabled)
}

func TestExportForecast_Errors(t *testing.T) {
	svc := newTestService(newMemoryRepository(), nil)
	_, err := svc.ExportForecast(context.Background(), "tpl", 3)
	assert.ErrorIs(t, err, ErrExportsDisabled)
	_, err = svc.ListExports(context.Background(), "tpl")
	assert.ErrorIs(t, err, ErrExportsDisabled)

	sink := &memorySink{putErr: errors.New("bucket missing")}
	svc = newTestService(newMemoryRepository(), sink)
	created, err := svc.CreateTemplate(context.Background(), validInput())
	require.NoError(t, err)

	_, err = svc.ExportForecast(context.Background(), created.ID, 3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to store forecast export")
}

func TestNewService_Defaults(t *testing.T) {
	svc := NewService(newMemoryRepository(), nil, Config{DefaultHorizonMonths: 500})
	assert.Equal(t, MaxHorizonMonths, svc.config.MaxHorizonMonths)
	assert.Equal(t, DefaultHorizonMonths, svc.config.DefaultHorizonMonths)
}
