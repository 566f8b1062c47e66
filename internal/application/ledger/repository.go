package ledger

import (
	"context"

	"github.com/rezkam/ledger/internal/domain"
)

// Repository defines storage operations for template management.
// All create/update operations return the entity as persisted, including version.
type Repository interface {
	// CreateTemplate stores a new recurring template.
	// Returns the created template with version populated by persistence layer.
	CreateTemplate(ctx context.Context, template *domain.RecurringTemplate) (*domain.RecurringTemplate, error)

	// FindTemplateByID retrieves a template by ID.
	// Returns domain.ErrTemplateNotFound if template doesn't exist.
	FindTemplateByID(ctx context.Context, id string) (*domain.RecurringTemplate, error)

	// FindTemplates lists templates ordered by creation, optionally only active ones.
	FindTemplates(ctx context.Context, activeOnly bool) ([]*domain.RecurringTemplate, error)

	// UpdateTemplate updates a template using field mask.
	// Only updates fields specified in UpdateMask.
	// Returns the updated template with new version.
	// Returns domain.ErrTemplateNotFound if template doesn't exist.
	// Returns domain.ErrVersionConflict if etag is provided and doesn't match current version.
	UpdateTemplate(ctx context.Context, params domain.UpdateTemplateParams) (*domain.RecurringTemplate, error)

	// DeleteTemplate deletes a template. Generated transactions are kept;
	// they only reference the template by ID.
	// Returns domain.ErrTemplateNotFound if template doesn't exist.
	DeleteTemplate(ctx context.Context, id string) error

	// FindTransactionsByTemplate lists transactions generated from a template, newest first.
	FindTransactionsByTemplate(ctx context.Context, templateID string) ([]*domain.GeneratedTransaction, error)
}

// Sink stores exported forecast documents.
type Sink interface {
	// Put writes data under name, replacing any existing object.
	Put(ctx context.Context, name string, data []byte) error

	// Get reads the object stored under name.
	// Returns domain.ErrNotFound if nothing is stored there.
	Get(ctx context.Context, name string) ([]byte, error)

	// List returns the names of stored objects that start with prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)
}
