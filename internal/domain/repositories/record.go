package repositories

import (
	"context"

	"binder/internal/domain/models"
)

// RecordStore is the system of record for forms and views. The folder
// system never creates records on its own; it reads, duplicates, trashes
// and restores them through this interface.
type RecordStore interface {
	// Get retrieves a record of the given kind (including trashed records)
	Get(ctx context.Context, kind models.Kind, id models.RecordID) (*models.Record, error)

	// ListActive returns every non-trashed record of a kind, ascending by id
	ListActive(ctx context.Context, kind models.Kind) ([]models.Record, error)

	// ListByIDs returns the non-trashed records among ids, in the order of ids
	ListByIDs(ctx context.Context, kind models.Kind, ids []models.RecordID) ([]models.Record, error)

	// Create inserts a record; ID and timestamps are filled in on success
	Create(ctx context.Context, record *models.Record) error

	// Duplicate copies a record (title suffix, draft status, meta) and returns the copy
	Duplicate(ctx context.Context, kind models.Kind, id models.RecordID, titleSuffix string) (*models.Record, error)

	// Trash moves a record to the trash
	Trash(ctx context.Context, kind models.Kind, id models.RecordID) error

	// Restore puts a record back into status (active or draft), undoing a trash
	Restore(ctx context.Context, kind models.Kind, id models.RecordID, status models.RecordStatus) error
}
