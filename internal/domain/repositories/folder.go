package repositories

import (
	"context"

	"binder/internal/domain/models"
)

// FolderRepository defines data access operations for folders.
// Every method is scoped to a kind; an id from another kind is not found.
type FolderRepository interface {
	// Create inserts a folder; ID and timestamps are filled in on success
	Create(ctx context.Context, folder *models.Folder) error

	// GetByID retrieves a folder by ID
	GetByID(ctx context.Context, kind models.Kind, id string) (*models.Folder, error)

	// UpdateName renames a folder
	UpdateName(ctx context.Context, folder *models.Folder) error

	// Delete removes a folder. Returns ErrNotFound if it no longer exists and
	// ErrNotEmpty if members still reference it.
	Delete(ctx context.Context, kind models.Kind, id string) error

	// List returns all folders of a kind in insertion order
	List(ctx context.Context, kind models.Kind) ([]models.Folder, error)

	// ListSummaries returns all folders of a kind with member counts
	ListSummaries(ctx context.Context, kind models.Kind) ([]models.FolderSummary, error)

	// DeleteAll removes every folder of a kind and returns how many were removed
	DeleteAll(ctx context.Context, kind models.Kind) (int64, error)
}
