package repositories

import (
	"context"

	"binder/internal/domain/models"
)

// OrderRepository stores one advisory record order per folder.
// Orders are not tied to folder lifetime; a deleted folder leaves its order behind.
type OrderRepository interface {
	// Save replaces the stored order wholesale
	Save(ctx context.Context, order *models.FolderOrder) error

	// Get returns the stored order, or an empty slice if none was saved
	Get(ctx context.Context, folderID string) ([]models.RecordID, error)
}
