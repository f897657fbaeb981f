package repositories

import (
	"context"

	"binder/internal/domain/models"
)

// MembershipRepository stores the single folder assignment of each record.
// (kind, record_id) is unique, so an assignment always replaces the previous one.
type MembershipRepository interface {
	// Upsert assigns a record to a folder. Returns ErrNotFound if the folder
	// disappeared (foreign key violation).
	Upsert(ctx context.Context, kind models.Kind, recordID models.RecordID, folderID string) error

	// Remove clears a record's assignment. Removing an absent assignment is not an error.
	Remove(ctx context.Context, kind models.Kind, recordID models.RecordID) error

	// GetFolderID returns the record's folder, or nil if unassigned
	GetFolderID(ctx context.Context, kind models.Kind, recordID models.RecordID) (*string, error)

	// ListMembers returns the record ids assigned to a folder, ascending
	ListMembers(ctx context.Context, kind models.Kind, folderID string) ([]models.RecordID, error)

	// CountMembers returns the number of records assigned to a folder
	CountMembers(ctx context.Context, kind models.Kind, folderID string) (int, error)

	// ListAssigned returns every assigned record id of a kind
	ListAssigned(ctx context.Context, kind models.Kind) ([]models.RecordID, error)

	// RemoveAll clears every assignment of a kind and returns how many were removed
	RemoveAll(ctx context.Context, kind models.Kind) (int64, error)
}
