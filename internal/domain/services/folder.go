package services

import (
	"context"

	"binder/internal/domain/models"
)

// FolderRegistry owns the set of folders of each kind
type FolderRegistry interface {
	// CreateFolder creates a folder; the name is trimmed and must be non-empty
	CreateFolder(ctx context.Context, kind models.Kind, name string) (*models.Folder, error)

	// RenameFolder renames a folder. Renaming to the current name succeeds without a write.
	RenameFolder(ctx context.Context, kind models.Kind, id, name string) (*models.Folder, error)

	// DeleteFolder deletes an empty folder. Returns ErrNotEmpty while members remain.
	DeleteFolder(ctx context.Context, kind models.Kind, id string) error

	// GetFolder retrieves a folder
	GetFolder(ctx context.Context, kind models.Kind, id string) (*models.Folder, error)

	// ListFolders returns every folder of a kind in creation order
	ListFolders(ctx context.Context, kind models.Kind) ([]models.Folder, error)

	// ListFolderSummaries returns every folder of a kind with its member count
	ListFolderSummaries(ctx context.Context, kind models.Kind) ([]models.FolderSummary, error)

	// PurgeFolders deletes every folder of a kind. Members must be cleared first.
	PurgeFolders(ctx context.Context, kind models.Kind) (int64, error)
}

// MembershipIndex owns the single folder assignment of each record
type MembershipIndex interface {
	// Assign puts a record in a folder, replacing any previous assignment
	Assign(ctx context.Context, kind models.Kind, recordID models.RecordID, folderID string) error

	// AssignMany assigns records in order and stops at the first failure.
	// Records before the failure stay assigned; the outcomes say which.
	AssignMany(ctx context.Context, kind models.Kind, recordIDs []models.RecordID, folderID string) ([]models.ItemOutcome, error)

	// Unassign clears a record's assignment; unassigned records are a no-op
	Unassign(ctx context.Context, kind models.Kind, recordID models.RecordID) error

	// ForgetRecord drops the assignment of a record leaving the folder system
	ForgetRecord(ctx context.Context, kind models.Kind, recordID models.RecordID) error

	// MembersOf returns the records assigned to a folder
	MembersOf(ctx context.Context, kind models.Kind, folderID string) ([]models.RecordID, error)

	// FolderOf returns the folder of a record, or nil
	FolderOf(ctx context.Context, kind models.Kind, recordID models.RecordID) (*string, error)

	// CountMembers returns how many records a folder holds
	CountMembers(ctx context.Context, kind models.Kind, folderID string) (int, error)

	// Assigned returns every record of a kind that has a folder
	Assigned(ctx context.Context, kind models.Kind) ([]models.RecordID, error)

	// UnassignAll clears every assignment of a kind
	UnassignAll(ctx context.Context, kind models.Kind) (int64, error)
}

// OrderingStore keeps the advisory display order of view folders
type OrderingStore interface {
	// SaveOrder replaces the stored order. Ids are not checked against membership.
	SaveOrder(ctx context.Context, kind models.Kind, folderID string, recordIDs []models.RecordID) error

	// GetOrder returns the stored order, empty when none was saved
	GetOrder(ctx context.Context, folderID string) ([]models.RecordID, error)
}
