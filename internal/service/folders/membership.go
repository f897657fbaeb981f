package folders

import (
	"context"
	"fmt"
	"log/slog"

	"binder/internal/domain"
	"binder/internal/domain/models"
	"binder/internal/domain/repositories"
	"binder/internal/domain/services"
)

type membershipIndex struct {
	membershipRepo repositories.MembershipRepository
	folderRepo     repositories.FolderRepository
	records        repositories.RecordStore
	logger         *slog.Logger
}

// NewMembershipIndex creates a new membership index
func NewMembershipIndex(
	membershipRepo repositories.MembershipRepository,
	folderRepo repositories.FolderRepository,
	records repositories.RecordStore,
	logger *slog.Logger,
) services.MembershipIndex {
	return &membershipIndex{
		membershipRepo: membershipRepo,
		folderRepo:     folderRepo,
		records:        records,
		logger:         logger,
	}
}

// Assign puts a record in a folder, replacing any previous assignment
func (s *membershipIndex) Assign(ctx context.Context, kind models.Kind, recordID models.RecordID, folderID string) error {
	if _, err := s.folderRepo.GetByID(ctx, kind, folderID); err != nil {
		return err
	}
	return s.assign(ctx, kind, recordID, folderID)
}

// AssignMany assigns records one at a time and stops at the first failure.
// There is no transaction: records before the failure stay assigned.
func (s *membershipIndex) AssignMany(ctx context.Context, kind models.Kind, recordIDs []models.RecordID, folderID string) ([]models.ItemOutcome, error) {
	outcomes := make([]models.ItemOutcome, len(recordIDs))
	for i, id := range recordIDs {
		outcomes[i] = models.ItemOutcome{RecordID: id, Status: models.OutcomeSkipped}
	}

	_, folderErr := s.folderRepo.GetByID(ctx, kind, folderID)

	for i, id := range recordIDs {
		err := folderErr
		if err == nil {
			err = s.assign(ctx, kind, id, folderID)
		}
		if err != nil {
			outcomes[i].Status = models.OutcomeFailed
			outcomes[i].Error = err.Error()
			s.logger.Warn("bulk assign stopped",
				"kind", kind,
				"folder_id", folderID,
				"record_id", id,
				"applied", i,
				"skipped", len(recordIDs)-i-1,
				"error", err,
			)
			return outcomes, fmt.Errorf("assign %s %d (%d of %d applied): %w", kind, id, i, len(recordIDs), err)
		}
		outcomes[i].Status = models.OutcomeApplied
	}

	return outcomes, nil
}

// assign upserts the membership of a live record. The folder foreign key
// reports a folder deleted since the caller's check as not found.
func (s *membershipIndex) assign(ctx context.Context, kind models.Kind, recordID models.RecordID, folderID string) error {
	record, err := s.records.Get(ctx, kind, recordID)
	if err != nil {
		return err
	}
	if record.Trashed() {
		return &domain.NotFoundError{Message: fmt.Sprintf("%s %d is in the trash", kind, recordID)}
	}

	if err := s.membershipRepo.Upsert(ctx, kind, recordID, folderID); err != nil {
		return err
	}

	s.logger.Debug("record assigned", "kind", kind, "record_id", recordID, "folder_id", folderID)
	return nil
}

// Unassign clears a record's assignment
func (s *membershipIndex) Unassign(ctx context.Context, kind models.Kind, recordID models.RecordID) error {
	if err := s.membershipRepo.Remove(ctx, kind, recordID); err != nil {
		return err
	}
	s.logger.Debug("record unassigned", "kind", kind, "record_id", recordID)
	return nil
}

// ForgetRecord is Unassign for records leaving the folder system (trash, delete)
func (s *membershipIndex) ForgetRecord(ctx context.Context, kind models.Kind, recordID models.RecordID) error {
	return s.Unassign(ctx, kind, recordID)
}

// MembersOf returns the records assigned to a folder
func (s *membershipIndex) MembersOf(ctx context.Context, kind models.Kind, folderID string) ([]models.RecordID, error) {
	return s.membershipRepo.ListMembers(ctx, kind, folderID)
}

// FolderOf returns the folder of a record, or nil
func (s *membershipIndex) FolderOf(ctx context.Context, kind models.Kind, recordID models.RecordID) (*string, error) {
	return s.membershipRepo.GetFolderID(ctx, kind, recordID)
}

// CountMembers returns how many records a folder holds
func (s *membershipIndex) CountMembers(ctx context.Context, kind models.Kind, folderID string) (int, error) {
	return s.membershipRepo.CountMembers(ctx, kind, folderID)
}

// Assigned returns every record of a kind that has a folder
func (s *membershipIndex) Assigned(ctx context.Context, kind models.Kind) ([]models.RecordID, error) {
	return s.membershipRepo.ListAssigned(ctx, kind)
}

// UnassignAll clears every assignment of a kind
func (s *membershipIndex) UnassignAll(ctx context.Context, kind models.Kind) (int64, error) {
	n, err := s.membershipRepo.RemoveAll(ctx, kind)
	if err != nil {
		return 0, err
	}
	s.logger.Info("assignments cleared", "kind", kind, "count", n)
	return n, nil
}
