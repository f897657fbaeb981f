package folders

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"binder/internal/config"
	"binder/internal/domain"
	"binder/internal/domain/models"
	"binder/internal/domain/repositories"
	"binder/internal/domain/services"
)

type orderingStore struct {
	orderRepo repositories.OrderRepository
	logger    *slog.Logger
}

// NewOrderingStore creates a new ordering store
func NewOrderingStore(orderRepo repositories.OrderRepository, logger *slog.Logger) services.OrderingStore {
	return &orderingStore{orderRepo: orderRepo, logger: logger}
}

// SaveOrder replaces the stored order of a view folder.
// The ids are stored as given: neither membership nor folder existence is checked.
func (s *orderingStore) SaveOrder(ctx context.Context, kind models.Kind, folderID string, recordIDs []models.RecordID) error {
	if !kind.Ordered() {
		return &domain.ValidationError{Message: fmt.Sprintf("%s folders have no saved order", kind)}
	}
	if folderID == "" {
		return &domain.ValidationError{Message: "folder_id is required"}
	}
	if len(recordIDs) == 0 {
		return &domain.ValidationError{Message: "order must list at least one record"}
	}
	if len(recordIDs) > config.MaxOrderLength {
		return &domain.ValidationError{Message: fmt.Sprintf("order lists more than %d records", config.MaxOrderLength)}
	}

	order := &models.FolderOrder{
		FolderID:  folderID,
		RecordIDs: slices.Clone(recordIDs),
		UpdatedAt: time.Now().UTC(),
	}
	if err := s.orderRepo.Save(ctx, order); err != nil {
		return err
	}

	s.logger.Debug("order saved", "folder_id", folderID, "count", len(recordIDs))
	return nil
}

// GetOrder returns the stored order, empty when none was saved
func (s *orderingStore) GetOrder(ctx context.Context, folderID string) ([]models.RecordID, error) {
	return s.orderRepo.Get(ctx, folderID)
}

// SortByOrder sorts records by their position in order. Records missing
// from order go after every positioned record and keep their relative order.
func SortByOrder(records []models.Record, order []models.RecordID) []models.Record {
	position := make(map[models.RecordID]int, len(order))
	for i, id := range order {
		if _, seen := position[id]; !seen {
			position[id] = i
		}
	}

	rank := func(r models.Record) int {
		if p, ok := position[r.ID]; ok {
			return p
		}
		return len(order)
	}

	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b models.Record) int {
		return rank(a) - rank(b)
	})
	return sorted
}
