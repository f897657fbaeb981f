package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"binder/internal/domain/models"
	"binder/internal/domain/repositories"
)

// OrderRepository implements repositories.OrderRepository on SQLite.
// The order is stored as a JSON array in a TEXT column.
type OrderRepository struct {
	db     *sql.DB
	tables *TableNames
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(config *RepositoryConfig) repositories.OrderRepository {
	return &OrderRepository{db: config.DB, tables: config.Tables}
}

// Save replaces the stored order for a folder
func (r *OrderRepository) Save(ctx context.Context, order *models.FolderOrder) error {
	ids := order.RecordIDs
	if ids == nil {
		ids = []models.RecordID{}
	}
	payload, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("encode order: %w", err)
	}
	updated := order.UpdatedAt
	if updated.IsZero() {
		updated = time.Now()
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (folder_id, record_ids, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (folder_id)
		DO UPDATE SET record_ids = excluded.record_ids, updated_at = excluded.updated_at
	`, r.tables.Orders)

	if _, err := GetExecutor(ctx, r.db).ExecContext(ctx, query, order.FolderID, string(payload), formatTime(updated)); err != nil {
		return fmt.Errorf("save order for folder %s: %w", order.FolderID, err)
	}
	return nil
}

// Get returns the stored order, or an empty slice if none was saved
func (r *OrderRepository) Get(ctx context.Context, folderID string) ([]models.RecordID, error) {
	query := fmt.Sprintf(`SELECT record_ids FROM %s WHERE folder_id = ?`, r.tables.Orders)

	var payload string
	err := GetExecutor(ctx, r.db).QueryRowContext(ctx, query, folderID).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []models.RecordID{}, nil
		}
		return nil, fmt.Errorf("get order for folder %s: %w", folderID, err)
	}

	ids := []models.RecordID{}
	if err := json.Unmarshal([]byte(payload), &ids); err != nil {
		return nil, fmt.Errorf("decode order for folder %s: %w", folderID, err)
	}
	return ids, nil
}
