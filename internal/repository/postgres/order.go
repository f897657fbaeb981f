package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"binder/internal/domain"
	"binder/internal/domain/models"
	"binder/internal/domain/repositories"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresOrderRepository implements the OrderRepository interface.
// Each folder's order is one JSONB array of record ids.
type PostgresOrderRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(config *RepositoryConfig) repositories.OrderRepository {
	return &PostgresOrderRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Save replaces the stored order for a folder
func (r *PostgresOrderRepository) Save(ctx context.Context, order *models.FolderOrder) error {
	ids := order.RecordIDs
	if ids == nil {
		ids = []models.RecordID{}
	}
	payload, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("encode order: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (folder_id, record_ids, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (folder_id)
		DO UPDATE SET record_ids = EXCLUDED.record_ids, updated_at = EXCLUDED.updated_at
	`, r.tables.Orders)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, order.FolderID, payload, order.UpdatedAt); err != nil {
		if IsPgInvalidTextError(err) {
			return fmt.Errorf("%w: malformed folder id %q", domain.ErrValidation, order.FolderID)
		}
		return fmt.Errorf("save order for folder %s: %w", order.FolderID, err)
	}

	return nil
}

// Get returns the stored order, or an empty slice if none was saved
func (r *PostgresOrderRepository) Get(ctx context.Context, folderID string) ([]models.RecordID, error) {
	query := fmt.Sprintf(`
		SELECT record_ids
		FROM %s
		WHERE folder_id = $1
	`, r.tables.Orders)

	var payload []byte
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, folderID).Scan(&payload)
	if err != nil {
		if IsPgNoRowsError(err) || IsPgInvalidTextError(err) {
			return []models.RecordID{}, nil
		}
		return nil, fmt.Errorf("get order for folder %s: %w", folderID, err)
	}

	ids := []models.RecordID{}
	if err := json.Unmarshal(payload, &ids); err != nil {
		return nil, fmt.Errorf("decode order for folder %s: %w", folderID, err)
	}

	return ids, nil
}
