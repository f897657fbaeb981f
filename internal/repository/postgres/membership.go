package postgres

import (
	"context"
	"fmt"

	"binder/internal/domain"
	"binder/internal/domain/models"
	"binder/internal/domain/repositories"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresMembershipRepository implements the MembershipRepository interface
type PostgresMembershipRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewMembershipRepository creates a new membership repository
func NewMembershipRepository(config *RepositoryConfig) repositories.MembershipRepository {
	return &PostgresMembershipRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Upsert assigns a record to a folder, replacing any previous assignment
func (r *PostgresMembershipRepository) Upsert(ctx context.Context, kind models.Kind, recordID models.RecordID, folderID string) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (kind, record_id, folder_id, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (kind, record_id)
		DO UPDATE SET folder_id = EXCLUDED.folder_id, updated_at = EXCLUDED.updated_at
	`, r.tables.Memberships)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, kind, recordID, folderID); err != nil {
		if IsPgForeignKeyError(err) || IsPgInvalidTextError(err) {
			return fmt.Errorf("folder %s: %w", folderID, domain.ErrNotFound)
		}
		return fmt.Errorf("assign record %d: %w", recordID, err)
	}

	return nil
}

// Remove clears a record's assignment
func (r *PostgresMembershipRepository) Remove(ctx context.Context, kind models.Kind, recordID models.RecordID) error {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE kind = $1 AND record_id = $2
	`, r.tables.Memberships)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, kind, recordID); err != nil {
		return fmt.Errorf("unassign record %d: %w", recordID, err)
	}

	return nil
}

// GetFolderID returns the record's folder, or nil if unassigned
func (r *PostgresMembershipRepository) GetFolderID(ctx context.Context, kind models.Kind, recordID models.RecordID) (*string, error) {
	query := fmt.Sprintf(`
		SELECT folder_id
		FROM %s
		WHERE kind = $1 AND record_id = $2
	`, r.tables.Memberships)

	var folderID string
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, kind, recordID).Scan(&folderID)
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get folder of record %d: %w", recordID, err)
	}

	return &folderID, nil
}

// ListMembers returns the record ids assigned to a folder
func (r *PostgresMembershipRepository) ListMembers(ctx context.Context, kind models.Kind, folderID string) ([]models.RecordID, error) {
	query := fmt.Sprintf(`
		SELECT record_id
		FROM %s
		WHERE kind = $1 AND folder_id = $2
		ORDER BY record_id ASC
	`, r.tables.Memberships)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, kind, folderID)
	if err != nil {
		if IsPgInvalidTextError(err) {
			return []models.RecordID{}, nil
		}
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	return scanRecordIDs(rows)
}

// CountMembers returns the number of records assigned to a folder
func (r *PostgresMembershipRepository) CountMembers(ctx context.Context, kind models.Kind, folderID string) (int, error) {
	query := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM %s
		WHERE kind = $1 AND folder_id = $2
	`, r.tables.Memberships)

	var count int
	executor := GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, kind, folderID).Scan(&count); err != nil {
		if IsPgInvalidTextError(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("count members: %w", err)
	}

	return count, nil
}

// ListAssigned returns every assigned record id of a kind
func (r *PostgresMembershipRepository) ListAssigned(ctx context.Context, kind models.Kind) ([]models.RecordID, error) {
	query := fmt.Sprintf(`
		SELECT record_id
		FROM %s
		WHERE kind = $1
		ORDER BY record_id ASC
	`, r.tables.Memberships)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, kind)
	if err != nil {
		return nil, fmt.Errorf("list assigned records: %w", err)
	}
	defer rows.Close()

	return scanRecordIDs(rows)
}

// RemoveAll clears every assignment of a kind
func (r *PostgresMembershipRepository) RemoveAll(ctx context.Context, kind models.Kind) (int64, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE kind = $1`, r.tables.Memberships)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, kind)
	if err != nil {
		return 0, fmt.Errorf("unassign all %s records: %w", kind, err)
	}

	return result.RowsAffected(), nil
}

type idRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanRecordIDs(rows idRows) ([]models.RecordID, error) {
	ids := []models.RecordID{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan record id: %w", err)
		}
		ids = append(ids, models.RecordID(id))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate record ids: %w", err)
	}
	return ids, nil
}
