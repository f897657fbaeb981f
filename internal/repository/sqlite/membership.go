package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"binder/internal/domain"
	"binder/internal/domain/models"
	"binder/internal/domain/repositories"
)

// MembershipRepository implements repositories.MembershipRepository on SQLite
type MembershipRepository struct {
	db     *sql.DB
	tables *TableNames
}

// NewMembershipRepository creates a new membership repository
func NewMembershipRepository(config *RepositoryConfig) repositories.MembershipRepository {
	return &MembershipRepository{db: config.DB, tables: config.Tables}
}

// Upsert assigns a record to a folder, replacing any previous assignment
func (r *MembershipRepository) Upsert(ctx context.Context, kind models.Kind, recordID models.RecordID, folderID string) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (kind, record_id, folder_id, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (kind, record_id)
		DO UPDATE SET folder_id = excluded.folder_id, updated_at = excluded.updated_at
	`, r.tables.Memberships)

	_, err := GetExecutor(ctx, r.db).ExecContext(ctx, query,
		string(kind), int64(recordID), folderID, formatTime(time.Now()))
	if err != nil {
		if isForeignKeyError(err) {
			return fmt.Errorf("folder %s: %w", folderID, domain.ErrNotFound)
		}
		return fmt.Errorf("assign record %d: %w", recordID, err)
	}
	return nil
}

// Remove clears a record's assignment
func (r *MembershipRepository) Remove(ctx context.Context, kind models.Kind, recordID models.RecordID) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE kind = ? AND record_id = ?`, r.tables.Memberships)

	if _, err := GetExecutor(ctx, r.db).ExecContext(ctx, query, string(kind), int64(recordID)); err != nil {
		return fmt.Errorf("unassign record %d: %w", recordID, err)
	}
	return nil
}

// GetFolderID returns the record's folder, or nil if unassigned
func (r *MembershipRepository) GetFolderID(ctx context.Context, kind models.Kind, recordID models.RecordID) (*string, error) {
	query := fmt.Sprintf(`SELECT folder_id FROM %s WHERE kind = ? AND record_id = ?`, r.tables.Memberships)

	var folderID string
	err := GetExecutor(ctx, r.db).QueryRowContext(ctx, query, string(kind), int64(recordID)).Scan(&folderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get folder of record %d: %w", recordID, err)
	}
	return &folderID, nil
}

// ListMembers returns the record ids assigned to a folder, ascending
func (r *MembershipRepository) ListMembers(ctx context.Context, kind models.Kind, folderID string) ([]models.RecordID, error) {
	query := fmt.Sprintf(`
		SELECT record_id FROM %s
		WHERE kind = ? AND folder_id = ?
		ORDER BY record_id ASC
	`, r.tables.Memberships)

	return r.queryIDs(ctx, query, string(kind), folderID)
}

// CountMembers returns the number of records assigned to a folder
func (r *MembershipRepository) CountMembers(ctx context.Context, kind models.Kind, folderID string) (int, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE kind = ? AND folder_id = ?`, r.tables.Memberships)

	var count int
	if err := GetExecutor(ctx, r.db).QueryRowContext(ctx, query, string(kind), folderID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count members: %w", err)
	}
	return count, nil
}

// ListAssigned returns every assigned record id of a kind
func (r *MembershipRepository) ListAssigned(ctx context.Context, kind models.Kind) ([]models.RecordID, error) {
	query := fmt.Sprintf(`SELECT record_id FROM %s WHERE kind = ? ORDER BY record_id ASC`, r.tables.Memberships)

	return r.queryIDs(ctx, query, string(kind))
}

// RemoveAll clears every assignment of a kind
func (r *MembershipRepository) RemoveAll(ctx context.Context, kind models.Kind) (int64, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE kind = ?`, r.tables.Memberships)

	result, err := GetExecutor(ctx, r.db).ExecContext(ctx, query, string(kind))
	if err != nil {
		return 0, fmt.Errorf("unassign all %s records: %w", kind, err)
	}
	return result.RowsAffected()
}

func (r *MembershipRepository) queryIDs(ctx context.Context, query string, args ...any) ([]models.RecordID, error) {
	rows, err := GetExecutor(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list record ids: %w", err)
	}
	defer func() { _ = rows.Close() }()

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
