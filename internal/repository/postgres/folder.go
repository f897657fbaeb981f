package postgres

import (
	"context"
	"fmt"
	"time"

	"binder/internal/domain"
	"binder/internal/domain/models"
	"binder/internal/domain/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresFolderRepository implements the FolderRepository interface
type PostgresFolderRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewFolderRepository creates a new folder repository
func NewFolderRepository(config *RepositoryConfig) repositories.FolderRepository {
	return &PostgresFolderRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create creates a new folder. Names are not unique.
func (r *PostgresFolderRepository) Create(ctx context.Context, folder *models.Folder) error {
	if folder.ID == "" {
		folder.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if folder.CreatedAt.IsZero() {
		folder.CreatedAt = now
	}
	folder.UpdatedAt = folder.CreatedAt

	query := fmt.Sprintf(`
		INSERT INTO %s (id, kind, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`, r.tables.Folders)

	executor := GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query,
		folder.ID,
		folder.Kind,
		folder.Name,
		folder.CreatedAt,
		folder.UpdatedAt,
	)
	if err != nil {
		if IsPgDuplicateError(err) {
			return fmt.Errorf("folder %s: %w", folder.ID, domain.ErrConflict)
		}
		return fmt.Errorf("create folder: %w", err)
	}

	return nil
}

// GetByID retrieves a folder by ID within a kind
func (r *PostgresFolderRepository) GetByID(ctx context.Context, kind models.Kind, id string) (*models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT id, kind, name, created_at, updated_at
		FROM %s
		WHERE id = $1 AND kind = $2
	`, r.tables.Folders)

	var folder models.Folder
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, id, kind).Scan(
		&folder.ID,
		&folder.Kind,
		&folder.Name,
		&folder.CreatedAt,
		&folder.UpdatedAt,
	)
	if err != nil {
		if IsPgNoRowsError(err) || IsPgInvalidTextError(err) {
			return nil, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get folder: %w", err)
	}

	return &folder, nil
}

// UpdateName renames a folder
func (r *PostgresFolderRepository) UpdateName(ctx context.Context, folder *models.Folder) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $1, updated_at = $2
		WHERE id = $3 AND kind = $4
	`, r.tables.Folders)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query,
		folder.Name,
		folder.UpdatedAt,
		folder.ID,
		folder.Kind,
	)
	if err != nil {
		if IsPgInvalidTextError(err) {
			return fmt.Errorf("folder %s: %w", folder.ID, domain.ErrNotFound)
		}
		return fmt.Errorf("update folder: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("folder %s: %w", folder.ID, domain.ErrNotFound)
	}

	return nil
}

// Delete deletes a folder. A concurrent delete that already removed the row
// surfaces as ErrNotFound; a member inserted after the caller's emptiness
// check trips the foreign key and surfaces as ErrNotEmpty.
func (r *PostgresFolderRepository) Delete(ctx context.Context, kind models.Kind, id string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE id = $1 AND kind = $2
	`, r.tables.Folders)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id, kind)
	if err != nil {
		if IsPgForeignKeyError(err) {
			return &domain.NotEmptyError{FolderID: id}
		}
		if IsPgInvalidTextError(err) {
			return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
		}
		return fmt.Errorf("delete folder: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// List returns all folders of a kind in insertion order
func (r *PostgresFolderRepository) List(ctx context.Context, kind models.Kind) ([]models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT id, kind, name, created_at, updated_at
		FROM %s
		WHERE kind = $1
		ORDER BY created_at ASC, id ASC
	`, r.tables.Folders)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, kind)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	defer rows.Close()

	folders := []models.Folder{}
	for rows.Next() {
		var folder models.Folder
		err := rows.Scan(
			&folder.ID,
			&folder.Kind,
			&folder.Name,
			&folder.CreatedAt,
			&folder.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan folder: %w", err)
		}
		folders = append(folders, folder)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate folders: %w", err)
	}

	return folders, nil
}

// ListSummaries returns all folders of a kind with member counts
func (r *PostgresFolderRepository) ListSummaries(ctx context.Context, kind models.Kind) ([]models.FolderSummary, error) {
	query := fmt.Sprintf(`
		SELECT f.id, f.kind, f.name, f.created_at, f.updated_at, COUNT(m.record_id)
		FROM %s f
		LEFT JOIN %s m ON m.folder_id = f.id AND m.kind = f.kind
		WHERE f.kind = $1
		GROUP BY f.id, f.kind, f.name, f.created_at, f.updated_at
		ORDER BY f.created_at ASC, f.id ASC
	`, r.tables.Folders, r.tables.Memberships)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, kind)
	if err != nil {
		return nil, fmt.Errorf("list folder summaries: %w", err)
	}
	defer rows.Close()

	summaries := []models.FolderSummary{}
	for rows.Next() {
		var s models.FolderSummary
		err := rows.Scan(
			&s.ID,
			&s.Kind,
			&s.Name,
			&s.CreatedAt,
			&s.UpdatedAt,
			&s.RecordCount,
		)
		if err != nil {
			return nil, fmt.Errorf("scan folder summary: %w", err)
		}
		summaries = append(summaries, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate folder summaries: %w", err)
	}

	return summaries, nil
}

// DeleteAll removes every folder of a kind. Memberships must be removed first.
func (r *PostgresFolderRepository) DeleteAll(ctx context.Context, kind models.Kind) (int64, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE kind = $1`, r.tables.Folders)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, kind)
	if err != nil {
		if IsPgForeignKeyError(err) {
			return 0, fmt.Errorf("delete %s folders: %w", kind, domain.ErrNotEmpty)
		}
		return 0, fmt.Errorf("delete %s folders: %w", kind, err)
	}

	return result.RowsAffected(), nil
}
