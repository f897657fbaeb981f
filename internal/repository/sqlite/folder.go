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

	"github.com/google/uuid"
)

// FolderRepository implements repositories.FolderRepository on SQLite
type FolderRepository struct {
	db     *sql.DB
	tables *TableNames
}

// NewFolderRepository creates a new folder repository
func NewFolderRepository(config *RepositoryConfig) repositories.FolderRepository {
	return &FolderRepository{db: config.DB, tables: config.Tables}
}

// Create creates a new folder
func (r *FolderRepository) Create(ctx context.Context, folder *models.Folder) error {
	if folder.ID == "" {
		folder.ID = uuid.NewString()
	}
	if folder.CreatedAt.IsZero() {
		folder.CreatedAt = time.Now().UTC()
	}
	folder.UpdatedAt = folder.CreatedAt

	query := fmt.Sprintf(`
		INSERT INTO %s (id, kind, name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, r.tables.Folders)

	_, err := GetExecutor(ctx, r.db).ExecContext(ctx, query,
		folder.ID,
		string(folder.Kind),
		folder.Name,
		formatTime(folder.CreatedAt),
		formatTime(folder.UpdatedAt),
	)
	if err != nil {
		if isDuplicateError(err) {
			return fmt.Errorf("folder %s: %w", folder.ID, domain.ErrConflict)
		}
		return fmt.Errorf("create folder: %w", err)
	}
	return nil
}

// GetByID retrieves a folder by ID within a kind
func (r *FolderRepository) GetByID(ctx context.Context, kind models.Kind, id string) (*models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT id, kind, name, created_at, updated_at
		FROM %s
		WHERE id = ? AND kind = ?
	`, r.tables.Folders)

	folder, err := scanFolder(GetExecutor(ctx, r.db).QueryRowContext(ctx, query, id, string(kind)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get folder: %w", err)
	}
	return folder, nil
}

// UpdateName renames a folder
func (r *FolderRepository) UpdateName(ctx context.Context, folder *models.Folder) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = ?, updated_at = ?
		WHERE id = ? AND kind = ?
	`, r.tables.Folders)

	result, err := GetExecutor(ctx, r.db).ExecContext(ctx, query,
		folder.Name,
		formatTime(folder.UpdatedAt),
		folder.ID,
		string(folder.Kind),
	)
	if err != nil {
		return fmt.Errorf("update folder: %w", err)
	}
	return requireAffected(result, fmt.Errorf("folder %s: %w", folder.ID, domain.ErrNotFound))
}

// Delete deletes a folder
func (r *FolderRepository) Delete(ctx context.Context, kind models.Kind, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = ? AND kind = ?`, r.tables.Folders)

	result, err := GetExecutor(ctx, r.db).ExecContext(ctx, query, id, string(kind))
	if err != nil {
		if isForeignKeyError(err) {
			return &domain.NotEmptyError{FolderID: id}
		}
		return fmt.Errorf("delete folder: %w", err)
	}
	return requireAffected(result, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound))
}

// List returns all folders of a kind in insertion order
func (r *FolderRepository) List(ctx context.Context, kind models.Kind) ([]models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT id, kind, name, created_at, updated_at
		FROM %s
		WHERE kind = ?
		ORDER BY created_at ASC, rowid ASC
	`, r.tables.Folders)

	rows, err := GetExecutor(ctx, r.db).QueryContext(ctx, query, string(kind))
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	defer func() { _ = rows.Close() }()

	folders := []models.Folder{}
	for rows.Next() {
		folder, err := scanFolder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan folder: %w", err)
		}
		folders = append(folders, *folder)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate folders: %w", err)
	}
	return folders, nil
}

// ListSummaries returns all folders of a kind with member counts
func (r *FolderRepository) ListSummaries(ctx context.Context, kind models.Kind) ([]models.FolderSummary, error) {
	query := fmt.Sprintf(`
		SELECT f.id, f.kind, f.name, f.created_at, f.updated_at,
			(SELECT COUNT(*) FROM %s m WHERE m.folder_id = f.id AND m.kind = f.kind)
		FROM %s f
		WHERE f.kind = ?
		ORDER BY f.created_at ASC, f.rowid ASC
	`, r.tables.Memberships, r.tables.Folders)

	rows, err := GetExecutor(ctx, r.db).QueryContext(ctx, query, string(kind))
	if err != nil {
		return nil, fmt.Errorf("list folder summaries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	summaries := []models.FolderSummary{}
	for rows.Next() {
		var s models.FolderSummary
		var kindStr, created, updated string
		if err := rows.Scan(&s.ID, &kindStr, &s.Name, &created, &updated, &s.RecordCount); err != nil {
			return nil, fmt.Errorf("scan folder summary: %w", err)
		}
		s.Kind = models.Kind(kindStr)
		if s.CreatedAt, err = parseTime(created); err != nil {
			return nil, err
		}
		if s.UpdatedAt, err = parseTime(updated); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate folder summaries: %w", err)
	}
	return summaries, nil
}

// DeleteAll removes every folder of a kind
func (r *FolderRepository) DeleteAll(ctx context.Context, kind models.Kind) (int64, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE kind = ?`, r.tables.Folders)

	result, err := GetExecutor(ctx, r.db).ExecContext(ctx, query, string(kind))
	if err != nil {
		if isForeignKeyError(err) {
			return 0, fmt.Errorf("delete %s folders: %w", kind, domain.ErrNotEmpty)
		}
		return 0, fmt.Errorf("delete %s folders: %w", kind, err)
	}
	return result.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFolder(row rowScanner) (*models.Folder, error) {
	var folder models.Folder
	var kind, created, updated string
	if err := row.Scan(&folder.ID, &kind, &folder.Name, &created, &updated); err != nil {
		return nil, err
	}
	folder.Kind = models.Kind(kind)

	var err error
	if folder.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	if folder.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, err
	}
	return &folder, nil
}

func requireAffected(result sql.Result, notFound error) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
