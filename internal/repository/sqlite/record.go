package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"binder/internal/config"
	"binder/internal/domain"
	"binder/internal/domain/models"
	"binder/internal/domain/repositories"
)

// RecordStore implements repositories.RecordStore on SQLite
type RecordStore struct {
	db     *sql.DB
	tables *TableNames
}

// NewRecordStore creates a new record store
func NewRecordStore(config *RepositoryConfig) repositories.RecordStore {
	return &RecordStore{db: config.DB, tables: config.Tables}
}

const recordColumns = `id, kind, title, status, meta, created_at, updated_at`

// Get retrieves a record of the given kind
func (r *RecordStore) Get(ctx context.Context, kind models.Kind, id models.RecordID) (*models.Record, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = ? AND kind = ?`, recordColumns, r.tables.Records)

	record, err := scanRecord(GetExecutor(ctx, r.db).QueryRowContext(ctx, query, int64(id), string(kind)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s %d: %w", kind, id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get record: %w", err)
	}
	return record, nil
}

// ListActive returns every non-trashed record of a kind
func (r *RecordStore) ListActive(ctx context.Context, kind models.Kind) ([]models.Record, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE kind = ? AND status <> 'trash'
		ORDER BY id ASC
	`, recordColumns, r.tables.Records)

	return r.queryRecords(ctx, query, string(kind))
}

// ListByIDs returns the non-trashed records among ids, preserving the order of ids
func (r *RecordStore) ListByIDs(ctx context.Context, kind models.Kind, ids []models.RecordID) ([]models.Record, error) {
	if len(ids) == 0 {
		return []models.Record{}, nil
	}

	args := make([]any, 0, len(ids)+1)
	args = append(args, string(kind))
	for _, id := range ids {
		args = append(args, int64(id))
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")

	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE kind = ? AND status <> 'trash' AND id IN (%s)
	`, recordColumns, r.tables.Records, placeholders)

	found, err := r.queryRecords(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	byID := make(map[models.RecordID]models.Record, len(found))
	for _, rec := range found {
		byID[rec.ID] = rec
	}
	records := make([]models.Record, 0, len(found))
	for _, id := range ids {
		if rec, ok := byID[id]; ok {
			records = append(records, rec)
			delete(byID, id)
		}
	}
	return records, nil
}

// Create inserts a record. A zero ID lets SQLite assign one.
func (r *RecordStore) Create(ctx context.Context, record *models.Record) error {
	meta, err := encodeMeta(record.Meta)
	if err != nil {
		return err
	}
	if record.Status == "" {
		record.Status = models.RecordStatusActive
	}
	now := time.Now().UTC()

	var id any
	if record.ID != 0 {
		id = int64(record.ID)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, kind, title, status, meta, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, r.tables.Records)

	result, err := GetExecutor(ctx, r.db).ExecContext(ctx, query,
		id,
		string(record.Kind),
		record.Title,
		string(record.Status),
		meta,
		formatTime(now),
		formatTime(now),
	)
	if err != nil {
		if isDuplicateError(err) {
			return fmt.Errorf("%s %d: %w", record.Kind, record.ID, domain.ErrConflict)
		}
		return fmt.Errorf("create record: %w", err)
	}

	newID, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("create record: %w", err)
	}
	record.ID = models.RecordID(newID)
	record.CreatedAt = now
	record.UpdatedAt = now
	return nil
}

// Duplicate copies title (with suffix), meta and kind into a new draft record
func (r *RecordStore) Duplicate(ctx context.Context, kind models.Kind, id models.RecordID, titleSuffix string) (*models.Record, error) {
	now := formatTime(time.Now())
	query := fmt.Sprintf(`
		INSERT INTO %[1]s (kind, title, status, meta, created_at, updated_at)
		SELECT kind, substr(title || ?, 1, %[2]d), 'draft', meta, ?, ?
		FROM %[1]s
		WHERE id = ? AND kind = ? AND status <> 'trash'
		RETURNING %[3]s
	`, r.tables.Records, config.MaxRecordTitleLength, recordColumns)

	record, err := scanRecord(GetExecutor(ctx, r.db).QueryRowContext(ctx, query,
		titleSuffix, now, now, int64(id), string(kind)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s %d: %w", kind, id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("duplicate record: %w", err)
	}
	return record, nil
}

// Trash moves a record to the trash
func (r *RecordStore) Trash(ctx context.Context, kind models.Kind, id models.RecordID) error {
	return r.setStatus(ctx, kind, id, models.RecordStatusTrash)
}

// Restore puts a record back into status. Anything but active comes back as a draft.
func (r *RecordStore) Restore(ctx context.Context, kind models.Kind, id models.RecordID, status models.RecordStatus) error {
	if status != models.RecordStatusActive {
		status = models.RecordStatusDraft
	}
	return r.setStatus(ctx, kind, id, status)
}

func (r *RecordStore) setStatus(ctx context.Context, kind models.Kind, id models.RecordID, status models.RecordStatus) error {
	query := fmt.Sprintf(`UPDATE %s SET status = ?, updated_at = ? WHERE id = ? AND kind = ?`, r.tables.Records)

	result, err := GetExecutor(ctx, r.db).ExecContext(ctx, query,
		string(status), formatTime(time.Now()), int64(id), string(kind))
	if err != nil {
		return fmt.Errorf("set record status %s: %w", status, err)
	}
	return requireAffected(result, fmt.Errorf("%s %d: %w", kind, id, domain.ErrNotFound))
}

func (r *RecordStore) queryRecords(ctx context.Context, query string, args ...any) ([]models.Record, error) {
	rows, err := GetExecutor(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	records := []models.Record{}
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return records, nil
}

func scanRecord(row rowScanner) (*models.Record, error) {
	var record models.Record
	var id int64
	var kind, status, meta, created, updated string
	if err := row.Scan(&id, &kind, &record.Title, &status, &meta, &created, &updated); err != nil {
		return nil, err
	}
	record.ID = models.RecordID(id)
	record.Kind = models.Kind(kind)
	record.Status = models.RecordStatus(status)

	if meta != "" {
		if err := json.Unmarshal([]byte(meta), &record.Meta); err != nil {
			return nil, fmt.Errorf("decode record meta: %w", err)
		}
	}

	var err error
	if record.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	if record.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, err
	}
	return &record, nil
}

func encodeMeta(meta models.JSONMap) (string, error) {
	if meta == nil {
		return "{}", nil
	}
	payload, err := json.Marshal(meta)
	if err != nil {
		return "", fmt.Errorf("encode record meta: %w", err)
	}
	return string(payload), nil
}
