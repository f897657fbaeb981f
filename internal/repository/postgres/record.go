package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"binder/internal/domain"
	"binder/internal/domain/models"
	"binder/internal/domain/repositories"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRecordStore implements the RecordStore interface over a records table
type PostgresRecordStore struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewRecordStore creates a new record store
func NewRecordStore(config *RepositoryConfig) repositories.RecordStore {
	return &PostgresRecordStore{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Get retrieves a record of the given kind
func (r *PostgresRecordStore) Get(ctx context.Context, kind models.Kind, id models.RecordID) (*models.Record, error) {
	query := fmt.Sprintf(`
		SELECT id, kind, title, status, meta, created_at, updated_at
		FROM %s
		WHERE id = $1 AND kind = $2
	`, r.tables.Records)

	executor := GetExecutor(ctx, r.pool)
	record, err := scanRecord(executor.QueryRow(ctx, query, id, kind))
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("%s %d: %w", kind, id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get record: %w", err)
	}

	return record, nil
}

// ListActive returns every non-trashed record of a kind
func (r *PostgresRecordStore) ListActive(ctx context.Context, kind models.Kind) ([]models.Record, error) {
	query := fmt.Sprintf(`
		SELECT id, kind, title, status, meta, created_at, updated_at
		FROM %s
		WHERE kind = $1 AND status <> 'trash'
		ORDER BY id ASC
	`, r.tables.Records)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, kind)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

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

// ListByIDs returns the non-trashed records among ids, preserving the order of ids
func (r *PostgresRecordStore) ListByIDs(ctx context.Context, kind models.Kind, ids []models.RecordID) ([]models.Record, error) {
	if len(ids) == 0 {
		return []models.Record{}, nil
	}

	raw := make([]int64, len(ids))
	for i, id := range ids {
		raw[i] = int64(id)
	}

	query := fmt.Sprintf(`
		SELECT r.id, r.kind, r.title, r.status, r.meta, r.created_at, r.updated_at
		FROM unnest($2::bigint[]) WITH ORDINALITY AS wanted(id, pos)
		JOIN %s r ON r.id = wanted.id
		WHERE r.kind = $1 AND r.status <> 'trash'
		ORDER BY wanted.pos
	`, r.tables.Records)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, kind, raw)
	if err != nil {
		return nil, fmt.Errorf("list records by id: %w", err)
	}
	defer rows.Close()

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

// Create inserts a record
func (r *PostgresRecordStore) Create(ctx context.Context, record *models.Record) error {
	meta, err := encodeMeta(record.Meta)
	if err != nil {
		return err
	}
	if record.Status == "" {
		record.Status = models.RecordStatusActive
	}
	now := time.Now().UTC()

	// Zero id lets the sequence pick one; seeds pass explicit ids
	query := fmt.Sprintf(`
		INSERT INTO %s (id, kind, title, status, meta, created_at, updated_at)
		VALUES (COALESCE(NULLIF($1::bigint, 0), nextval(pg_get_serial_sequence('%s', 'id'))), $2, $3, $4, $5, $6, $6)
		RETURNING id, created_at, updated_at
	`, r.tables.Records, r.tables.Records)

	var id int64
	executor := GetExecutor(ctx, r.pool)
	err = executor.QueryRow(ctx, query,
		int64(record.ID),
		record.Kind,
		record.Title,
		record.Status,
		meta,
		now,
	).Scan(&id, &record.CreatedAt, &record.UpdatedAt)
	if err != nil {
		if IsPgDuplicateError(err) {
			return fmt.Errorf("%s %d: %w", record.Kind, record.ID, domain.ErrConflict)
		}
		return fmt.Errorf("create record: %w", err)
	}
	if record.ID != 0 {
		// An explicit id leaves the sequence behind; advance it past the max id
		if _, err := executor.Exec(ctx, sequenceResyncQuery(r.tables.Records)); err != nil {
			return fmt.Errorf("resync record sequence: %w", err)
		}
	}
	record.ID = models.RecordID(id)

	return nil
}

func sequenceResyncQuery(table string) string {
	return fmt.Sprintf(
		`SELECT setval(pg_get_serial_sequence('%[1]s', 'id'), GREATEST((SELECT MAX(id) FROM %[1]s), 1))`,
		table,
	)
}

// Duplicate copies title (with suffix), meta and kind into a new draft record
func (r *PostgresRecordStore) Duplicate(ctx context.Context, kind models.Kind, id models.RecordID, titleSuffix string) (*models.Record, error) {
	query := fmt.Sprintf(`
		INSERT INTO %[1]s (kind, title, status, meta, created_at, updated_at)
		SELECT kind, LEFT(title || $3, 255), 'draft', meta, NOW(), NOW()
		FROM %[1]s
		WHERE id = $1 AND kind = $2 AND status <> 'trash'
		RETURNING id, kind, title, status, meta, created_at, updated_at
	`, r.tables.Records)

	executor := GetExecutor(ctx, r.pool)
	record, err := scanRecord(executor.QueryRow(ctx, query, id, kind, titleSuffix))
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("%s %d: %w", kind, id, domain.ErrNotFound)
		}
		if IsPgDuplicateError(err) {
			return nil, fmt.Errorf("duplicate %s %d: %w", kind, id, domain.ErrConflict)
		}
		return nil, fmt.Errorf("duplicate record: %w", err)
	}

	return record, nil
}

// Trash moves a record to the trash
func (r *PostgresRecordStore) Trash(ctx context.Context, kind models.Kind, id models.RecordID) error {
	return r.setStatus(ctx, kind, id, models.RecordStatusTrash)
}

// Restore puts a record back into status. Anything but active comes back as a draft.
func (r *PostgresRecordStore) Restore(ctx context.Context, kind models.Kind, id models.RecordID, status models.RecordStatus) error {
	return r.setStatus(ctx, kind, id, restoredStatus(status))
}

func (r *PostgresRecordStore) setStatus(ctx context.Context, kind models.Kind, id models.RecordID, status models.RecordStatus) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND kind = $3
	`, r.tables.Records)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, status, id, kind)
	if err != nil {
		return fmt.Errorf("set record status %s: %w", status, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("%s %d: %w", kind, id, domain.ErrNotFound)
	}

	return nil
}

func restoredStatus(status models.RecordStatus) models.RecordStatus {
	if status == models.RecordStatusActive {
		return status
	}
	return models.RecordStatusDraft
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*models.Record, error) {
	var record models.Record
	var id int64
	var meta []byte
	err := row.Scan(
		&id,
		&record.Kind,
		&record.Title,
		&record.Status,
		&meta,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	record.ID = models.RecordID(id)

	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &record.Meta); err != nil {
			return nil, fmt.Errorf("decode record meta: %w", err)
		}
	}

	return &record, nil
}

func encodeMeta(meta models.JSONMap) ([]byte, error) {
	if meta == nil {
		return []byte("{}"), nil
	}
	payload, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("encode record meta: %w", err)
	}
	return payload, nil
}
