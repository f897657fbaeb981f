// Package sqlite implements the folder repositories on an embedded SQLite
// database. It backs local development and the test suites; table shapes
// match the PostgreSQL schema.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"binder/internal/domain/repositories"

	sqlitedrv "modernc.org/sqlite" // pure go sqlite driver
	sqlite3 "modernc.org/sqlite/lib"
)

// timeLayout keeps timestamps lexically sortable
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// DBTX is implemented by both *sql.DB and *sql.Tx
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// RepositoryConfig holds configuration for repository implementations
type RepositoryConfig struct {
	DB     *sql.DB
	Tables *TableNames
	Logger *slog.Logger
}

// TableNames holds prefixed table names
type TableNames struct {
	Folders     string
	Memberships string
	Orders      string
	Records     string
}

// NewTableNames creates table names with the given prefix
func NewTableNames(prefix string) *TableNames {
	return &TableNames{
		Folders:     prefix + "folders",
		Memberships: prefix + "folder_memberships",
		Orders:      prefix + "folder_orders",
		Records:     prefix + "records",
	}
}

// Open opens (creating if needed) a SQLite database with foreign keys on.
// ":memory:" opens a private in-memory database limited to one connection,
// since every new connection to ":memory:" would see an empty database.
func Open(path string) (*sql.DB, error) {
	if path == "" {
		path = "binder.db"
	}

	memory := path == ":memory:"
	dsn := "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	if !memory {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
		dsn += "&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if memory {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return db, nil
}

// Migrate creates the folder tables if they do not exist
func Migrate(ctx context.Context, db *sql.DB, tables *TableNames) error {
	prefix := strings.TrimSuffix(tables.Folders, "folders")

	statements := []string{
		`CREATE TABLE IF NOT EXISTS ` + tables.Folders + ` (
			id TEXT PRIMARY KEY,
			kind TEXT NOT NULL CHECK (kind IN ('form', 'view')),
			name TEXT NOT NULL CHECK (length(trim(name)) > 0),
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			UNIQUE (id, kind)
		)`,
		`CREATE TABLE IF NOT EXISTS ` + tables.Records + ` (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			kind TEXT NOT NULL CHECK (kind IN ('form', 'view')),
			title TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'draft', 'trash')),
			meta TEXT NOT NULL DEFAULT '{}',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS ` + tables.Memberships + ` (
			kind TEXT NOT NULL,
			record_id INTEGER NOT NULL,
			folder_id TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			PRIMARY KEY (kind, record_id),
			FOREIGN KEY (folder_id, kind) REFERENCES ` + tables.Folders + ` (id, kind) ON DELETE RESTRICT
		)`,
		`CREATE TABLE IF NOT EXISTS ` + tables.Orders + ` (
			folder_id TEXT PRIMARY KEY,
			record_ids TEXT NOT NULL DEFAULT '[]',
			updated_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_` + prefix + `folders_kind_created ON ` + tables.Folders + ` (kind, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_` + prefix + `memberships_folder ON ` + tables.Memberships + ` (kind, folder_id)`,
		`CREATE INDEX IF NOT EXISTS idx_` + prefix + `records_kind_status ON ` + tables.Records + ` (kind, status)`,
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// DropAll drops every folder table (dependents first)
func DropAll(ctx context.Context, db *sql.DB, tables *TableNames) error {
	for _, table := range []string{tables.Orders, tables.Memberships, tables.Folders, tables.Records} {
		if _, err := db.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
			return fmt.Errorf("drop %s: %w", table, err)
		}
	}
	return nil
}

// GetExecutor returns the *sql.Tx stored in ctx, or db when there is none
func GetExecutor(ctx context.Context, db *sql.DB) DBTX {
	if tx, ok := repositories.TxFrom[*sql.Tx](ctx); ok {
		return tx
	}
	return db
}

// TransactionManager implements the TransactionManager interface
type TransactionManager struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewTransactionManager creates a new transaction manager
func NewTransactionManager(config *RepositoryConfig) repositories.TransactionManager {
	return &TransactionManager{db: config.DB, logger: config.Logger}
}

// ExecTx executes a function within a transaction
func (tm *TransactionManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	if _, ok := repositories.TxFrom[*sql.Tx](ctx); ok {
		return fn(ctx)
	}

	tx, err := tm.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			tm.logger.Warn("rollback failed", "error", err)
		}
	}()

	if err := fn(repositories.WithTx(ctx, tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// isForeignKeyError checks for a foreign key violation. Inserts report
// SQLITE_CONSTRAINT_FOREIGNKEY, but an ON DELETE RESTRICT parent delete
// reports SQLITE_CONSTRAINT_TRIGGER, so match the primary code and message.
func isForeignKeyError(err error) bool {
	code := sqliteCode(err)
	if code == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY {
		return true
	}
	return code&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(err.Error(), "FOREIGN KEY")
}

// isDuplicateError checks for primary key or unique violations
func isDuplicateError(err error) bool {
	code := sqliteCode(err)
	return code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY || code == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}

func sqliteCode(err error) int {
	var sqlErr *sqlitedrv.Error
	if errors.As(err, &sqlErr) {
		return sqlErr.Code()
	}
	return 0
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}
