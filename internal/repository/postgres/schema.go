package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Migrate creates the folder tables if they do not exist.
//
// Memberships use (kind, record_id) as primary key, which makes single-folder
// membership a storage guarantee. The composite foreign key to (folders.id, kind)
// keeps memberships inside their kind and blocks deleting a folder that still
// has members. Orders have no foreign key: a deleted folder leaves its order behind.
func Migrate(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	prefix := strings.TrimSuffix(tables.Folders, "folders")

	statements := []string{
		`CREATE TABLE IF NOT EXISTS ` + tables.Folders + ` (
			id UUID PRIMARY KEY,
			kind TEXT NOT NULL CHECK (kind IN ('form', 'view')),
			name VARCHAR(255) NOT NULL CHECK (length(btrim(name)) > 0),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (id, kind)
		)`,
		`CREATE TABLE IF NOT EXISTS ` + tables.Records + ` (
			id BIGSERIAL PRIMARY KEY,
			kind TEXT NOT NULL CHECK (kind IN ('form', 'view')),
			title VARCHAR(255) NOT NULL,
			status TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'draft', 'trash')),
			meta JSONB NOT NULL DEFAULT '{}'::jsonb,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS ` + tables.Memberships + ` (
			kind TEXT NOT NULL,
			record_id BIGINT NOT NULL,
			folder_id UUID NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (kind, record_id),
			FOREIGN KEY (folder_id, kind) REFERENCES ` + tables.Folders + ` (id, kind) ON DELETE RESTRICT
		)`,
		`CREATE TABLE IF NOT EXISTS ` + tables.Orders + ` (
			folder_id UUID PRIMARY KEY,
			record_ids JSONB NOT NULL DEFAULT '[]'::jsonb,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_` + prefix + `folders_kind_created ON ` + tables.Folders + ` (kind, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_` + prefix + `memberships_folder ON ` + tables.Memberships + ` (kind, folder_id)`,
		`CREATE INDEX IF NOT EXISTS idx_` + prefix + `records_kind_status ON ` + tables.Records + ` (kind, status)`,
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// DropAll drops every folder table for the prefix (dependents first)
func DropAll(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	for _, table := range []string{tables.Orders, tables.Memberships, tables.Folders, tables.Records} {
		if _, err := pool.Exec(ctx, "DROP TABLE IF EXISTS "+table+" CASCADE"); err != nil {
			return fmt.Errorf("drop %s: %w", table, err)
		}
	}
	return nil
}
