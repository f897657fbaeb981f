// Package repository opens the configured storage backend and hands out
// its repositories behind the domain interfaces.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"binder/internal/config"
	"binder/internal/domain/repositories"
	"binder/internal/repository/postgres"
	"binder/internal/repository/sqlite"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store bundles the repositories of one backend
type Store struct {
	Driver      string
	Folders     repositories.FolderRepository
	Memberships repositories.MembershipRepository
	Orders      repositories.OrderRepository
	Records     repositories.RecordStore
	TxManager   repositories.TransactionManager

	ping    func(ctx context.Context) error
	migrate func(ctx context.Context) error
	drop    func(ctx context.Context) error
	close   func()
}

// Open connects to the backend named by cfg.DBDriver
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Store, error) {
	switch cfg.DBDriver {
	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for the postgres driver")
		}
		pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return newPostgresStore(pool, postgres.NewTableNames(cfg.TablePrefix), logger), nil

	case "sqlite":
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return newSQLiteStore(db, sqlite.NewTableNames(cfg.TablePrefix), logger), nil

	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q (want postgres or sqlite)", cfg.DBDriver)
	}
}

func newPostgresStore(pool *pgxpool.Pool, tables *postgres.TableNames, logger *slog.Logger) *Store {
	repoConfig := &postgres.RepositoryConfig{Pool: pool, Tables: tables, Logger: logger}
	return &Store{
		Driver:      "postgres",
		Folders:     postgres.NewFolderRepository(repoConfig),
		Memberships: postgres.NewMembershipRepository(repoConfig),
		Orders:      postgres.NewOrderRepository(repoConfig),
		Records:     postgres.NewRecordStore(repoConfig),
		TxManager:   postgres.NewTransactionManager(repoConfig),
		ping:        pool.Ping,
		migrate:     func(ctx context.Context) error { return postgres.Migrate(ctx, pool, tables) },
		drop:        func(ctx context.Context) error { return postgres.DropAll(ctx, pool, tables) },
		close:       pool.Close,
	}
}

func newSQLiteStore(db *sql.DB, tables *sqlite.TableNames, logger *slog.Logger) *Store {
	repoConfig := &sqlite.RepositoryConfig{DB: db, Tables: tables, Logger: logger}
	return &Store{
		Driver:      "sqlite",
		Folders:     sqlite.NewFolderRepository(repoConfig),
		Memberships: sqlite.NewMembershipRepository(repoConfig),
		Orders:      sqlite.NewOrderRepository(repoConfig),
		Records:     sqlite.NewRecordStore(repoConfig),
		TxManager:   sqlite.NewTransactionManager(repoConfig),
		ping:        db.PingContext,
		migrate:     func(ctx context.Context) error { return sqlite.Migrate(ctx, db, tables) },
		drop:        func(ctx context.Context) error { return sqlite.DropAll(ctx, db, tables) },
		close:       func() { _ = db.Close() },
	}
}

// Ping checks that the backend is reachable
func (s *Store) Ping(ctx context.Context) error {
	return s.ping(ctx)
}

// Migrate creates the folder tables if they do not exist
func (s *Store) Migrate(ctx context.Context) error {
	return s.migrate(ctx)
}

// DropAll drops every folder table
func (s *Store) DropAll(ctx context.Context) error {
	return s.drop(ctx)
}

// Close releases the connection pool
func (s *Store) Close() {
	s.close()
}
