package repository

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"binder/internal/config"
	"binder/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenSQLite(t *testing.T) {
	cfg := &config.Config{
		DBDriver:    "sqlite",
		SQLitePath:  filepath.Join(t.TempDir(), "binder.db"),
		TablePrefix: "test_",
	}
	ctx := context.Background()

	store, err := Open(ctx, cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, "sqlite", store.Driver)
	require.NoError(t, store.Ping(ctx))
	require.NoError(t, store.Migrate(ctx))

	folder := &models.Folder{Kind: models.KindForm, Name: "Smoke"}
	require.NoError(t, store.Folders.Create(ctx, folder))

	require.NoError(t, store.DropAll(ctx))
	require.NoError(t, store.Migrate(ctx))
	list, err := store.Folders.List(ctx, models.KindForm)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestOpenRejectsBadConfig(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	_, err := Open(context.Background(), &config.Config{DBDriver: "mysql"}, logger)
	assert.ErrorContains(t, err, "unknown DB_DRIVER")

	_, err = Open(context.Background(), &config.Config{DBDriver: "postgres"}, logger)
	assert.ErrorContains(t, err, "DATABASE_URL")
}
