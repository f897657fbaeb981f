package seed

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"binder/internal/app"
	"binder/internal/config"
	"binder/internal/domain/models"
	"binder/internal/service/folders"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp(t *testing.T) *app.App {
	t.Helper()
	cfg := &config.Config{
		Environment:    "test",
		DBDriver:       "sqlite",
		SQLitePath:     filepath.Join(t.TempDir(), "seed.db"),
		TablePrefix:    "test_",
		ActionTokenTTL: time.Minute,
	}
	a, err := app.New(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(a.Close)
	return a
}

func list(t *testing.T, a *app.App, kind models.Kind) []models.FolderSummary {
	t.Helper()
	res := a.Gateway.Execute(context.Background(), Caller, folders.ListFolders{Envelope: folders.Envelope{Kind: kind}})
	require.True(t, res.Success, "%+v", res.Error)
	return res.Data.([]models.FolderSummary)
}

func TestSeedAndClear(t *testing.T) {
	a := newApp(t)
	ctx := context.Background()
	s := NewSeeder(a.Gateway, a.Store.Records, a.Logger)

	require.NoError(t, s.Seed(ctx))

	forms := list(t, a, models.KindForm)
	require.Len(t, forms, 2)
	for _, f := range forms {
		assert.Equal(t, 2, f.RecordCount)
	}

	views := list(t, a, models.KindView)
	require.Len(t, views, 1)

	res := a.Gateway.Execute(ctx, Caller, folders.FolderContents{
		Envelope: folders.Envelope{Kind: models.KindView},
		FolderID: views[0].ID,
	})
	require.True(t, res.Success, "%+v", res.Error)
	contents := res.Data.(*models.FolderContents)
	var ids []models.RecordID
	for _, r := range contents.Records {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []models.RecordID{103, 102, 101}, ids)

	res = a.Gateway.Execute(ctx, Caller, folders.UnassignedRecords{Envelope: folders.Envelope{Kind: models.KindForm}})
	require.True(t, res.Success)
	assert.Len(t, res.Data.([]models.Record), 1)

	// records survive a second run
	require.NoError(t, s.Seed(ctx))
	assert.Len(t, list(t, a, models.KindForm), 4)

	require.NoError(t, s.Clear(ctx))
	assert.Empty(t, list(t, a, models.KindForm))
	assert.Empty(t, list(t, a, models.KindView))
}
