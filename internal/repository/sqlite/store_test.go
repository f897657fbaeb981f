package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"binder/internal/config"
	"binder/internal/domain"
	"binder/internal/domain/models"
	"binder/internal/domain/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConfig(t *testing.T) *RepositoryConfig {
	t.Helper()
	db, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	tables := NewTableNames("test_")
	require.NoError(t, Migrate(context.Background(), db, tables))

	return &RepositoryConfig{
		DB:     db,
		Tables: tables,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func createRecord(t *testing.T, store repositories.RecordStore, kind models.Kind, id models.RecordID, title string) *models.Record {
	t.Helper()
	record := &models.Record{ID: id, Kind: kind, Title: title, Meta: models.JSONMap{"fields": float64(3)}}
	require.NoError(t, store.Create(context.Background(), record))
	return record
}

func TestMigrateIsIdempotent(t *testing.T) {
	cfg := newTestConfig(t)
	assert.NoError(t, Migrate(context.Background(), cfg.DB, cfg.Tables))
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "binder.db")
	db, err := Open(path)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	require.NoError(t, Migrate(context.Background(), db, NewTableNames("")))
	assert.FileExists(t, path)
}

func TestFolderRepository(t *testing.T) {
	cfg := newTestConfig(t)
	repo := NewFolderRepository(cfg)
	ctx := context.Background()

	folder := &models.Folder{Kind: models.KindForm, Name: "Leads"}
	require.NoError(t, repo.Create(ctx, folder))
	require.NotEmpty(t, folder.ID)

	got, err := repo.GetByID(ctx, models.KindForm, folder.ID)
	require.NoError(t, err)
	assert.Equal(t, "Leads", got.Name)
	assert.True(t, folder.CreatedAt.Equal(got.CreatedAt))

	_, err = repo.GetByID(ctx, models.KindView, folder.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound), "folders are scoped by kind")

	got.Name = "Hot leads"
	require.NoError(t, repo.UpdateName(ctx, got))
	renamed, err := repo.GetByID(ctx, models.KindForm, folder.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hot leads", renamed.Name)

	err = repo.UpdateName(ctx, &models.Folder{ID: "missing", Kind: models.KindForm, Name: "x"})
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	err = repo.Create(ctx, &models.Folder{ID: folder.ID, Kind: models.KindForm, Name: "Clash"})
	assert.True(t, errors.Is(err, domain.ErrConflict))

	require.NoError(t, repo.Delete(ctx, models.KindForm, folder.ID))
	err = repo.Delete(ctx, models.KindForm, folder.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestFolderRepositoryList(t *testing.T) {
	cfg := newTestConfig(t)
	folders := NewFolderRepository(cfg)
	memberships := NewMembershipRepository(cfg)
	records := NewRecordStore(cfg)
	ctx := context.Background()

	names := []string{"Zeta", "Alpha", "Mid"}
	ids := make([]string, len(names))
	for i, name := range names {
		f := &models.Folder{Kind: models.KindView, Name: name}
		require.NoError(t, folders.Create(ctx, f))
		ids[i] = f.ID
	}
	require.NoError(t, folders.Create(ctx, &models.Folder{Kind: models.KindForm, Name: "Other kind"}))

	createRecord(t, records, models.KindView, 1, "One")
	createRecord(t, records, models.KindView, 2, "Two")
	require.NoError(t, memberships.Upsert(ctx, models.KindView, 1, ids[1]))
	require.NoError(t, memberships.Upsert(ctx, models.KindView, 2, ids[1]))

	list, err := folders.List(ctx, models.KindView)
	require.NoError(t, err)
	got := make([]string, len(list))
	for i, f := range list {
		got[i] = f.Name
	}
	assert.Equal(t, names, got, "folders come back in creation order")

	summaries, err := folders.ListSummaries(ctx, models.KindView)
	require.NoError(t, err)
	require.Len(t, summaries, 3)
	assert.Equal(t, 0, summaries[0].RecordCount)
	assert.Equal(t, 2, summaries[1].RecordCount)

	_, err = folders.DeleteAll(ctx, models.KindView)
	assert.True(t, errors.Is(err, domain.ErrNotEmpty))

	_, err = memberships.RemoveAll(ctx, models.KindView)
	require.NoError(t, err)
	n, err := folders.DeleteAll(ctx, models.KindView)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	remaining, err := folders.List(ctx, models.KindForm)
	require.NoError(t, err)
	assert.Len(t, remaining, 1)
}

func TestFolderRepositoryDeleteWithMembers(t *testing.T) {
	cfg := newTestConfig(t)
	folders := NewFolderRepository(cfg)
	memberships := NewMembershipRepository(cfg)
	ctx := context.Background()

	f := &models.Folder{Kind: models.KindForm, Name: "Occupied"}
	require.NoError(t, folders.Create(ctx, f))
	createRecord(t, NewRecordStore(cfg), models.KindForm, 1, "Member")
	require.NoError(t, memberships.Upsert(ctx, models.KindForm, 1, f.ID))

	// the restricting foreign key reports a trigger constraint, not FOREIGNKEY
	_, rawErr := cfg.DB.ExecContext(ctx, `DELETE FROM `+cfg.Tables.Folders+` WHERE id = ?`, f.ID)
	require.Error(t, rawErr)
	assert.True(t, isForeignKeyError(rawErr), "got %v", rawErr)
	assert.False(t, isForeignKeyError(errors.New("FOREIGN KEY constraint failed")))

	err := folders.Delete(ctx, models.KindForm, f.ID)
	var notEmpty *domain.NotEmptyError
	require.True(t, errors.As(err, &notEmpty), "got %v", err)
	assert.Equal(t, f.ID, notEmpty.FolderID)

	// the folder is still there
	_, err = folders.GetByID(ctx, models.KindForm, f.ID)
	require.NoError(t, err)
}

func TestMembershipRepository(t *testing.T) {
	cfg := newTestConfig(t)
	folders := NewFolderRepository(cfg)
	repo := NewMembershipRepository(cfg)
	ctx := context.Background()

	a := &models.Folder{Kind: models.KindForm, Name: "A"}
	b := &models.Folder{Kind: models.KindForm, Name: "B"}
	v := &models.Folder{Kind: models.KindView, Name: "V"}
	for _, f := range []*models.Folder{a, b, v} {
		require.NoError(t, folders.Create(ctx, f))
	}

	require.NoError(t, repo.Upsert(ctx, models.KindForm, 1, a.ID))
	require.NoError(t, repo.Upsert(ctx, models.KindForm, 1, b.ID))
	require.NoError(t, repo.Upsert(ctx, models.KindView, 1, v.ID))

	folderID, err := repo.GetFolderID(ctx, models.KindForm, 1)
	require.NoError(t, err)
	require.NotNil(t, folderID)
	assert.Equal(t, b.ID, *folderID)

	members, err := repo.ListMembers(ctx, models.KindForm, a.ID)
	require.NoError(t, err)
	assert.Empty(t, members)

	// a view folder id cannot hold a form
	err = repo.Upsert(ctx, models.KindForm, 2, v.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	err = repo.Upsert(ctx, models.KindForm, 2, "no-such-folder")
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	require.NoError(t, repo.Upsert(ctx, models.KindForm, 3, b.ID))
	count, err := repo.CountMembers(ctx, models.KindForm, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	assigned, err := repo.ListAssigned(ctx, models.KindForm)
	require.NoError(t, err)
	assert.Equal(t, []models.RecordID{1, 3}, assigned)

	require.NoError(t, repo.Remove(ctx, models.KindForm, 1))
	folderID, err = repo.GetFolderID(ctx, models.KindForm, 1)
	require.NoError(t, err)
	assert.Nil(t, folderID)

	n, err := repo.RemoveAll(ctx, models.KindForm)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	// the view membership of the same id is untouched
	folderID, err = repo.GetFolderID(ctx, models.KindView, 1)
	require.NoError(t, err)
	require.NotNil(t, folderID)
	assert.Equal(t, v.ID, *folderID)
}

func TestOrderRepository(t *testing.T) {
	cfg := newTestConfig(t)
	repo := NewOrderRepository(cfg)
	ctx := context.Background()

	ids, err := repo.Get(ctx, "folder-1")
	require.NoError(t, err)
	assert.NotNil(t, ids)
	assert.Empty(t, ids)

	require.NoError(t, repo.Save(ctx, &models.FolderOrder{FolderID: "folder-1", RecordIDs: []models.RecordID{9, 2, 9}}))
	require.NoError(t, repo.Save(ctx, &models.FolderOrder{FolderID: "folder-2", RecordIDs: []models.RecordID{1}}))

	ids, err = repo.Get(ctx, "folder-1")
	require.NoError(t, err)
	assert.Equal(t, []models.RecordID{9, 2, 9}, ids)

	require.NoError(t, repo.Save(ctx, &models.FolderOrder{FolderID: "folder-1", RecordIDs: []models.RecordID{4}}))
	ids, err = repo.Get(ctx, "folder-1")
	require.NoError(t, err)
	assert.Equal(t, []models.RecordID{4}, ids)
}

func TestRecordStore(t *testing.T) {
	cfg := newTestConfig(t)
	store := NewRecordStore(cfg)
	ctx := context.Background()

	explicit := createRecord(t, store, models.KindForm, 10, "Contact")
	assert.Equal(t, models.RecordID(10), explicit.ID)
	assert.Equal(t, models.RecordStatusActive, explicit.Status)

	generated := createRecord(t, store, models.KindForm, 0, "Feedback")
	assert.Greater(t, int64(generated.ID), int64(10))

	err := store.Create(ctx, &models.Record{ID: 10, Kind: models.KindForm, Title: "Again"})
	assert.True(t, errors.Is(err, domain.ErrConflict))

	got, err := store.Get(ctx, models.KindForm, 10)
	require.NoError(t, err)
	assert.Equal(t, "Contact", got.Title)
	assert.Equal(t, float64(3), got.Meta["fields"])

	_, err = store.Get(ctx, models.KindView, 10)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	byIDs, err := store.ListByIDs(ctx, models.KindForm, []models.RecordID{generated.ID, 404, 10})
	require.NoError(t, err)
	require.Len(t, byIDs, 2)
	assert.Equal(t, generated.ID, byIDs[0].ID)
	assert.Equal(t, models.RecordID(10), byIDs[1].ID)

	empty, err := store.ListByIDs(ctx, models.KindForm, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestRecordStoreLifecycle(t *testing.T) {
	cfg := newTestConfig(t)
	store := NewRecordStore(cfg)
	ctx := context.Background()

	createRecord(t, store, models.KindView, 1, "Table")
	createRecord(t, store, models.KindView, 2, "Map")

	require.NoError(t, store.Trash(ctx, models.KindView, 2))
	active, err := store.ListActive(ctx, models.KindView)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, models.RecordID(1), active[0].ID)

	_, err = store.Duplicate(ctx, models.KindView, 2, " (Copy)")
	assert.True(t, errors.Is(err, domain.ErrNotFound), "trashed records are not copied")

	require.NoError(t, store.Restore(ctx, models.KindView, 2, models.RecordStatusTrash))
	restored, err := store.Get(ctx, models.KindView, 2)
	require.NoError(t, err)
	assert.Equal(t, models.RecordStatusDraft, restored.Status)

	require.NoError(t, store.Restore(ctx, models.KindView, 2, models.RecordStatusActive))
	restored, err = store.Get(ctx, models.KindView, 2)
	require.NoError(t, err)
	assert.Equal(t, models.RecordStatusActive, restored.Status)

	err = store.Trash(ctx, models.KindView, 404)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestRecordStoreDuplicate(t *testing.T) {
	cfg := newTestConfig(t)
	store := NewRecordStore(cfg)
	ctx := context.Background()

	createRecord(t, store, models.KindForm, 1, "Registration")
	long := createRecord(t, store, models.KindForm, 2, strings.Repeat("x", config.MaxRecordTitleLength))

	dup, err := store.Duplicate(ctx, models.KindForm, 1, " (Copy)")
	require.NoError(t, err)
	assert.Equal(t, "Registration (Copy)", dup.Title)
	assert.Equal(t, models.RecordStatusDraft, dup.Status)
	assert.Equal(t, models.KindForm, dup.Kind)
	assert.Equal(t, float64(3), dup.Meta["fields"])
	assert.NotEqual(t, models.RecordID(1), dup.ID)

	capped, err := store.Duplicate(ctx, models.KindForm, long.ID, " (Copy)")
	require.NoError(t, err)
	assert.Len(t, capped.Title, config.MaxRecordTitleLength)
}

func TestRecordStoreGeneratedIDAfterExplicit(t *testing.T) {
	cfg := newTestConfig(t)
	store := NewRecordStore(cfg)
	ctx := context.Background()

	createRecord(t, store, models.KindView, 1, "Grid")
	createRecord(t, store, models.KindView, 2, "Kanban")

	dup, err := store.Duplicate(ctx, models.KindView, 1, " (Copy)")
	require.NoError(t, err)
	assert.Equal(t, models.RecordID(3), dup.ID)

	next := createRecord(t, store, models.KindView, 0, "Calendar")
	assert.Equal(t, models.RecordID(4), next.ID)
}

func TestTransactionManager(t *testing.T) {
	cfg := newTestConfig(t)
	tm := NewTransactionManager(cfg)
	folders := NewFolderRepository(cfg)
	ctx := context.Background()

	boom := errors.New("boom")
	err := tm.ExecTx(ctx, func(ctx context.Context) error {
		_, ok := repositories.TxFrom[*sql.Tx](ctx)
		assert.True(t, ok)
		require.NoError(t, folders.Create(ctx, &models.Folder{Kind: models.KindForm, Name: "Rolled back"}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	list, err := folders.List(ctx, models.KindForm)
	require.NoError(t, err)
	assert.Empty(t, list)

	err = tm.ExecTx(ctx, func(ctx context.Context) error {
		// nested calls join the outer transaction
		return tm.ExecTx(ctx, func(ctx context.Context) error {
			return folders.Create(ctx, &models.Folder{Kind: models.KindForm, Name: "Kept"})
		})
	})
	require.NoError(t, err)

	list, err = folders.List(ctx, models.KindForm)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestDropAll(t *testing.T) {
	cfg := newTestConfig(t)
	ctx := context.Background()

	require.NoError(t, DropAll(ctx, cfg.DB, cfg.Tables))

	_, err := NewFolderRepository(cfg).List(ctx, models.KindForm)
	assert.Error(t, err)

	require.NoError(t, Migrate(ctx, cfg.DB, cfg.Tables))
	list, err := NewFolderRepository(cfg).List(ctx, models.KindForm)
	require.NoError(t, err)
	assert.Empty(t, list)
}
