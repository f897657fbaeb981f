package folders

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"binder/internal/auth"
	"binder/internal/capabilities"
	"binder/internal/domain/models"
	"binder/internal/domain/repositories"
	"binder/internal/repository/sqlite"

	"github.com/stretchr/testify/require"
)

// harness wires a gateway to a private in-memory database
type harness struct {
	gw         *Gateway
	registry   *folderRegistry
	membership *membershipIndex
	ordering   *orderingStore
	records    repositories.RecordStore
	tokens     *auth.ActionTokens
	admin      *models.Caller
}

type harnessOption func(*harnessConfig)

type harnessConfig struct {
	wrapRecords func(repositories.RecordStore) repositories.RecordStore
}

// withRecordStore lets a test intercept Record Store calls
func withRecordStore(wrap func(repositories.RecordStore) repositories.RecordStore) harnessOption {
	return func(c *harnessConfig) { c.wrapRecords = wrap }
}

func newHarness(t *testing.T, opts ...harnessOption) *harness {
	t.Helper()

	var cfg harnessConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	db, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	tables := sqlite.NewTableNames("test_")
	require.NoError(t, sqlite.Migrate(context.Background(), db, tables))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repoConfig := &sqlite.RepositoryConfig{DB: db, Tables: tables, Logger: logger}

	folderRepo := sqlite.NewFolderRepository(repoConfig)
	membershipRepo := sqlite.NewMembershipRepository(repoConfig)
	orderRepo := sqlite.NewOrderRepository(repoConfig)
	records := sqlite.NewRecordStore(repoConfig)
	if cfg.wrapRecords != nil {
		records = cfg.wrapRecords(records)
	}

	policy, err := capabilities.NewRegistry()
	require.NoError(t, err)
	tokens, err := auth.NewActionTokens("test-action-secret", time.Hour)
	require.NoError(t, err)

	registry := NewFolderRegistry(folderRepo, membershipRepo, logger)
	membership := NewMembershipIndex(membershipRepo, folderRepo, records, logger)
	ordering := NewOrderingStore(orderRepo, logger)

	gw := NewGateway(GatewayDeps{
		Registry:   registry,
		Membership: membership,
		Ordering:   ordering,
		Records:    records,
		TxManager:  sqlite.NewTransactionManager(repoConfig),
		Authorizer: policy,
		Tokens:     tokens,
		Logger:     logger,
	})

	return &harness{
		gw:         gw,
		registry:   registry.(*folderRegistry),
		membership: membership.(*membershipIndex),
		ordering:   ordering.(*orderingStore),
		records:    records,
		tokens:     tokens,
		admin: &models.Caller{
			UserID:       "admin-1",
			Capabilities: []string{"gform_full_access", "edit_gravityviews"},
		},
	}
}

// run executes cmd as the admin, minting a token first when the action mutates
func (h *harness) run(t *testing.T, cmd Command) *Result {
	t.Helper()
	return h.runAs(t, h.admin, withToken(t, h, h.admin, cmd))
}

func (h *harness) runAs(t *testing.T, caller *models.Caller, cmd Command) *Result {
	t.Helper()
	return h.gw.Execute(context.Background(), caller, cmd)
}

// withToken returns cmd carrying a fresh token for caller when the action needs one
func withToken(t *testing.T, h *harness, caller *models.Caller, cmd Command) Command {
	t.Helper()
	if !h.gw.authorizer.Mutating(string(cmd.Action())) {
		return cmd
	}
	token, _, err := h.tokens.Mint(caller.UserID, string(cmd.Action()))
	require.NoError(t, err)

	return WithToken(cmd, token)
}

// seedRecord stores a record with an explicit id
func (h *harness) seedRecord(t *testing.T, kind models.Kind, id models.RecordID, title string) {
	t.Helper()
	err := h.records.Create(context.Background(), &models.Record{
		ID:     id,
		Kind:   kind,
		Title:  title,
		Status: models.RecordStatusActive,
	})
	require.NoError(t, err)
}

// createFolder creates a folder through the gateway and returns its id
func (h *harness) createFolder(t *testing.T, kind models.Kind, name string) string {
	t.Helper()
	res := h.run(t, CreateFolder{Envelope: Envelope{Kind: kind}, Name: name})
	require.True(t, res.Success, "create folder: %+v", res.Error)
	folder, ok := res.Data.(*models.Folder)
	require.True(t, ok)
	return folder.ID
}

func (h *harness) membersOf(t *testing.T, kind models.Kind, folderID string) []models.RecordID {
	t.Helper()
	ids, err := h.membership.MembersOf(context.Background(), kind, folderID)
	require.NoError(t, err)
	return ids
}

func env(kind models.Kind) Envelope {
	return Envelope{Kind: kind}
}
