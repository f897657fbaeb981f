package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"binder/internal/config"
	"binder/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Environment:       "test",
		DBDriver:          "sqlite",
		SQLitePath:        filepath.Join(t.TempDir(), "cli.db"),
		TablePrefix:       "test_",
		AuthHMACSecret:    "cli-secret",
		ActionTokenSecret: "cli-action-secret",
		ActionTokenTTL:    time.Minute,
	}
}

func testOpener(cfg *config.Config) Opener {
	return AppOpener(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// run executes binderctl with args and returns stdout and stderr
func run(t *testing.T, cfg *config.Config, args ...string) (string, string, error) {
	t.Helper()
	root := NewRootCmd(testOpener(cfg), cfg)
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func seedRecords(t *testing.T, cfg *config.Config, kind models.Kind, ids ...models.RecordID) {
	t.Helper()
	a, err := testOpener(cfg)(context.Background())
	require.NoError(t, err)
	defer a.Close()
	for _, id := range ids {
		require.NoError(t, a.Store.Records.Create(context.Background(), &models.Record{
			ID: id, Kind: kind, Title: "Record", Status: models.RecordStatusActive,
		}))
	}
}

func TestFolderLifecycle(t *testing.T) {
	cfg := testConfig(t)
	seedRecords(t, cfg, models.KindView, 7, 8)

	out, _, err := run(t, cfg, "folders", "create", "--kind=view", "--name=Public", "--quiet")
	require.NoError(t, err)
	folderID := strings.TrimSpace(out)
	require.NotEmpty(t, folderID)

	_, _, err = run(t, cfg, "folders", "assign", "--kind=view", "--id="+folderID, "--records=8,7")
	require.NoError(t, err)

	out, _, err = run(t, cfg, "folders", "list", "--kind=view", "--json")
	require.NoError(t, err)
	var listed struct {
		Success bool                   `json:"success"`
		Data    []models.FolderSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &listed))
	require.Len(t, listed.Data, 1)
	assert.Equal(t, 2, listed.Data[0].RecordCount)

	out, _, err = run(t, cfg, "folders", "contents", "--kind=view", "--id="+folderID, "--quiet")
	require.NoError(t, err)
	assert.Equal(t, "7\n8\n", out)

	_, stderr, err := run(t, cfg, "folders", "delete", "--kind=view", "--id="+folderID)
	require.Error(t, err)
	assert.Equal(t, ExitConflict, ExitCode(err))
	assert.Contains(t, stderr, "Error")

	out, _, err = run(t, cfg, "folders", "rename", "--kind=view", "--id="+folderID, "--name=Renamed")
	require.NoError(t, err)
	assert.Contains(t, out, "Folder renamed")

	_, _, err = run(t, cfg, "purge", "--kind=view")
	assert.Equal(t, ExitUsage, ExitCode(err))

	_, _, err = run(t, cfg, "purge", "--kind=view", "--force")
	require.NoError(t, err)

	out, _, err = run(t, cfg, "folders", "list", "--kind=view")
	require.NoError(t, err)
	assert.Contains(t, out, "No folders found")
}

func TestCommandErrors(t *testing.T) {
	cfg := testConfig(t)

	tests := []struct {
		name     string
		args     []string
		wantCode int
	}{
		{"unknown kind", []string{"folders", "list", "--kind=page"}, ExitUsage},
		{"blank name", []string{"folders", "create", "--kind=form", "--name= "}, ExitValidation},
		{"missing folder", []string{"folders", "contents", "--kind=form", "--id=5d3b1f7e-8a7c-4f0e-9c55-0d8e1a2b3c4d"}, ExitNotFound},
		{"bad folder id", []string{"folders", "delete", "--kind=form", "--id=nope"}, ExitValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := run(t, cfg, tt.args...)
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, ExitCode(err))
		})
	}
}

func TestMigrateAndPolicy(t *testing.T) {
	cfg := testConfig(t)

	out, _, err := run(t, cfg, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "sqlite")

	out, _, err = run(t, cfg, "policy", "--quiet")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "create_folder\n"))

	out, _, err = run(t, cfg, "policy")
	require.NoError(t, err)
	assert.Contains(t, out, "form=gform_full_access view=edit_gravityviews")
}

func TestToken(t *testing.T) {
	cfg := testConfig(t)

	out, _, err := run(t, cfg, "token", "--user=admin-7", "--capability=gform_full_access", "--quiet")
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(out), "."), 3)

	cfg.AuthHMACSecret = ""
	_, _, err = run(t, cfg, "token")
	assert.Equal(t, ExitUsage, ExitCode(err))
}

func TestExitCodeDefaults(t *testing.T) {
	assert.Equal(t, ExitSuccess, ExitCode(nil))
	assert.Equal(t, ExitError, ExitCode(io.EOF))

	wrapped := fmt.Errorf("run: %w", &CommandError{Code: ExitNotFound, Err: io.EOF})
	assert.Equal(t, ExitNotFound, ExitCode(wrapped))
	assert.ErrorIs(t, wrapped, io.EOF)
}
