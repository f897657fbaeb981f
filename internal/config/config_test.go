package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	tests := []struct {
		env        string
		wantDriver string
		wantPrefix string
		wantDebug  bool
	}{
		{"dev", "sqlite", "dev_", true},
		{"test", "sqlite", "test_", true},
		{"prod", "postgres", "prod_", false},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			t.Setenv("ENVIRONMENT", tt.env)
			t.Setenv("DB_DRIVER", "")
			t.Setenv("TABLE_PREFIX", "")
			t.Setenv("DEBUG", "")
			t.Setenv("ACTION_TOKEN_TTL", "")

			cfg := Load()
			assert.Equal(t, tt.wantDriver, cfg.DBDriver)
			assert.Equal(t, tt.wantPrefix, cfg.TablePrefix)
			assert.Equal(t, tt.wantDebug, cfg.Debug)
			assert.Equal(t, 12*time.Hour, cfg.ActionTokenTTL)
			assert.Equal(t, "8080", cfg.Port)
		})
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ENVIRONMENT", "prod")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("TABLE_PREFIX", "wp_")
	t.Setenv("ACTION_TOKEN_TTL", "30m")
	t.Setenv("LOG_MAX_FILES", "3")

	cfg := Load()
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "wp_", cfg.TablePrefix)
	assert.Equal(t, 30*time.Minute, cfg.ActionTokenTTL)
	assert.Equal(t, 3, cfg.LogMaxFiles)

	// unparsable values fall back to the defaults
	t.Setenv("ACTION_TOKEN_TTL", "soon")
	t.Setenv("LOG_MAX_FILES", "many")
	cfg = Load()
	assert.Equal(t, 12*time.Hour, cfg.ActionTokenTTL)
	assert.Equal(t, 10, cfg.LogMaxFiles)
}

func TestSetupLogFilePrunes(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"binder-2020-01-01T00-00-00.log", "binder-2020-01-02T00-00-00.log", "other.log"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}

	f, err := SetupLogFile(dir, 2)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	logs, err := filepath.Glob(filepath.Join(dir, "binder-*.log"))
	require.NoError(t, err)
	assert.Len(t, logs, 2)
	assert.NotContains(t, logs, filepath.Join(dir, "binder-2020-01-01T00-00-00.log"))
	assert.FileExists(t, filepath.Join(dir, "other.log"))
}

func TestNewLoggerWithoutDir(t *testing.T) {
	logger, closer, err := NewLogger(&Config{Environment: "prod"})
	require.NoError(t, err)
	assert.NotNil(t, logger)
	assert.NoError(t, closer.Close())
}
