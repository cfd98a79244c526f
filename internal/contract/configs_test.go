package contract

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/seeyebe/gmap/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRootedStore(root string) *MockObjectStore {
	store := &MockObjectStore{}
	store.On("Root").Return(root)
	return store
}

func TestProcessAndValidate(t *testing.T) {
	ctx := context.Background()
	root := filepath.Join(t.TempDir(), "repo")

	tests := []struct {
		name        string
		input       *ConfigRawInput
		expectError bool
		check       func(t *testing.T, cfg *Config)
	}{
		{
			name: "defaults resolve the cache under the repository",
			input: &ConfigRawInput{
				Merges:       true,
				CacheBackend: "sqlite",
				Output:       "text",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, root, cfg.RepoPath)
				assert.True(t, cfg.IncludeMerges)
				assert.False(t, cfg.IncludeBinary)
				assert.Equal(t, schema.SQLiteBackend, cfg.CacheBackend)
				assert.Equal(t, filepath.Join(root, ".gmap", "cache.db"), cfg.CacheDBConnect)
				assert.True(t, cfg.Range.IsUnbounded())
				assert.True(t, cfg.UseColors)
				assert.Equal(t, DefaultWatchInterval, cfg.WatchInterval)
			},
		},
		{
			name: "cache dir override",
			input: &ConfigRawInput{
				CacheBackend: "SQLite",
				CacheDir:     "/tmp/gmap-cache",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, filepath.Join("/tmp/gmap-cache", "cache.db"), cfg.CacheDBConnect)
			},
		},
		{
			name: "explicit range and flags",
			input: &ConfigRawInput{
				Since:        "2024-01-01",
				Until:        "2024-06-30T00:00:00Z",
				Binary:       true,
				CacheBackend: "none",
				Output:       "json",
				Color:        "no",
				Interval:     "30s",
				RevisionStr:  " HEAD~1 ",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "HEAD~1", cfg.Revision)
				assert.Equal(t, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), cfg.Range.Since)
				assert.Equal(t, time.Date(2024, time.June, 30, 0, 0, 0, 0, time.UTC), cfg.Range.Until)
				assert.True(t, cfg.IncludeBinary)
				assert.Equal(t, schema.JSONOut, cfg.Output)
				assert.False(t, cfg.UseColors)
				assert.Equal(t, 30*time.Second, cfg.WatchInterval)
			},
		},
		{
			name:        "since after until",
			input:       &ConfigRawInput{Since: "2024-06-01", Until: "2024-01-01", CacheBackend: "sqlite"},
			expectError: true,
		},
		{
			name:        "invalid backend",
			input:       &ConfigRawInput{CacheBackend: "redis"},
			expectError: true,
		},
		{
			name:        "mysql without dsn",
			input:       &ConfigRawInput{CacheBackend: "mysql"},
			expectError: true,
		},
		{
			name:        "invalid output",
			input:       &ConfigRawInput{CacheBackend: "sqlite", Output: "xml"},
			expectError: true,
		},
		{
			name:        "parquet needs a file",
			input:       &ConfigRawInput{CacheBackend: "sqlite", Output: "parquet"},
			expectError: true,
		},
		{
			name:        "invalid color",
			input:       &ConfigRawInput{CacheBackend: "sqlite", Color: "maybe"},
			expectError: true,
		},
		{
			name:        "interval too short",
			input:       &ConfigRawInput{CacheBackend: "sqlite", Interval: "100ms"},
			expectError: true,
		},
		{
			name:        "negative width",
			input:       &ConfigRawInput{CacheBackend: "sqlite", Width: -1},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			err := ProcessAndValidate(ctx, cfg, newRootedStore(root), tt.input)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestValidateDatabaseConnectionString(t *testing.T) {
	tests := []struct {
		name    string
		backend schema.DatabaseBackend
		connStr string
		wantErr bool
	}{
		{"sqlite empty", schema.SQLiteBackend, "", false},
		{"none empty", schema.NoneBackend, "", false},
		{"mysql valid", schema.MySQLBackend, "user:pass@tcp(localhost:3306)/gmap", false},
		{"mysql missing tcp", schema.MySQLBackend, "user:pass@localhost/gmap", true},
		{"mysql empty", schema.MySQLBackend, "", true},
		{"postgres valid", schema.PostgreSQLBackend, "host=localhost port=5432 user=postgres dbname=gmap", false},
		{"postgres missing dbname", schema.PostgreSQLBackend, "host=localhost", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDatabaseConnectionString(tt.backend, tt.connStr)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestResolveCacheTarget(t *testing.T) {
	backend, target, err := ResolveCacheTarget("sqlite", "", "", "/repo")
	require.NoError(t, err)
	assert.Equal(t, schema.SQLiteBackend, backend)
	assert.Equal(t, filepath.Join("/repo", ".gmap", "cache.db"), target)

	backend, target, err = ResolveCacheTarget("sqlite", "/elsewhere/db.sqlite", "", "/repo")
	require.NoError(t, err)
	assert.Equal(t, schema.SQLiteBackend, backend)
	assert.Equal(t, "/elsewhere/db.sqlite", target)

	backend, target, err = ResolveCacheTarget("postgresql", "host=db dbname=gmap", "", "/repo")
	require.NoError(t, err)
	assert.Equal(t, schema.PostgreSQLBackend, backend)
	assert.Equal(t, "host=db dbname=gmap", target)
}

func TestProcessProfilingConfig(t *testing.T) {
	profile := &ProfileConfig{}
	ProcessProfilingConfig(profile, "")
	assert.False(t, profile.Enabled)

	ProcessProfilingConfig(profile, "run")
	assert.True(t, profile.Enabled)
	assert.Equal(t, "run", profile.Prefix)
}
