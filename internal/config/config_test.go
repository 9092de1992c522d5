package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "smartdex.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(flags(t))
	require.NoError(t, err)

	assert.Equal(t, "smartdex.db", cfg.DB.Path)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 20, cfg.Study.Limit)
	assert.Equal(t, 10, cfg.Quiz.Count)
	assert.Equal(t, "multiple-choice", cfg.Quiz.Mode)
	assert.Equal(t, "repos", cfg.Sources.ReposDir)
}

func TestLoadLayering(t *testing.T) {
	path := writeConfig(t, `
db:
  path: from-file.db
log:
  level: debug
study:
  limit: 5
quiz:
  count: 3
server:
  shutdown_timeout: 30s
`)

	t.Run("file over defaults", func(t *testing.T) {
		cfg, err := Load(flags(t, "--config", path))
		require.NoError(t, err)
		assert.Equal(t, "from-file.db", cfg.DB.Path)
		assert.Equal(t, "debug", cfg.Log.Level)
		assert.Equal(t, 5, cfg.Study.Limit)
		assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
		assert.Equal(t, "text", cfg.Log.Format)
	})

	t.Run("env over file", func(t *testing.T) {
		t.Setenv("SMARTDEX_DB_PATH", "from-env.db")
		t.Setenv("SMARTDEX_STUDY_LIMIT", "7")
		t.Setenv("SMARTDEX_SOURCES_REPOS_DIR", "/var/lib/smartdex/repos")
		cfg, err := Load(flags(t, "--config", path))
		require.NoError(t, err)
		assert.Equal(t, "from-env.db", cfg.DB.Path)
		assert.Equal(t, 7, cfg.Study.Limit)
		assert.Equal(t, "/var/lib/smartdex/repos", cfg.Sources.ReposDir)
		assert.Equal(t, 3, cfg.Quiz.Count)
	})

	t.Run("flags over env", func(t *testing.T) {
		t.Setenv("SMARTDEX_DB_PATH", "from-env.db")
		cfg, err := Load(flags(t, "--config", path, "--db", "from-flag.db", "--count", "4"))
		require.NoError(t, err)
		assert.Equal(t, "from-flag.db", cfg.DB.Path)
		assert.Equal(t, 4, cfg.Quiz.Count)
	})
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"log level", []string{"--log-level", "loud"}},
		{"quiz mode", []string{"--mode", "essay"}},
		{"study limit", []string{"--limit", "0"}},
		{"empty db", []string{"--db", ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(flags(t, tt.args...))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid config")
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(flags(t, "--config", filepath.Join(t.TempDir(), "nope.yaml")))
	assert.Error(t, err)
}

func TestLoadRequiresConfigFlag(t *testing.T) {
	_, err := Load(pflag.NewFlagSet("bare", pflag.ContinueOnError))
	assert.Error(t, err)
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "db.path", envKey("SMARTDEX_DB_PATH"))
	assert.Equal(t, "server.shutdown_timeout", envKey("SMARTDEX_SERVER_SHUTDOWN_TIMEOUT"))
}
