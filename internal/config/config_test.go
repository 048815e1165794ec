package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("MODE", "")
	t.Setenv("REQUIREMENTS_KEY", "")
	cfg := FromEnv()
	assert.Equal(t, ModeOffline, cfg.Mode)
	assert.Equal(t, "program.md", cfg.RequirementsKey)
	assert.Equal(t, "Computer Science & Engineering", cfg.DefaultProgram)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSOrigins())
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("MODE", "online")
	t.Setenv("CORS_ORIGINS_ONLINE", " https://a.example , ,https://b.example")
	t.Setenv("ENABLE_LOCAL_AUTH", "no")
	t.Setenv("DB_DRIVER", "postgres")

	cfg := FromEnv()
	assert.Equal(t, ModeOnline, cfg.Mode)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins())
	assert.False(t, cfg.EnableLocalAuth)
	assert.Equal(t, "postgres", cfg.DBDriver)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gradaudit.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
requirements_key: catalog/2026.md
default_program: Business Administration
log_level: debug
aliases:
  eee: Electrical & Electronic Engineering
`), 0o644))
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("REQUIREMENTS_KEY", "")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "catalog/2026.md", cfg.RequirementsKey)
	assert.Equal(t, "Business Administration", cfg.DefaultProgram)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "Electrical & Electronic Engineering", cfg.Aliases["eee"])
	assert.Equal(t, ":8080", cfg.HTTPAddr)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("aliases: [1, 2"), 0o644))
	_, err = Load(bad)
	assert.Error(t, err)

	t.Setenv("MODE", "hybrid")
	_, err = Load("")
	assert.ErrorContains(t, err, "hybrid")
}
