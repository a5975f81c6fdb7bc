package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_DefaultsWithEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("PORT", "6600")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, 6600, cfg.Web.Port)
	assert.Equal(t, "secret", cfg.Auth.JwtSecret)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Cors.Origins)
	assert.Equal(t, "postgres", cfg.Database.Type)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.TokenTTL)
	// defaults must not be mutated by the override
	assert.Equal(t, []string{"http://localhost:5173"}, DefaultAppConfig.Cors.Origins)
}

func TestLoadConfig_File(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("PORT", "")
	dir := t.TempDir()
	cfile := filepath.Join(dir, "toyorbit.yml")
	content := `
web:
  port: 7700
database:
  type: sqlite
  name: /tmp/toyorbit.db
auth:
  jwt_secret: from-file
  token_ttl: 2h
openai:
  model: test-model
`
	require.NoError(t, os.WriteFile(cfile, []byte(content), 0o600))

	cfg, err := LoadConfig(cfile)
	require.NoError(t, err)
	assert.Equal(t, 7700, cfg.Web.Port)
	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, "from-file", cfg.Auth.JwtSecret)
	assert.Equal(t, 2*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "test-model", cfg.OpenAI.Model)
	// untouched sections keep defaults
	assert.Equal(t, 800, cfg.Report.ChartWidth)
}

func TestLoadConfig_RequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := LoadConfig("")
	require.Error(t, err)
}

func TestLoadConfig_RejectsUnknownDatabase(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("TOYORBIT_DB_TYPE", "oracle")
	_, err := LoadConfig("")
	require.Error(t, err)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yml"))
	require.Error(t, err)
}
