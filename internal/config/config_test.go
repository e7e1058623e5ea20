package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "0 3 1 * *", cfg.Scheduler.ArchiveCron)
	assert.Equal(t, 5*time.Minute, cfg.Analytics.CacheTTL)
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"server": {"port": 9090},
		"database": {"host": "db", "db_name": "ledger"},
		"storage": {"bucket": "archives"}
	}`), 0o600))

	t.Setenv("DATABASE_PASSWORD", "secret")
	t.Setenv("SII_API_TOKEN", "token-123")
	t.Setenv("ANALYTICS_CACHE_TTL", "90s")
	t.Setenv("ARCHIVE_ENABLED", "false")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "db", cfg.Database.Host)
	assert.Equal(t, "archives", cfg.Storage.Bucket)
	assert.Equal(t, "token-123", cfg.SII.Token)
	assert.Equal(t, 90*time.Second, cfg.Analytics.CacheTTL)
	assert.False(t, cfg.Scheduler.Enabled)
	assert.Equal(t, "postgres://"+cfg.Database.User+":secret@db:5432/ledger?sslmode=disable", cfg.Database.GetDatabaseURL())
}

func TestLoadConfig_InvalidEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", "not-a-port")

	_, err := LoadConfig("")
	assert.Error(t, err)
}

func TestLoadConfig_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0o600))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(LoggingConfig{Level: "debug", Development: true})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))

	logger, err = NewLogger(LoggingConfig{Level: "warn"})
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))

	_, err = NewLogger(LoggingConfig{Level: "verbose"})
	assert.Error(t, err)
}

func TestLoadConfig_AllowedOrigins(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.kontax.cl, ,https://admin.kontax.cl")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://app.kontax.cl", "https://admin.kontax.cl"}, cfg.Server.AllowedOrigins)
}
