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
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTP.Port)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "data/app.db", cfg.Database.Path)
	assert.Equal(t, "gemini-1.5-flash", cfg.Assistant.Model)
	assert.Equal(t, "wastewise/bins", cfg.MQTT.TopicPrefix)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadFileWithEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	path := filepath.Join(dir, "config.yaml")
	body := `
http:
  port: "9090"
  shutdown_timeout: 3s
database:
  driver: memory
assistant:
  model: gemini-test
seed:
  on_start: true
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	t.Setenv("WW_ASSISTANT__MODEL", "gemini-override")
	t.Setenv("GEMINI_API_KEY", "secret")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.HTTP.Port)
	assert.Equal(t, 3*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.Equal(t, DriverMemory, cfg.Database.Driver)
	assert.Equal(t, "gemini-override", cfg.Assistant.Model)
	assert.Equal(t, "secret", cfg.Assistant.APIKey)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Redis.URL)
	assert.True(t, cfg.Seed.OnStart)
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	t.Chdir(t.TempDir())

	t.Run("postgres without url", func(t *testing.T) {
		t.Setenv("DB_DRIVER", "postgres")
		_, err := Load("")
		require.Error(t, err)
	})

	t.Run("unknown driver", func(t *testing.T) {
		t.Setenv("DB_DRIVER", "cassandra")
		_, err := Load("")
		require.Error(t, err)
	})

	t.Run("unsupported file format", func(t *testing.T) {
		_, err := Load("config.toml")
		require.Error(t, err)
	})
}
