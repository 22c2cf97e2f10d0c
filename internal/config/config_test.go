package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFileAndDefaults(t *testing.T) {
	path := writeConfig(t, `
database:
  driver: sqlite
  dsn: "file::memory:"
lock:
  backend: local
jwt:
  access_secret: a
  refresh_secret: r
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "local", cfg.Lock.Backend)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 3*time.Second, cfg.Lock.TTL)
	assert.Equal(t, 30*time.Minute, cfg.JWT.AccessTTL)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 5*time.Second, cfg.Redis.DialTimeout)
	assert.Equal(t, 10, cfg.Redis.PoolSize)
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeConfig(t, `
database:
  driver: sqlite
  dsn: "file::memory:"
jwt:
  access_secret: a
  refresh_secret: r
`)
	t.Setenv("BOARD_LOG_LEVEL", "debug")
	t.Setenv("BOARD_LOCK_WAIT", "500ms")
	t.Setenv("BOARD_REDIS_ADDR", "10.0.0.1:6379")
	t.Setenv("BOARD_REDIS_POOL_SIZE", "32")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 500*time.Millisecond, cfg.Lock.Wait)
	assert.Equal(t, "10.0.0.1:6379", cfg.Redis.Addr)
	assert.Equal(t, 32, cfg.Redis.PoolSize)
}

func TestValidate(t *testing.T) {
	path := writeConfig(t, `
database:
  driver: postgres
lock:
  backend: zookeeper
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database.driver")
	assert.Contains(t, err.Error(), "lock.backend")
	assert.Contains(t, err.Error(), "jwt.access_secret")
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
