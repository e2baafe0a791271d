package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(New(), "")
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, BackendFile, cfg.Store.Backend)
	assert.Equal(t, 30*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, 8, cfg.HTTP.MaxConcurrent)
	assert.Equal(t, "file", cfg.Actions.Source)
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "procflow.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
store:
  backend: redis
  ttl: 30m
redis:
  addr: cache:6379
http:
  max_concurrent: 2
`), 0o644))
	t.Setenv("PROCFLOW_REDIS_ADDR", "override:6380")

	cfg, err := Load(New(), path)
	require.NoError(t, err)
	assert.Equal(t, BackendRedis, cfg.Store.Backend)
	assert.Equal(t, 30*time.Minute, cfg.Store.TTL)
	assert.Equal(t, "override:6380", cfg.Redis.Addr)
	assert.Equal(t, 2, cfg.HTTP.MaxConcurrent)
}

func TestLoad_ExplicitFileMissing(t *testing.T) {
	_, err := Load(New(), filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() Config {
		v := New()
		var cfg Config
		require.NoError(t, v.Unmarshal(&cfg))
		return cfg
	}

	cfg := base()
	cfg.Store.Backend = "etcd"
	assert.ErrorContains(t, cfg.Validate(), "store.backend")

	cfg = base()
	cfg.Actions.Source = "mongo"
	assert.ErrorContains(t, cfg.Validate(), "actions.source")

	cfg = base()
	cfg.HTTP.MaxConcurrent = 0
	assert.ErrorContains(t, cfg.Validate(), "max_concurrent")

	cfg = base()
	cfg.Store.EncryptionKey = "short"
	assert.ErrorContains(t, cfg.Validate(), "encryption_key")
}

func TestStoreConfig_Key(t *testing.T) {
	hexKey := strings.Repeat("ab", 32)
	key, err := StoreConfig{EncryptionKey: hexKey}.Key()
	require.NoError(t, err)
	assert.Len(t, key, 32)

	key, err = StoreConfig{EncryptionKey: "MDEyMzQ1Njc4OTAxMjM0NTY3ODkwMTIzNDU2Nzg5MDE="}.Key()
	require.NoError(t, err)
	assert.Equal(t, []byte("01234567890123456789012345678901"), key)

	key, err = StoreConfig{}.Key()
	require.NoError(t, err)
	assert.Nil(t, key)
}
