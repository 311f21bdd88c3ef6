package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets every key Load reads for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"ENV_FILE", "PORT", "STORE_TYPE", "DB_TYPE", "DB_HOST", "DB_PORT", "DB_DATABASE",
		"DB_USER", "DB_PASSWORD", "DB_CONNECTION_LIMIT", "PLATFORM_URL_TEMPLATE",
		"PLATFORM_ACCESS_TOKEN", "PLATFORM_TIMEOUT_MS", "PLATFORM_RPS",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "3001", cfg.Port)
	assert.Equal(t, StoreDatabase, cfg.StoreType)
	assert.Equal(t, "sqlite", cfg.DBType)
	assert.True(t, cfg.IsSQLite())
	assert.Equal(t, "transform-studio.db", cfg.DBDatabase)
	assert.Equal(t, 10*time.Second, cfg.PlatformTimeout)
	assert.Equal(t, 5.0, cfg.PlatformRPS)
	assert.Equal(t, "https://acme.api.identitynow.com", cfg.PlatformBaseURL("acme"))
}

func TestLoadEnvFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("PLATFORM_RPS=2.5\nSTORE_TYPE=memory\nDB_TYPE=mysql\n"), 0o600))
	t.Setenv("ENV_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 2.5, cfg.PlatformRPS)
	assert.Equal(t, StoreMemory, cfg.StoreType)
	assert.Equal(t, "mysql", cfg.DBType)
}

func TestLoadMissingEnvFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "absent.env"))

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := Config{StoreType: StoreDatabase, DBType: "sqlite", PlatformURLTemplate: "https://%s.example", PlatformRPS: 1}
	require.NoError(t, base.Validate())

	mysql := base
	mysql.DBType = "mysql"
	assert.ErrorContains(t, mysql.Validate(), "DB_USER")

	mysql.StoreType = StoreMemory
	assert.NoError(t, mysql.Validate())

	bad := base
	bad.PlatformURLTemplate = "https://fixed.example"
	assert.ErrorContains(t, bad.Validate(), "PLATFORM_URL_TEMPLATE")

	bad = base
	bad.StoreType = "redis"
	assert.ErrorContains(t, bad.Validate(), "STORE_TYPE")
}
