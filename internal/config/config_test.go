package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, k := range []string{"ENVIRONMENT", "HOST", "PORT", "DATABASE_DRIVER", "DATABASE_URL", "JWT_SECRET", "JWT_EXPIRES_IN", "CORS_ORIGINS", "API_ROOT", "DB_PING_INTERVAL", "ENV_FILE"} {
		t.Setenv(k, "")
	}

	cfg, err := LoadConfig(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "0.0.0.0:3000", cfg.Addr())
	assert.Equal(t, "/", cfg.APIRoot)
	assert.Equal(t, Database{Driver: "postgres", URL: DefaultDatabaseURL}, cfg.Database)
	assert.Equal(t, DefaultJWTSecret, cfg.JWTSecret)
	assert.Equal(t, time.Hour, cfg.TokenExpiry)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, 10*time.Second, cfg.DBPingInterval)
	assert.Equal(t, []string{"DATABASE_URL", "JWT_SECRET"}, cfg.Missing)
}

func TestLoadConfig_Environment(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("API_ROOT", "api/v1")
	t.Setenv("DATABASE_DRIVER", "SQLite")
	t.Setenv("DATABASE_URL", "file:triage.db")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("JWT_EXPIRES_IN", "15m")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example,")

	cfg, err := LoadConfig(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ListenPort)
	assert.Equal(t, "/api/v1", cfg.APIRoot)
	assert.Equal(t, Database{Driver: "sqlite", URL: "file:triage.db"}, cfg.Database)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, 15*time.Minute, cfg.TokenExpiry)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Empty(t, cfg.Missing)
}

func TestLoadConfig_EnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "triage.env")
	require.NoError(t, os.WriteFile(path, []byte("JWT_SECRET=from-file\nLOG_LEVEL=debug\n"), 0o600))
	t.Setenv("ENV_FILE", path)
	t.Setenv("JWT_SECRET", "")
	t.Setenv("LOG_LEVEL", "")

	cfg, err := LoadConfig(viper.New())
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.JWTSecret)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Run("explicit env file missing", func(t *testing.T) {
		t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "nope.env"))
		_, err := LoadConfig(viper.New())
		assert.Error(t, err)
	})

	t.Run("non-positive expiry", func(t *testing.T) {
		t.Setenv("JWT_EXPIRES_IN", "0s")
		_, err := LoadConfig(viper.New())
		assert.EqualError(t, err, "JWT_EXPIRES_IN must be a positive duration")
	})
}
