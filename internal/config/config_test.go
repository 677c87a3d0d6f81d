package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"DB_DRIVER", "POSTGRES_HOST", "POSTGRES_PORT", "POSTGRES_DB",
		"POSTGRES_USER", "POSTGRES_PASSWORD", "POSTGRES_CONNECTION_TIMEOUT",
		"OPENAI_API_KEY", "SUPABASE_URL", "SUPABASE_API_KEY",
	} {
		t.Setenv(name, "")
	}
}

func TestLoadNamesAllMissingVariables(t *testing.T) {
	clearEnv(t)

	_, err := Load(BackendSupabase)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required environment variables")
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")
	assert.Contains(t, err.Error(), "SUPABASE_URL")
	assert.Contains(t, err.Error(), "SUPABASE_API_KEY")
}

func TestLoadPostgresDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load(BackendPostgres)
	require.NoError(t, err)

	assert.Equal(t, DriverPostgres, cfg.Driver)
	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, "5432", cfg.Port)
	assert.Equal(t, "postgres", cfg.Database)
	assert.Equal(t, "postgres", cfg.User)
	assert.Equal(t, 600*time.Second, cfg.IdleTimeout)
}

func TestLoadReadsEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("POSTGRES_HOST", "db.internal")
	t.Setenv("POSTGRES_PORT", "5433")
	t.Setenv("POSTGRES_DB", "hr")
	t.Setenv("POSTGRES_USER", "reader")
	t.Setenv("POSTGRES_PASSWORD", "secret")
	t.Setenv("POSTGRES_CONNECTION_TIMEOUT", "30")

	cfg, err := Load(BackendPostgres)
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.IdleTimeout)
	assert.Equal(t, "host=db.internal port=5433 dbname=hr user=reader password=secret sslmode=disable", cfg.DSN())
}

func TestLoadRejectsInvalidTimeout(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("POSTGRES_CONNECTION_TIMEOUT", "soon")

	_, err := Load(BackendPostgres)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "POSTGRES_CONNECTION_TIMEOUT")
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("DB_DRIVER", "oracle")

	_, err := Load(BackendPostgres)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_DRIVER")
}

func TestDSNPerDriver(t *testing.T) {
	cfg := &Config{
		Driver:   DriverMySQL,
		Host:     "db",
		Port:     "3306",
		Database: "hr",
		User:     "u",
		Password: "p",
	}
	assert.Equal(t, "u:p@tcp(db:3306)/hr", cfg.DSN())

	cfg.Driver = DriverSQLite
	cfg.Database = "/tmp/agent.db"
	assert.Equal(t, "/tmp/agent.db", cfg.DSN())
}
