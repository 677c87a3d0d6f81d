package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Supported database drivers.
const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
)

// Backends select which tool surface the server exposes.
const (
	BackendPostgres = "postgres"
	BackendSupabase = "supabase"
)

// Config is sourced from the environment once at startup and immutable
// afterwards.
type Config struct {
	Driver   string
	Host     string
	Port     string
	Database string
	User     string
	Password string

	// IdleTimeout is how long the connection may sit unused before the
	// monitor closes it.
	IdleTimeout time.Duration

	OpenAIAPIKey string

	SupabaseURL    string
	SupabaseAPIKey string
}

// Load reads configuration from the environment, loading a .env file first
// when one is present. Required variables depend on the backend; every
// missing one is reported in a single error so the operator can fix them
// all at once.
func Load(backend string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Driver:         getenvDefault("DB_DRIVER", DriverPostgres),
		Host:           getenvDefault("POSTGRES_HOST", "localhost"),
		Port:           getenvDefault("POSTGRES_PORT", "5432"),
		Database:       getenvDefault("POSTGRES_DB", "postgres"),
		User:           getenvDefault("POSTGRES_USER", "postgres"),
		Password:       getenvDefault("POSTGRES_PASSWORD", "postgres"),
		OpenAIAPIKey:   os.Getenv("OPENAI_API_KEY"),
		SupabaseURL:    os.Getenv("SUPABASE_URL"),
		SupabaseAPIKey: os.Getenv("SUPABASE_API_KEY"),
	}

	switch cfg.Driver {
	case DriverPostgres, DriverMySQL, DriverSQLite:
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q (postgres, mysql, sqlite)", cfg.Driver)
	}

	timeout := getenvDefault("POSTGRES_CONNECTION_TIMEOUT", "600")
	seconds, err := strconv.Atoi(timeout)
	if err != nil || seconds <= 0 {
		return nil, fmt.Errorf("invalid POSTGRES_CONNECTION_TIMEOUT %q: must be a positive number of seconds", timeout)
	}
	cfg.IdleTimeout = time.Duration(seconds) * time.Second

	var missing []string
	require := func(name, value string) {
		if value == "" {
			missing = append(missing, name)
		}
	}

	require("OPENAI_API_KEY", cfg.OpenAIAPIKey)
	if backend == BackendSupabase {
		require("SUPABASE_URL", cfg.SupabaseURL)
		require("SUPABASE_API_KEY", cfg.SupabaseAPIKey)
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	return cfg, nil
}

// DSN returns the driver-specific connection string. For sqlite,
// POSTGRES_DB holds the database file path.
func (c *Config) DSN() string {
	switch c.Driver {
	case DriverMySQL:
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s", c.User, c.Password, c.Host, c.Port, c.Database)
	case DriverSQLite:
		return c.Database
	default:
		return fmt.Sprintf("host=%s port=%s dbname=%s user=%s password=%s sslmode=disable",
			c.Host, c.Port, c.Database, c.User, c.Password)
	}
}

func getenvDefault(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
