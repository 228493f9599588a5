package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"horoscope-api/database"
)

// Backends
const (
	BackendCSV = "csv"
	BackendDB  = "db"
)

// Config holds application configuration
type Config struct {
	Port    int
	Backend string

	// CSV backend
	DataDir string

	// Database backend
	Database database.Config

	// Redis response cache for the database backend
	Redis RedisConfig

	LogLevel        string
	ShutdownTimeout time.Duration
}

// RedisConfig holds Redis configuration. An empty Host disables caching.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	TTL      time.Duration
}

// Enabled reports whether a Redis host is configured.
func (r RedisConfig) Enabled() bool {
	return r.Host != ""
}

// SetDefaults registers every key with its default value. Keys map onto
// environment variables by upper-casing and replacing '-' with '_'.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("port", 5000)
	v.SetDefault("backend", BackendCSV)
	v.SetDefault("data-dir", "./data")

	v.SetDefault("db-driver", database.DriverSQLite)
	v.SetDefault("db-path", "./data/horoscope.db")
	v.SetDefault("db-host", "localhost")
	v.SetDefault("db-port", 0) // 0 picks the driver default, see defaultDBPort
	v.SetDefault("db-name", "horoscope")
	v.SetDefault("db-user", "horoscope")
	v.SetDefault("db-password", "")
	v.SetDefault("db-dsn", "")

	v.SetDefault("redis-host", "")
	v.SetDefault("redis-port", "6379")
	v.SetDefault("redis-password", "")
	v.SetDefault("redis-ttl", 5*time.Minute)

	v.SetDefault("log-level", "info")
	v.SetDefault("shutdown-timeout", 10*time.Second)
}

// LoadFromEnv loads configuration from environment variables, after merging
// any .env files (default ".env") into the environment. v may already carry
// bound command-line flags, which take precedence over the environment.
func LoadFromEnv(v *viper.Viper, envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	if v == nil {
		v = viper.New()
	}
	SetDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		Port:    v.GetInt("port"),
		Backend: strings.ToLower(v.GetString("backend")),
		DataDir: v.GetString("data-dir"),

		Database: database.Config{
			Driver:   strings.ToLower(v.GetString("db-driver")),
			Path:     v.GetString("db-path"),
			Host:     v.GetString("db-host"),
			Port:     v.GetInt("db-port"),
			Name:     v.GetString("db-name"),
			User:     v.GetString("db-user"),
			Password: v.GetString("db-password"),
			DSN:      v.GetString("db-dsn"),
		},

		Redis: RedisConfig{
			Host:     v.GetString("redis-host"),
			Port:     v.GetString("redis-port"),
			Password: v.GetString("redis-password"),
			TTL:      v.GetDuration("redis-ttl"),
		},

		LogLevel:        v.GetString("log-level"),
		ShutdownTimeout: v.GetDuration("shutdown-timeout"),
	}

	if cfg.Database.Port == 0 {
		cfg.Database.Port = defaultDBPort(cfg.Database.Driver)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// defaultDBPort returns the server port for driver when DB_PORT is unset.
func defaultDBPort(driver string) int {
	if driver == database.DriverMySQL {
		return 3306
	}
	return 5432
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}

	switch c.Backend {
	case BackendCSV:
		if c.DataDir == "" {
			return errors.New("data directory is required for the csv backend")
		}
	case BackendDB:
		if err := c.Database.Validate(); err != nil {
			return fmt.Errorf("database config: %w", err)
		}
	default:
		return fmt.Errorf("unknown backend %q (want %s or %s)", c.Backend, BackendCSV, BackendDB)
	}

	if c.Redis.Enabled() && c.Redis.TTL <= 0 {
		return fmt.Errorf("redis TTL must be positive, got %s", c.Redis.TTL)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown timeout must be positive, got %s", c.ShutdownTimeout)
	}
	return nil
}
