package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store drivers.
const (
	DriverBadger   = "badger"
	DriverPostgres = "postgres"
)

// ErrMissingSecret is returned by RequireSecret when TOKEN_SECRET is unset.
var ErrMissingSecret = errors.New("TOKEN_SECRET is required")

// Config holds all configuration for the application.
type Config struct {
	// Port is the HTTP server port.
	Port int

	// StoreDriver selects the persistence backend, badger or postgres.
	StoreDriver string

	// BadgerPath is the on-disk location of the Badger database.
	BadgerPath string

	// DatabaseURL is the Postgres connection string.
	DatabaseURL string

	// TokenSecret signs and verifies auth tokens.
	TokenSecret string

	// TokenTTL bounds token lifetime. Zero issues tokens without expiry.
	TokenTTL time.Duration

	LogLevel slog.Level

	// BackupDir is where `db backup` writes snapshots.
	BackupDir string
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}

// RequireSecret fails when no token secret is configured.
func (c *Config) RequireSecret() error {
	if c.TokenSecret == "" {
		return ErrMissingSecret
	}
	return nil
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	port := 3000
	if p := os.Getenv("PORT"); p != "" {
		var err error
		port, err = strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT: %w", err)
		}
		if port < 1 || port > 65535 {
			return nil, fmt.Errorf("invalid PORT: %d out of range", port)
		}
	}

	driver := strings.ToLower(os.Getenv("STORE_DRIVER"))
	switch driver {
	case "":
		driver = DriverBadger
	case DriverBadger, DriverPostgres:
	default:
		return nil, fmt.Errorf("invalid STORE_DRIVER: %q", driver)
	}

	badgerPath := os.Getenv("BADGER_PATH")
	if badgerPath == "" {
		badgerPath = "data/badger"
	}

	dbURL := os.Getenv("DATABASE_URL")
	if driver == DriverPostgres && dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required for the postgres store")
	}

	var ttl time.Duration
	if v := os.Getenv("TOKEN_TTL"); v != "" {
		var err error
		ttl, err = time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid TOKEN_TTL: %w", err)
		}
		if ttl < 0 {
			return nil, fmt.Errorf("invalid TOKEN_TTL: %s is negative", v)
		}
	}

	level := slog.LevelInfo
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		if err := level.UnmarshalText([]byte(v)); err != nil {
			return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
		}
	}

	backupDir := os.Getenv("BACKUP_DIR")
	if backupDir == "" {
		backupDir = "data/backups"
	}

	return &Config{
		Port:        port,
		StoreDriver: driver,
		BadgerPath:  badgerPath,
		DatabaseURL: dbURL,
		TokenSecret: os.Getenv("TOKEN_SECRET"),
		TokenTTL:    ttl,
		LogLevel:    level,
		BackupDir:   backupDir,
	}, nil
}
