package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Durable backends for account identities.
const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// DefaultSlideDuration is the countdown for slides that do not set one.
const DefaultSlideDuration = 30 * time.Second

// Config holds all runtime configuration.
type Config struct {
	// DataDir holds the device-local store, the default SQLite file and logs.
	DataDir string

	// Backend selects the durable store for account identities.
	// Values: "sqlite", "postgres", "redis".
	Backend string

	// DSN is the database connection string for sqlite/postgres.
	// Default: <DataDir>/lessonflow.db.
	DSN string

	// RedisAddr is the redis endpoint when Backend is "redis".
	RedisAddr string

	// LearnerID is the account identity. Empty means guest mode.
	LearnerID string

	// LessonsPath points at a YAML lesson catalog. Empty uses the embedded one.
	LessonsPath string

	LogMode string
	LogFile string

	SlideDuration time.Duration
}

// DefaultConfig returns a Config with the XDG data directory resolved.
func DefaultConfig() (Config, error) {
	dir, err := DefaultDataDir()
	if err != nil {
		return Config{}, err
	}
	return Config{
		DataDir:       dir,
		Backend:       BackendSQLite,
		RedisAddr:     "localhost:6379",
		LogMode:       "dev",
		SlideDuration: DefaultSlideDuration,
	}, nil
}

// Load reads an optional .env file and then LESSONFLOW_* environment
// variables on top of the defaults.
func Load(envFile string) (Config, error) {
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load %s: %w", envFile, err)
	}

	cfg, err := DefaultConfig()
	if err != nil {
		return Config{}, err
	}
	return FromEnv(cfg), nil
}

// FromEnv overrides fields of cfg from LESSONFLOW_* environment variables.
func FromEnv(cfg Config) Config {
	if v := os.Getenv("LESSONFLOW_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("LESSONFLOW_BACKEND"); v != "" {
		cfg.Backend = v
	}
	if v := os.Getenv("LESSONFLOW_DSN"); v != "" {
		cfg.DSN = v
	}
	if v := os.Getenv("LESSONFLOW_REDIS_ADDR"); v != "" {
		cfg.RedisAddr = v
	}
	if v := os.Getenv("LESSONFLOW_LEARNER"); v != "" {
		cfg.LearnerID = v
	}
	if v := os.Getenv("LESSONFLOW_LESSONS"); v != "" {
		cfg.LessonsPath = v
	}
	if v := os.Getenv("LESSONFLOW_LOG_MODE"); v != "" {
		cfg.LogMode = v
	}
	if v := os.Getenv("LESSONFLOW_LOG_FILE"); v != "" {
		cfg.LogFile = v
	}
	if v := os.Getenv("LESSONFLOW_SLIDE_SECONDS"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			cfg.SlideDuration = time.Duration(secs) * time.Second
		}
	}
	return cfg
}

// Resolve fills in values derived from DataDir.
func (c *Config) Resolve() {
	if c.DSN == "" && c.Backend == BackendSQLite {
		c.DSN = filepath.Join(c.DataDir, "lessonflow.db")
	}
	if c.LogFile == "" {
		c.LogFile = filepath.Join(c.DataDir, "lessonflow.log")
	}
}

// Validate checks the configuration is usable.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendSQLite, BackendRedis:
	case BackendPostgres:
		if c.DSN == "" {
			return fmt.Errorf("LESSONFLOW_DSN is required for the postgres backend")
		}
	default:
		return fmt.Errorf("unknown backend: %q", c.Backend)
	}
	if c.Backend == BackendRedis && c.RedisAddr == "" {
		return fmt.Errorf("LESSONFLOW_REDIS_ADDR is required for the redis backend")
	}
	if c.SlideDuration <= 0 {
		return fmt.Errorf("slide duration must be positive, got %s", c.SlideDuration)
	}
	if c.DataDir == "" {
		return fmt.Errorf("data dir is not set")
	}
	return nil
}

// IsGuest reports whether no account identity is configured.
func (c Config) IsGuest() bool {
	return c.LearnerID == ""
}

// DefaultDataDir resolves the data directory in priority order:
// 1. $XDG_DATA_HOME/lessonflow
// 2. ~/.local/share/lessonflow
func DefaultDataDir() (string, error) {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "lessonflow"), nil
}

// EnsureDir creates dir if it doesn't exist.
func EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0o755)
}
