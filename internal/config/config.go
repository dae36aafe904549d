// Package config reads process configuration from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/julianstephens/missionctl/internal/constants"
	"github.com/julianstephens/missionctl/internal/logger"
	"github.com/julianstephens/missionctl/internal/utils"
)

// Config is the environment-level configuration. CLI flags override it.
type Config struct {
	// DB is a SQLite path, a *.json path or a postgres:// URL
	DB           string        `env:"MISSIONCTL_DB"             envDefault:"~/.config/missionctl/missionctl.db"`
	DBConnection string        `env:"MISSIONCTL_DB_CONNECTION"`
	Debug        bool          `env:"MISSIONCTL_DEBUG"`
	Timezone     string        `env:"MISSIONCTL_TIMEZONE"       envDefault:"Local"`
	ListenAddr   string        `env:"MISSIONCTL_LISTEN_ADDR"    envDefault:"127.0.0.1:8787"`
	RateLimit    float64       `env:"MISSIONCTL_RATE_LIMIT"     envDefault:"10"`
	RateBurst    int           `env:"MISSIONCTL_RATE_BURST"     envDefault:"30"`
	PollInterval time.Duration `env:"MISSIONCTL_POLL_INTERVAL"  envDefault:"1s"`
	NotifyWindow time.Duration `env:"MISSIONCTL_NOTIFY_WINDOW"  envDefault:"1m"`
	Notify       bool          `env:"MISSIONCTL_NOTIFICATIONS"  envDefault:"true"`
}

// Load reads envFile (or ./.env when empty) into the process environment and
// parses Config. A missing default .env is not an error; a missing explicit
// file is.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return Config{}, fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	} else if err := godotenv.Load(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to load .env: %w", err)
		}
		logger.Debug("No .env file found")
	}

	return ParseEnv()
}

// ParseEnv parses Config from the current environment only
func ParseEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values no command can run with
func (c Config) Validate() error {
	if strings.TrimSpace(c.DB) == "" {
		return errors.New("MISSIONCTL_DB must not be empty")
	}
	if !utils.ValidateTimezone(c.Timezone) {
		return fmt.Errorf("MISSIONCTL_TIMEZONE %q is not a valid IANA timezone", c.Timezone)
	}
	if c.RateLimit <= 0 {
		return fmt.Errorf("MISSIONCTL_RATE_LIMIT must be positive, got %v", c.RateLimit)
	}
	if c.RateBurst < 1 {
		return fmt.Errorf("MISSIONCTL_RATE_BURST must be at least 1, got %d", c.RateBurst)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("MISSIONCTL_POLL_INTERVAL must be positive, got %s", c.PollInterval)
	}
	if c.NotifyWindow <= 0 {
		return fmt.Errorf("MISSIONCTL_NOTIFY_WINDOW must be positive, got %s", c.NotifyWindow)
	}
	return nil
}

// Location resolves Timezone. Day keys and streaks are computed in it.
func (c Config) Location() (*time.Location, error) {
	loc, err := utils.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid MISSIONCTL_TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Backend names the storage driver selected by a DB value
type Backend string

const (
	BackendSQLite   Backend = "sqlite"
	BackendJSON     Backend = "json"
	BackendPostgres Backend = "postgres"
)

// BackendFor picks the storage driver from the shape of db
func BackendFor(db string) Backend {
	switch {
	case strings.HasPrefix(db, "postgres://"), strings.HasPrefix(db, "postgresql://"):
		return BackendPostgres
	case strings.EqualFold(filepath.Ext(db), ".json"):
		return BackendJSON
	default:
		return BackendSQLite
	}
}

var userHomeDirFunc = os.UserHomeDir

// ExpandPath resolves a leading ~ to the user's home directory
func ExpandPath(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := userHomeDirFunc()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// ConfigDir returns the directory holding the database, logs and backups.
// Remote databases fall back to the default local config directory.
func ConfigDir(db string) (string, error) {
	if BackendFor(db) == BackendPostgres {
		db = constants.DefaultConfigPath
	}
	path, err := ExpandPath(db)
	if err != nil {
		return "", err
	}
	return filepath.Dir(path), nil
}
