// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DatabaseSQLite   = "sqlite"
	DatabasePostgres = "postgres"
)

type Config struct {
	Port            int
	DatabaseURL     string
	DatabaseType    string
	SessionSecret   string
	MediaRoot       string
	Debug           bool
	SessionTTL      time.Duration
	DefaultLifetime time.Duration
	StaffEmails     []string
}

// IsStaffEmail reports whether email is configured to register as staff.
func (c Config) IsStaffEmail(email string) bool {
	for _, s := range c.StaffEmails {
		if strings.EqualFold(s, email) {
			return true
		}
	}
	return false
}

// LoadDotEnv reads key=value pairs from path into the environment.
// Variables that are already set win. A missing file is not an error.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// ParseFlags validates flags and fills the rest from the environment
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	var staff string

	fs := flag.NewFlagSet("pollhall", flag.ContinueOnError)

	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")
	fs.StringVar(&cfg.MediaRoot, "media", "", "Directory for uploaded media")
	fs.BoolVar(&cfg.Debug, "debug", false, "Development mode (serves media)")
	fs.DurationVar(&cfg.SessionTTL, "session-ttl", 0, "Session lifetime")
	fs.DurationVar(&cfg.DefaultLifetime, "lifetime", 0, "Default question lifetime")
	fs.StringVar(&staff, "staff", "", "Comma separated staff emails")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.SessionSecret, "session-secret", "", "Session signing secret (prefer env)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 3318
		}
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = DatabaseSQLite
		}
	}
	if cfg.DatabaseType != DatabaseSQLite && cfg.DatabaseType != DatabasePostgres {
		return Config{}, fmt.Errorf("unsupported database type %q", cfg.DatabaseType)
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	if cfg.MediaRoot == "" {
		cfg.MediaRoot = os.Getenv("MEDIA_ROOT")
		if cfg.MediaRoot == "" {
			cfg.MediaRoot = "media"
		}
	}

	if !cfg.Debug {
		if v := os.Getenv("DEBUG"); v != "" {
			debug, err := strconv.ParseBool(v)
			if err != nil {
				return Config{}, errors.New("invalid DEBUG env variable")
			}
			cfg.Debug = debug
		}
	}

	var err error
	if cfg.SessionTTL, err = durationOrEnv(cfg.SessionTTL, "SESSION_TTL", 14*24*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.DefaultLifetime, err = durationOrEnv(cfg.DefaultLifetime, "DEFAULT_LIFETIME", 7*24*time.Hour); err != nil {
		return Config{}, err
	}

	if staff == "" {
		staff = os.Getenv("STAFF_EMAILS")
	}
	for _, email := range strings.Split(staff, ",") {
		if email = strings.TrimSpace(email); email != "" {
			cfg.StaffEmails = append(cfg.StaffEmails, email)
		}
	}

	// Secrets - MUST be provided
	if cfg.SessionSecret == "" {
		cfg.SessionSecret = os.Getenv("SESSION_SECRET")
	}
	if cfg.SessionSecret == "" {
		return Config{}, errors.New("SESSION_SECRET required")
	}

	return cfg, nil
}

func durationOrEnv(flagValue time.Duration, key string, fallback time.Duration) (time.Duration, error) {
	if flagValue != 0 {
		return flagValue, nil
	}
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s env variable: %w", key, err)
	}
	return d, nil
}
