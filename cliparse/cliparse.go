// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string
	StaffKeySalt string

	PayrollRates string

	ArchiveDriver      string
	ArchiveDir         string
	ArchiveS3Bucket    string
	ArchiveS3Region    string
	ArchiveS3Endpoint  string
	ArchiveS3PathStyle bool

	LogFormat  string
	LogLevel   string
	CORSOrigin string

	BootstrapAdmin string
}

// ParseFlags loads .env, parses flags, and falls back to environment variables
func ParseFlags(args []string) (Config, error) {
	// Missing .env is fine; variables already set in the environment win
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	var cfg Config

	fs := flag.NewFlagSet("stockroom", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.StaffKeySalt, "staff-salt", "", "Staff key salt (prefer env)")

	fs.StringVar(&cfg.PayrollRates, "payroll-rates", "", "YAML file overriding payroll rates")
	fs.StringVar(&cfg.ArchiveDriver, "archive", "", "Report archive driver (none, fs or s3)")
	fs.StringVar(&cfg.ArchiveDir, "archive-dir", "", "Directory for the fs archive driver")
	fs.StringVar(&cfg.LogFormat, "log-format", "", "Log format (text or json)")
	fs.StringVar(&cfg.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&cfg.CORSOrigin, "cors-origin", "", "Allowed CORS origin")
	fs.StringVar(&cfg.BootstrapAdmin, "bootstrap-admin", "", "Create an admin profile with this email and print its token")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 3318 // default
		}
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	cfg.DatabaseType = fallback(cfg.DatabaseType, "DATABASE_TYPE", "sqlite")
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, fmt.Errorf("unsupported database type %q", cfg.DatabaseType)
	}

	// Secrets - MUST be provided
	if cfg.StaffKeySalt == "" {
		cfg.StaffKeySalt = os.Getenv("STAFF_KEY_SALT")
	}
	if cfg.StaffKeySalt == "" {
		return Config{}, errors.New("STAFF_KEY_SALT required")
	}

	cfg.PayrollRates = fallback(cfg.PayrollRates, "PAYROLL_RATES", "")

	cfg.ArchiveDriver = fallback(cfg.ArchiveDriver, "ARCHIVE_DRIVER", "none")
	cfg.ArchiveDir = fallback(cfg.ArchiveDir, "ARCHIVE_DIR", "")
	cfg.ArchiveS3Bucket = os.Getenv("ARCHIVE_S3_BUCKET")
	cfg.ArchiveS3Region = os.Getenv("ARCHIVE_S3_REGION")
	cfg.ArchiveS3Endpoint = os.Getenv("ARCHIVE_S3_ENDPOINT")
	if v := os.Getenv("ARCHIVE_S3_PATH_STYLE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, errors.New("invalid ARCHIVE_S3_PATH_STYLE env variable")
		}
		cfg.ArchiveS3PathStyle = b
	}

	cfg.LogFormat = fallback(cfg.LogFormat, "LOG_FORMAT", "text")
	cfg.LogLevel = fallback(cfg.LogLevel, "LOG_LEVEL", "info")
	cfg.CORSOrigin = fallback(cfg.CORSOrigin, "CORS_ORIGIN", "*")
	cfg.BootstrapAdmin = fallback(cfg.BootstrapAdmin, "BOOTSTRAP_ADMIN", "")

	return cfg, nil
}

func fallback(v, env, def string) string {
	if v != "" {
		return v
	}
	if e := os.Getenv(env); e != "" {
		return e
	}
	return def
}
