// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

A .env file in the working directory is loaded first. Variables already set
in the environment are not overwritten by it.

# CLI Flags

	-p                 Server port (default 3318)
	-d                 Database URL
	-t                 Database type: sqlite (default) or postgres
	-staff-salt        Staff key salt
	-payroll-rates     YAML file overriding payroll rates
	-archive           Report archive driver: none (default), fs or s3
	-archive-dir       Directory for the fs archive driver
	-log-format        text (default) or json
	-log-level         debug, info (default), warn or error
	-cors-origin       Allowed CORS origin (default *)
	-bootstrap-admin   Create an admin profile and print its token

# Environment Variables

Flags fall back to environment variables:

	PORT            → -p
	DATABASE_URL    → -d
	DATABASE_TYPE   → -t
	STAFF_KEY_SALT  → -staff-salt
	PAYROLL_RATES   → -payroll-rates
	ARCHIVE_DRIVER  → -archive
	ARCHIVE_DIR     → -archive-dir
	LOG_FORMAT      → -log-format
	LOG_LEVEL       → -log-level
	CORS_ORIGIN     → -cors-origin
	BOOTSTRAP_ADMIN → -bootstrap-admin

The S3 archive driver is configured from the environment only:
ARCHIVE_S3_BUCKET, ARCHIVE_S3_REGION, ARCHIVE_S3_ENDPOINT and
ARCHIVE_S3_PATH_STYLE. Credentials come from the default AWS chain.

CLI flags take precedence over environment variables.

# Validation

ParseFlags returns an error if required values are missing:

  - DATABASE_URL must be provided
  - STAFF_KEY_SALT must be provided
  - DATABASE_TYPE must be sqlite or postgres
*/
package cliparse
