// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the stockroom API server.

Stockroom tracks the stock, staff and output of a gas cylinder workshop:
raw materials and finished goods, stock movements, production per employee,
a monthly payroll recap, asset valuation and downloadable HTML reports.
Clients follow changes through a Server-Sent Events feed.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	DATABASE_URL=file:stockroom.db STAFF_KEY_SALT=... go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..." -bootstrap-admin owner@example.com

A .env file in the working directory is loaded first.

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite DSN or PostgreSQL connection string
  - STAFF_KEY_SALT (-staff-salt): Secret for staff token HMAC

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - PAYROLL_RATES (-payroll-rates): YAML file overriding division pay rates
  - ARCHIVE_DRIVER (-archive): none, fs or s3 (default: none)
  - ARCHIVE_DIR (-archive-dir): Directory for the fs driver
  - ARCHIVE_S3_BUCKET, ARCHIVE_S3_REGION, ARCHIVE_S3_ENDPOINT, ARCHIVE_S3_PATH_STYLE
  - LOG_FORMAT (-log-format): text or json
  - LOG_LEVEL (-log-level): debug, info, warn or error
  - CORS_ORIGIN (-cors-origin): Allowed origin, "*" reflects any
  - BOOTSTRAP_ADMIN (-bootstrap-admin): Email to promote to admin at startup; its token is printed

# Architecture

  - handlers: HTTP request handlers and the staff authenticator
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, metrics, JSON helpers
  - models: Domain, request and response types
  - inventory: Stock status, filters, movements and valuation
  - payroll: Division rates and the monthly recap
  - report: HTML table rendering
  - archive: Report storage (filesystem, memory, S3)
  - feed: In-process change broker
  - metrics: Prometheus collectors
  - auth: Staff tokens and roles
  - db: Connection and schema creation
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
