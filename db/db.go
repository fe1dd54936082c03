// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Supported database types
const (
	TypeSQLite   = "sqlite"
	TypePostgres = "postgres"
)

// Open connects to the database named by dbType and verifies the connection
func Open(dbType, url string) (*sql.DB, error) {
	switch dbType {
	case TypePostgres:
		conn, err := sql.Open("postgres", url)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres: %w", err)
		}
		if err := conn.Ping(); err != nil {
			conn.Close()
			return nil, fmt.Errorf("database ping failed: %w", err)
		}
		return conn, nil

	case TypeSQLite, "":
		conn, err := sql.Open("sqlite", sqliteDSN(url))
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite: %w", err)
		}
		// A single writer keeps stock updates serialized and avoids SQLITE_BUSY
		conn.SetMaxOpenConns(1)
		if err := conn.Ping(); err != nil {
			conn.Close()
			return nil, fmt.Errorf("database ping failed: %w", err)
		}
		return conn, nil
	}

	return nil, fmt.Errorf("unsupported database type %q", dbType)
}

// sqliteDSN enables foreign keys and a sortable time format
func sqliteDSN(url string) string {
	var params []string
	if !strings.Contains(url, "foreign_keys") {
		params = append(params, "_pragma=foreign_keys(1)")
	}
	if !strings.Contains(url, "_time_format") {
		params = append(params, "_time_format=sqlite")
	}
	if len(params) == 0 {
		return url
	}

	sep := "?"
	if strings.Contains(url, "?") {
		sep = "&"
	}
	return url + sep + strings.Join(params, "&")
}
