// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/danielhkuo/stockroom/auth"
	"github.com/danielhkuo/stockroom/cliparse"
	"github.com/danielhkuo/stockroom/db"
)

// SetupTestDB creates a fresh SQLite database file with the full schema.
// The database is closed when the test ends.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	url := "file:" + filepath.Join(t.TempDir(), "stockroom.db")
	conn, err := db.Open(db.TypeSQLite, url)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}
	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:          3318,
		DatabaseURL:   "file:test.db",
		DatabaseType:  db.TypeSQLite,
		StaffKeySalt:  "test-staff-salt",
		ArchiveDriver: "none",
		LogFormat:     "text",
		LogLevel:      "info",
		CORSOrigin:    "*",
	}
}

// CreateTestProfile inserts an active profile and returns its ID and bearer token
func CreateTestProfile(t *testing.T, db *sql.DB, cfg cliparse.Config, role string) (profileID, token string) {
	t.Helper()

	profileID = auth.GenerateID()
	now := time.Now().UTC()
	_, err := db.Exec(`
		INSERT INTO profiles (id, email, full_name, role, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
	`, profileID, role+"-"+profileID[:8]+"@example.com", "Test "+role, role, true, now)
	if err != nil {
		t.Fatalf("Failed to create test profile: %v", err)
	}

	return profileID, auth.StaffToken(profileID, cfg.StaffKeySalt)
}

// CreateTestItem inserts an item and returns its ID
func CreateTestItem(t *testing.T, db *sql.DB, name, kind string, stock, minStock int, price int64) string {
	t.Helper()

	id := auth.GenerateID()
	now := time.Now().UTC()
	_, err := db.Exec(`
		INSERT INTO barang (id, nama_barang, jenis_barang, stok, min_stok, harga, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
	`, id, name, kind, stock, minStock, decimal.NewFromInt(price), now)
	if err != nil {
		t.Fatalf("Failed to create test item: %v", err)
	}
	return id
}

// CreateTestEmployee inserts an employee and returns its ID
func CreateTestEmployee(t *testing.T, db *sql.DB, name, division string) string {
	t.Helper()

	id := auth.GenerateID()
	now := time.Now().UTC()
	_, err := db.Exec(`
		INSERT INTO karyawan (id, nama, divisi, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
	`, id, name, division, now)
	if err != nil {
		t.Fatalf("Failed to create test employee: %v", err)
	}
	return id
}

// CreateTestProduction records output for an employee on the given date
func CreateTestProduction(t *testing.T, db *sql.DB, employeeID, itemID string, quantity int, date time.Time) string {
	t.Helper()

	id := auth.GenerateID()
	_, err := db.Exec(`
		INSERT INTO produksi (id, karyawan_id, barang_id, jumlah, tanggal, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
	`, id, employeeID, itemID, quantity, date.UTC(), time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test production: %v", err)
	}
	return id
}

// CreateTestTransaction inserts a movement row without touching stock
func CreateTestTransaction(t *testing.T, db *sql.DB, itemID, kind string, quantity int, note string, date time.Time) string {
	t.Helper()

	id := auth.GenerateID()
	_, err := db.Exec(`
		INSERT INTO transaksi (id, barang_id, jenis_transaksi, jumlah, keterangan, tanggal, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
	`, id, itemID, kind, quantity, note, date.UTC(), time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test transaction: %v", err)
	}
	return id
}

// Bearer builds the Authorization header for a staff token
func Bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
