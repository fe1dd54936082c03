// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/danielhkuo/stockroom/models"
)

// querier is satisfied by both *sql.DB and *sql.Tx
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// now is stored in UTC so SQLite text timestamps compare correctly
func now() time.Time {
	return time.Now().UTC()
}

const itemColumns = `id, nama_barang, jenis_barang, stok, min_stok, harga, created_at, updated_at`

func scanItem(row interface{ Scan(...any) error }) (models.Item, error) {
	var it models.Item
	err := row.Scan(&it.ID, &it.Name, &it.Kind, &it.Stock, &it.MinStock, &it.Price, &it.CreatedAt, &it.UpdatedAt)
	return it, err
}

func loadItems(ctx context.Context, q querier) ([]models.Item, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+itemColumns+` FROM barang ORDER BY nama_barang, id`)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	items := []models.Item{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func loadItem(ctx context.Context, q querier, id string) (models.Item, error) {
	return scanItem(q.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM barang WHERE id = $1`, id))
}

func loadTransactions(ctx context.Context, q querier) ([]models.Transaction, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT t.id, t.barang_id, t.jenis_transaksi, t.jumlah, t.keterangan, t.tanggal,
		       t.created_at, t.updated_at, b.nama_barang, b.harga, b.jenis_barang
		FROM transaksi t
		JOIN barang b ON b.id = t.barang_id
		ORDER BY t.tanggal DESC, t.created_at DESC, t.id
	`)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	txns := []models.Transaction{}
	for rows.Next() {
		var t models.Transaction
		var note sql.NullString
		if err := rows.Scan(&t.ID, &t.ItemID, &t.Kind, &t.Quantity, &note, &t.Date,
			&t.CreatedAt, &t.UpdatedAt, &t.ItemName, &t.ItemPrice, &t.ItemKind); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		if note.Valid {
			t.Note = &note.String
		}
		txns = append(txns, t)
	}
	return txns, rows.Err()
}

func loadEmployees(ctx context.Context, q querier) ([]models.Employee, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, nama, divisi, created_at, updated_at
		FROM karyawan
		ORDER BY nama, id
	`)
	if err != nil {
		return nil, fmt.Errorf("query employees: %w", err)
	}
	defer rows.Close()

	employees := []models.Employee{}
	for rows.Next() {
		var e models.Employee
		if err := rows.Scan(&e.ID, &e.Name, &e.Division, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan employee: %w", err)
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

// loadProduction returns production rows dated in [from, to), newest first
func loadProduction(ctx context.Context, q querier, from, to time.Time) ([]models.Production, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT p.id, p.karyawan_id, p.barang_id, p.jumlah, p.tanggal, p.created_at, p.updated_at,
		       k.nama, k.divisi, b.nama_barang
		FROM produksi p
		JOIN karyawan k ON k.id = p.karyawan_id
		JOIN barang b ON b.id = p.barang_id
		WHERE p.tanggal >= $1 AND p.tanggal < $2
		ORDER BY p.tanggal DESC, p.created_at DESC, p.id
	`, from.UTC(), to.UTC())
	if err != nil {
		return nil, fmt.Errorf("query production: %w", err)
	}
	defer rows.Close()

	out := []models.Production{}
	for rows.Next() {
		var p models.Production
		if err := rows.Scan(&p.ID, &p.EmployeeID, &p.ItemID, &p.Quantity, &p.Date, &p.CreatedAt, &p.UpdatedAt,
			&p.EmployeeName, &p.Division, &p.ItemName); err != nil {
			return nil, fmt.Errorf("scan production: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

const profileColumns = `id, email, full_name, role, divisi, is_active, created_at, updated_at`

func scanProfile(row interface{ Scan(...any) error }) (models.Profile, error) {
	var p models.Profile
	var fullName, division sql.NullString
	err := row.Scan(&p.ID, &p.Email, &fullName, &p.Role, &division, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if fullName.Valid {
		p.FullName = &fullName.String
	}
	if division.Valid {
		p.Division = &division.String
	}
	return p, err
}

func loadProfile(ctx context.Context, q querier, id string) (models.Profile, error) {
	return scanProfile(q.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id))
}

// countRefs counts rows in table whose column equals id
func countRefs(ctx context.Context, q querier, table, column, id string) (int, error) {
	var n int
	err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table+` WHERE `+column+` = $1`, id).Scan(&n)
	return n, err
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
