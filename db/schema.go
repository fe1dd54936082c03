// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Tables in dependency order, children first
var Tables = []string{"produksi", "transaksi", "karyawan", "barang", "profiles"}

// The DDL is shared by PostgreSQL and SQLite, so only portable types are used.
const schema = `
-- Items
CREATE TABLE IF NOT EXISTS barang (
    id TEXT PRIMARY KEY,
    nama_barang TEXT NOT NULL,
    jenis_barang TEXT NOT NULL CHECK (jenis_barang IN ('bahan_baku', 'barang_jadi')),
    stok INTEGER NOT NULL DEFAULT 0 CHECK (stok >= 0),
    min_stok INTEGER NOT NULL DEFAULT 0 CHECK (min_stok >= 0),
    harga NUMERIC(14,2) NOT NULL DEFAULT 0 CHECK (harga >= 0),
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_barang_nama ON barang(nama_barang);

-- Stock transactions
CREATE TABLE IF NOT EXISTS transaksi (
    id TEXT PRIMARY KEY,
    barang_id TEXT NOT NULL REFERENCES barang(id),
    jenis_transaksi TEXT NOT NULL CHECK (jenis_transaksi IN ('masuk', 'keluar_produksi', 'keluar_penjualan', 'keluar_lainnya')),
    jumlah INTEGER NOT NULL CHECK (jumlah > 0),
    keterangan TEXT,
    tanggal TIMESTAMP NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_transaksi_barang_id ON transaksi(barang_id);
CREATE INDEX IF NOT EXISTS idx_transaksi_tanggal ON transaksi(tanggal);

-- Employees
CREATE TABLE IF NOT EXISTS karyawan (
    id TEXT PRIMARY KEY,
    nama TEXT NOT NULL,
    divisi TEXT NOT NULL CHECK (divisi IN ('tabung', 'asesoris', 'packing')),
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

-- Production output
CREATE TABLE IF NOT EXISTS produksi (
    id TEXT PRIMARY KEY,
    karyawan_id TEXT NOT NULL REFERENCES karyawan(id),
    barang_id TEXT NOT NULL REFERENCES barang(id),
    jumlah INTEGER NOT NULL CHECK (jumlah > 0),
    tanggal TIMESTAMP NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_produksi_karyawan_id ON produksi(karyawan_id);
CREATE INDEX IF NOT EXISTS idx_produksi_barang_id ON produksi(barang_id);
CREATE INDEX IF NOT EXISTS idx_produksi_tanggal ON produksi(tanggal);

-- Staff profiles
CREATE TABLE IF NOT EXISTS profiles (
    id TEXT PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    full_name TEXT,
    role TEXT NOT NULL DEFAULT 'employee' CHECK (role IN ('admin', 'manager', 'employee')),
    divisi TEXT CHECK (divisi IN ('tabung', 'asesoris', 'packing')),
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`
