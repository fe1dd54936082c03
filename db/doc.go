// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the database and creates its schema.

# Connecting

Open picks the driver from the database type:

	conn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)

  - "postgres" uses github.com/lib/pq
  - "sqlite" uses modernc.org/sqlite (pure Go, no cgo)

SQLite connections are limited to one open connection, run with foreign keys
enabled, and store timestamps in the sortable "sqlite" time format.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.
The same DDL runs on both databases.

# Tables

  - barang: Stock items (raw materials and finished goods)
  - transaksi: Inbound and outbound stock movements
  - karyawan: Employees and their division
  - produksi: Units produced per employee per day
  - profiles: Staff logins and roles

# Relationships

	barang 1──* transaksi
	barang 1──* produksi
	karyawan 1──* produksi

Foreign keys do not cascade. Deleting a referenced item or employee is
refused by the handlers with 409 Conflict.
*/
package db
