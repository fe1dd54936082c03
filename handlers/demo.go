// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/danielhkuo/stockroom/auth"
	"github.com/danielhkuo/stockroom/cliparse"
	"github.com/danielhkuo/stockroom/feed"
	"github.com/danielhkuo/stockroom/middleware"
	"github.com/danielhkuo/stockroom/models"
)

type demoItem struct {
	name            string
	kind            string
	stock, minStock int
	price           int64
}

var demoItems = []demoItem{
	{"Tabung Gas 3kg", models.KindFinishedGood, 25, 10, 150000},
	{"Tabung Gas 12kg", models.KindFinishedGood, 8, 15, 350000},
	{"Regulator Gas", models.KindFinishedGood, 50, 20, 45000},
	{"Selang Gas", models.KindFinishedGood, 120, 50, 25000},
	{"Besi Plat", models.KindRawMaterial, 200, 100, 12000},
	{"Cat Primer", models.KindRawMaterial, 15, 25, 85000},
}

var demoEmployees = []struct{ name, division string }{
	{"Ahmad Surya", models.DivisionCylinder},
	{"Siti Rahayu", models.DivisionAccessory},
	{"Budi Santoso", models.DivisionPacking},
	{"Dewi Kartika", models.DivisionCylinder},
	{"Rizky Pratama", models.DivisionAccessory},
}

// Movements reference demoItems by index. They are history: the catalogue
// stock above is the level after them.
var demoTransactions = []struct {
	item     int
	kind     string
	quantity int
	note     string
}{
	{0, models.TxnInbound, 50, "Pembelian stock awal"},
	{1, models.TxnInbound, 30, "Pembelian stock tambahan"},
	{0, models.TxnOutSale, 10, "Penjualan ke customer"},
	{2, models.TxnOutProduction, 25, "Digunakan untuk produksi tabung"},
	{1, models.TxnOutOther, 5, "Barang rusak/hilang"},
}

var demoProduction = []struct {
	item, employee int
	quantity       int
	daysAgo        int
}{
	{0, 0, 15, 0},
	{1, 1, 8, 1},
}

type DemoHandler struct {
	db   *sql.DB
	cfg  cliparse.Config
	feed *feed.Broker
}

func NewDemoHandler(db *sql.DB, cfg cliparse.Config, broker *feed.Broker) *DemoHandler {
	return &DemoHandler{db: db, cfg: cfg, feed: broker}
}

// Seed handles POST /demo/seed. It refuses to run on a non-empty catalogue.
func (h *DemoHandler) Seed(w http.ResponseWriter, r *http.Request) {
	tx, err := h.db.BeginTx(r.Context(), nil)
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	var existing int
	if err := tx.QueryRowContext(r.Context(), `SELECT COUNT(*) FROM barang`).Scan(&existing); err != nil {
		slog.Error("failed to count items", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if existing > 0 {
		middleware.ErrorResponse(w, http.StatusConflict, "Catalogue is not empty; clear it first")
		return
	}

	changes, err := seed(r.Context(), tx, now())
	if err != nil {
		slog.Error("failed to seed demo data", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to seed demo data")
		return
	}
	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit demo data", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to seed demo data")
		return
	}

	for _, c := range changes {
		h.feed.Publish(c)
	}
	slog.Info("demo data seeded", "rows", len(changes))

	middleware.JSONResponse(w, http.StatusCreated, models.SeedResponse{
		Items:        len(demoItems),
		Employees:    len(demoEmployees),
		Transactions: len(demoTransactions),
		Production:   len(demoProduction),
	})
}

func seed(ctx context.Context, tx *sql.Tx, ts time.Time) ([]feed.Change, error) {
	var changes []feed.Change

	itemIDs := make([]string, len(demoItems))
	for i, it := range demoItems {
		itemIDs[i] = auth.GenerateID()
		_, err := tx.ExecContext(ctx, `
			INSERT INTO barang (id, nama_barang, jenis_barang, stok, min_stok, harga, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		`, itemIDs[i], it.name, it.kind, it.stock, it.minStock, decimal.NewFromInt(it.price), ts)
		if err != nil {
			return nil, fmt.Errorf("insert item %s: %w", it.name, err)
		}
		changes = append(changes, feed.Change{Table: feed.TableItems, Op: feed.OpInsert, ID: itemIDs[i]})
	}

	employeeIDs := make([]string, len(demoEmployees))
	for i, e := range demoEmployees {
		employeeIDs[i] = auth.GenerateID()
		_, err := tx.ExecContext(ctx, `
			INSERT INTO karyawan (id, nama, divisi, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $4)
		`, employeeIDs[i], e.name, e.division, ts)
		if err != nil {
			return nil, fmt.Errorf("insert employee %s: %w", e.name, err)
		}
		changes = append(changes, feed.Change{Table: feed.TableEmployees, Op: feed.OpInsert, ID: employeeIDs[i]})
	}

	for i, t := range demoTransactions {
		id := auth.GenerateID()
		// Space the movements a minute apart so their order is stable
		date := ts.Add(time.Duration(i-len(demoTransactions)) * time.Minute)
		_, err := tx.ExecContext(ctx, `
			INSERT INTO transaksi (id, barang_id, jenis_transaksi, jumlah, keterangan, tanggal, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		`, id, itemIDs[t.item], t.kind, t.quantity, t.note, date, ts)
		if err != nil {
			return nil, fmt.Errorf("insert transaction: %w", err)
		}
		changes = append(changes, feed.Change{Table: feed.TableTransactions, Op: feed.OpInsert, ID: id})
	}

	for _, p := range demoProduction {
		id := auth.GenerateID()
		_, err := tx.ExecContext(ctx, `
			INSERT INTO produksi (id, karyawan_id, barang_id, jumlah, tanggal, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $6)
		`, id, employeeIDs[p.employee], itemIDs[p.item], p.quantity, ts.AddDate(0, 0, -p.daysAgo), ts)
		if err != nil {
			return nil, fmt.Errorf("insert production: %w", err)
		}
		changes = append(changes, feed.Change{Table: feed.TableProduction, Op: feed.OpInsert, ID: id})
	}

	return changes, nil
}

// Clear handles POST /demo/clear. Profiles are kept.
func (h *DemoHandler) Clear(w http.ResponseWriter, r *http.Request) {
	tx, err := h.db.BeginTx(r.Context(), nil)
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	// Children before parents
	tables := []string{feed.TableProduction, feed.TableTransactions, feed.TableItems, feed.TableEmployees}
	deleted := map[string]int64{}
	for _, table := range tables {
		res, err := tx.ExecContext(r.Context(), `DELETE FROM `+table)
		if err != nil {
			slog.Error("failed to clear table", "error", err, "table", table)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to clear data")
			return
		}
		deleted[table], _ = res.RowsAffected()
	}
	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit clear", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to clear data")
		return
	}

	// A change without an ID means the whole table was rewritten
	for _, table := range tables {
		h.feed.Publish(feed.Change{Table: table, Op: feed.OpDelete})
	}
	slog.Info("demo data cleared", "deleted", deleted)

	middleware.JSONResponse(w, http.StatusOK, deleted)
}
