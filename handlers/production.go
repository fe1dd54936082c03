// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/stockroom/auth"
	"github.com/danielhkuo/stockroom/cliparse"
	"github.com/danielhkuo/stockroom/feed"
	"github.com/danielhkuo/stockroom/inventory"
	"github.com/danielhkuo/stockroom/metrics"
	"github.com/danielhkuo/stockroom/middleware"
	"github.com/danielhkuo/stockroom/models"
	"github.com/danielhkuo/stockroom/payroll"
)

type ProductionHandler struct {
	db      *sql.DB
	cfg     cliparse.Config
	feed    *feed.Broker
	metrics *metrics.Metrics
}

func NewProductionHandler(db *sql.DB, cfg cliparse.Config, broker *feed.Broker, m *metrics.Metrics) *ProductionHandler {
	return &ProductionHandler{db: db, cfg: cfg, feed: broker, metrics: m}
}

// ListProduction handles GET /production?month=YYYY-MM
func (h *ProductionHandler) ListProduction(w http.ResponseWriter, r *http.Request) {
	start, end, err := payroll.ParseMonth(r.URL.Query().Get("month"), now())
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	rows, err := loadProduction(r.Context(), h.db, start, end)
	if err != nil {
		slog.Error("failed to load production", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.ProductionListResponse{
		Period:     start.Format("2006-01"),
		Production: rows,
	})
}

// CreateProduction handles POST /production.
// Recording output does not move stock; that is done with transactions.
func (h *ProductionHandler) CreateProduction(w http.ResponseWriter, r *http.Request) {
	var req models.CreateProductionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.EmployeeID == "" || req.ItemID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "employee_id and item_id are required")
		return
	}
	if req.Quantity <= 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "quantity must be positive")
		return
	}
	if req.Quantity > inventory.MaxQuantity {
		middleware.ErrorResponse(w, http.StatusBadRequest, fmt.Sprintf("quantity must not exceed %d", inventory.MaxQuantity))
		return
	}

	ts := now()
	date := ts
	if req.Date != nil {
		date = req.Date.UTC()
	}

	tx, err := h.db.BeginTx(r.Context(), nil)
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	for _, ref := range []struct{ table, id, msg string }{
		{"karyawan", req.EmployeeID, "Employee not found"},
		{"barang", req.ItemID, "Item not found"},
	} {
		n, err := countRefs(r.Context(), tx, ref.table, "id", ref.id)
		if err != nil {
			slog.Error("failed to check reference", "error", err, "table", ref.table)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		if n == 0 {
			middleware.ErrorResponse(w, http.StatusNotFound, ref.msg)
			return
		}
	}

	id := auth.GenerateID()
	_, err = tx.ExecContext(r.Context(), `
		INSERT INTO produksi (id, karyawan_id, barang_id, jumlah, tanggal, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
	`, id, req.EmployeeID, req.ItemID, req.Quantity, date, ts)
	if err != nil {
		slog.Error("failed to insert production", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to record production")
		return
	}
	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit production", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to record production")
		return
	}

	slog.Info("production recorded", "production_id", id, "employee_id", req.EmployeeID, "quantity", req.Quantity)
	h.metrics.ProductionRecorded(req.Quantity)
	h.feed.Publish(feed.Change{Table: feed.TableProduction, Op: feed.OpInsert, ID: id})

	middleware.JSONResponse(w, http.StatusCreated, models.CreatedResponse{ID: id})
}
