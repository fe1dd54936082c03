// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/danielhkuo/stockroom/auth"
	"github.com/danielhkuo/stockroom/cliparse"
	"github.com/danielhkuo/stockroom/feed"
	"github.com/danielhkuo/stockroom/inventory"
	"github.com/danielhkuo/stockroom/middleware"
	"github.com/danielhkuo/stockroom/models"
)

type ItemHandler struct {
	db   *sql.DB
	cfg  cliparse.Config
	feed *feed.Broker
}

func NewItemHandler(db *sql.DB, cfg cliparse.Config, broker *feed.Broker) *ItemHandler {
	return &ItemHandler{db: db, cfg: cfg, feed: broker}
}

// maxPrice matches the NUMERIC(14,2) price column
var maxPrice = decimal.New(1, 12)

func validateItem(name, kind string, stock, minStock int, price decimal.Decimal) string {
	switch {
	case strings.TrimSpace(name) == "":
		return "name is required"
	case !models.IsItemKind(kind):
		return "kind must be bahan_baku or barang_jadi"
	case stock < 0:
		return "stock must not be negative"
	case stock > inventory.MaxQuantity:
		return fmt.Sprintf("stock must not exceed %d", inventory.MaxQuantity)
	case minStock < 0:
		return "min_stock must not be negative"
	case minStock > inventory.MaxQuantity:
		return fmt.Sprintf("min_stock must not exceed %d", inventory.MaxQuantity)
	case price.IsNegative():
		return "price must not be negative"
	case price.GreaterThanOrEqual(maxPrice):
		return "price must be below 1000000000000"
	case !price.Equal(price.Truncate(2)):
		return "price must have at most 2 decimal places"
	}
	return ""
}

// ListItems handles GET /items?q=&filter=
func (h *ItemHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := loadItems(r.Context(), h.db)
	if err != nil {
		slog.Error("failed to load items", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	filtered, err := inventory.Filter(items, r.URL.Query().Get("q"), r.URL.Query().Get("filter"))
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	// Badge counts describe the whole catalogue, not the filtered view
	overview := inventory.Overview(items)
	middleware.JSONResponse(w, http.StatusOK, models.ItemListResponse{
		Items:         inventory.WithStatus(filtered),
		Total:         len(filtered),
		LowStockCount: overview.LowStockCount,
		OutOfStock:    overview.OutOfStock,
	})
}

// LowStock handles GET /items/low-stock
func (h *ItemHandler) LowStock(w http.ResponseWriter, r *http.Request) {
	items, err := loadItems(r.Context(), h.db)
	if err != nil {
		slog.Error("failed to load items", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, inventory.WithStatus(inventory.LowStock(items)))
}

// GetItem handles GET /items/{id}
func (h *ItemHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	item, err := loadItem(r.Context(), h.db, r.PathValue("id"))
	if errors.Is(err, sql.ErrNoRows) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Item not found")
		return
	}
	if err != nil {
		slog.Error("failed to load item", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.ItemWithStatus{Item: item, Status: inventory.Status(item)})
}

// CreateItem handles POST /items
func (h *ItemHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var req models.CreateItemRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Stock == nil || req.MinStock == nil || req.Price == nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "stock, min_stock and price are required")
		return
	}
	if msg := validateItem(req.Name, req.Kind, *req.Stock, *req.MinStock, *req.Price); msg != "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, msg)
		return
	}

	id := auth.GenerateID()
	ts := now()
	_, err := h.db.ExecContext(r.Context(), `
		INSERT INTO barang (id, nama_barang, jenis_barang, stok, min_stok, harga, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
	`, id, strings.TrimSpace(req.Name), req.Kind, *req.Stock, *req.MinStock, *req.Price, ts)
	if err != nil {
		slog.Error("failed to insert item", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create item")
		return
	}

	slog.Info("item created", "item_id", id, "name", req.Name)
	h.feed.Publish(feed.Change{Table: feed.TableItems, Op: feed.OpInsert, ID: id})

	middleware.JSONResponse(w, http.StatusCreated, models.CreatedResponse{ID: id})
}

// UpdateItem handles PATCH /items/{id}
func (h *ItemHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req models.UpdateItemRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	tx, err := h.db.BeginTx(r.Context(), nil)
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	item, err := loadItem(r.Context(), tx, id)
	if errors.Is(err, sql.ErrNoRows) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Item not found")
		return
	}
	if err != nil {
		slog.Error("failed to load item", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if req.Name != nil {
		item.Name = strings.TrimSpace(*req.Name)
	}
	if req.Kind != nil {
		item.Kind = *req.Kind
	}
	if req.Stock != nil {
		item.Stock = *req.Stock
	}
	if req.MinStock != nil {
		item.MinStock = *req.MinStock
	}
	if req.Price != nil {
		item.Price = *req.Price
	}
	if msg := validateItem(item.Name, item.Kind, item.Stock, item.MinStock, item.Price); msg != "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, msg)
		return
	}

	item.UpdatedAt = now()
	_, err = tx.ExecContext(r.Context(), `
		UPDATE barang
		SET nama_barang = $1, jenis_barang = $2, stok = $3, min_stok = $4, harga = $5, updated_at = $6
		WHERE id = $7
	`, item.Name, item.Kind, item.Stock, item.MinStock, item.Price, item.UpdatedAt, id)
	if err != nil {
		slog.Error("failed to update item", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update item")
		return
	}
	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit item update", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update item")
		return
	}

	slog.Info("item updated", "item_id", id)
	h.feed.Publish(feed.Change{Table: feed.TableItems, Op: feed.OpUpdate, ID: id})

	middleware.JSONResponse(w, http.StatusOK, models.ItemWithStatus{Item: item, Status: inventory.Status(item)})
}

// DeleteItem handles DELETE /items/{id}
func (h *ItemHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	tx, err := h.db.BeginTx(r.Context(), nil)
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	for _, ref := range []struct{ table, column string }{
		{"transaksi", "barang_id"},
		{"produksi", "barang_id"},
	} {
		n, err := countRefs(r.Context(), tx, ref.table, ref.column, id)
		if err != nil {
			slog.Error("failed to count item references", "error", err, "table", ref.table)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		if n > 0 {
			middleware.ErrorResponse(w, http.StatusConflict, "Item is referenced by "+ref.table+" records")
			return
		}
	}

	res, err := tx.ExecContext(r.Context(), `DELETE FROM barang WHERE id = $1`, id)
	if err != nil {
		slog.Error("failed to delete item", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete item")
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "Item not found")
		return
	}
	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit item delete", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete item")
		return
	}

	slog.Info("item deleted", "item_id", id)
	h.feed.Publish(feed.Change{Table: feed.TableItems, Op: feed.OpDelete, ID: id})

	w.WriteHeader(http.StatusNoContent)
}
