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

	"github.com/danielhkuo/stockroom/auth"
	"github.com/danielhkuo/stockroom/cliparse"
	"github.com/danielhkuo/stockroom/feed"
	"github.com/danielhkuo/stockroom/inventory"
	"github.com/danielhkuo/stockroom/metrics"
	"github.com/danielhkuo/stockroom/middleware"
	"github.com/danielhkuo/stockroom/models"
)

type TransactionHandler struct {
	db      *sql.DB
	cfg     cliparse.Config
	feed    *feed.Broker
	metrics *metrics.Metrics
}

func NewTransactionHandler(db *sql.DB, cfg cliparse.Config, broker *feed.Broker, m *metrics.Metrics) *TransactionHandler {
	return &TransactionHandler{db: db, cfg: cfg, feed: broker, metrics: m}
}

// ListTransactions handles GET /transactions?q=&kind=
func (h *TransactionHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	txns, err := loadTransactions(r.Context(), h.db)
	if err != nil {
		slog.Error("failed to load transactions", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	filtered, err := inventory.FilterTransactions(txns, r.URL.Query().Get("q"), r.URL.Query().Get("kind"))
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.TransactionListResponse{
		Transactions: filtered,
		Total:        len(filtered),
		Totals:       inventory.TransactionTotals(txns),
	})
}

// CreateTransaction handles POST /transactions.
// The movement row and the new stock level are written in one database transaction.
func (h *TransactionHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req models.CreateTransactionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.ItemID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "item_id is required")
		return
	}
	if !models.IsTransactionKind(req.Kind) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "kind must be one of "+strings.Join(models.TransactionKinds, ", "))
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

	item, err := loadItem(r.Context(), tx, req.ItemID)
	if errors.Is(err, sql.ErrNoRows) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Item not found")
		return
	}
	if err != nil {
		slog.Error("failed to load item", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	newStock, err := inventory.Apply(item.Stock, req.Kind, req.Quantity)
	if errors.Is(err, inventory.ErrInsufficientStock) {
		middleware.ErrorResponse(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	txnID := auth.GenerateID()
	_, err = tx.ExecContext(r.Context(), `
		INSERT INTO transaksi (id, barang_id, jenis_transaksi, jumlah, keterangan, tanggal, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
	`, txnID, item.ID, req.Kind, req.Quantity, nullable(strings.TrimSpace(req.Note)), date, ts)
	if err != nil {
		slog.Error("failed to insert transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to record transaction")
		return
	}

	// Guard on the stock we read so a concurrent writer cannot be overwritten
	res, err := tx.ExecContext(r.Context(), `
		UPDATE barang SET stok = $1, updated_at = $2
		WHERE id = $3 AND stok = $4
	`, newStock, ts, item.ID, item.Stock)
	if err != nil {
		slog.Error("failed to update stock", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to record transaction")
		return
	}
	if n, _ := res.RowsAffected(); n != 1 {
		middleware.ErrorResponse(w, http.StatusConflict, "Stock changed concurrently, retry")
		return
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to record transaction")
		return
	}

	slog.Info("transaction recorded",
		"transaction_id", txnID,
		"item_id", item.ID,
		"kind", req.Kind,
		"quantity", req.Quantity,
		"new_stock", newStock,
	)
	h.metrics.TransactionRecorded(req.Kind)
	h.feed.Publish(feed.Change{Table: feed.TableTransactions, Op: feed.OpInsert, ID: txnID})
	h.feed.Publish(feed.Change{Table: feed.TableItems, Op: feed.OpUpdate, ID: item.ID})

	middleware.JSONResponse(w, http.StatusCreated, models.CreateTransactionResponse{
		TransactionID: txnID,
		NewStock:      newStock,
	})
}
