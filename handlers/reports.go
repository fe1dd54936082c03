// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielhkuo/stockroom/archive"
	"github.com/danielhkuo/stockroom/cliparse"
	"github.com/danielhkuo/stockroom/inventory"
	"github.com/danielhkuo/stockroom/middleware"
	"github.com/danielhkuo/stockroom/payroll"
	"github.com/danielhkuo/stockroom/report"
)

const htmlContentType = "text/html; charset=utf-8"

var errBadMonth = errors.New("bad month")

type ReportHandler struct {
	db    *sql.DB
	cfg   cliparse.Config
	rates payroll.Rates
	store archive.Store
}

// NewReportHandler builds the export handler. A nil store disables archiving.
func NewReportHandler(db *sql.DB, cfg cliparse.Config, rates payroll.Rates, store archive.Store) *ReportHandler {
	return &ReportHandler{db: db, cfg: cfg, rates: rates, store: store}
}

// build loads the rows for kind and renders them into a table
func (h *ReportHandler) build(ctx context.Context, kind, month string) (report.Table, error) {
	switch kind {
	case report.KindStock:
		items, err := loadItems(ctx, h.db)
		if err != nil {
			return report.Table{}, err
		}
		return report.StockTable(items), nil

	case report.KindTransactions:
		txns, err := loadTransactions(ctx, h.db)
		if err != nil {
			return report.Table{}, err
		}
		return report.TransactionTable(txns), nil

	case report.KindEmployees:
		employees, err := loadEmployees(ctx, h.db)
		if err != nil {
			return report.Table{}, err
		}
		return report.EmployeeTable(employees), nil

	case report.KindAssets:
		items, err := loadItems(ctx, h.db)
		if err != nil {
			return report.Table{}, err
		}
		return report.AssetTable(inventory.Valuate(items)), nil

	case report.KindPayroll:
		start, end, err := payroll.ParseMonth(month, now())
		if err != nil {
			return report.Table{}, fmt.Errorf("%w: %v", errBadMonth, err)
		}
		rows, err := loadProduction(ctx, h.db, start, end)
		if err != nil {
			return report.Table{}, err
		}
		recap, err := payroll.Recap(h.rates, start.Format("2006-01"), rows)
		if err != nil {
			return report.Table{}, err
		}
		return report.PayrollTable(recap), nil
	}
	return report.Table{}, fmt.Errorf("unknown report kind %q", kind)
}

// render validates the kind and produces the HTML document
func (h *ReportHandler) render(w http.ResponseWriter, r *http.Request) (kind string, body []byte, ok bool) {
	kind = r.PathValue("kind")
	if !report.IsKind(kind) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Unknown report: "+kind)
		return "", nil, false
	}

	table, err := h.build(r.Context(), kind, r.URL.Query().Get("month"))
	if errors.Is(err, errBadMonth) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "month must be YYYY-MM")
		return "", nil, false
	}
	if err != nil {
		slog.Error("failed to build report", "error", err, "kind", kind)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to build report")
		return "", nil, false
	}

	body, err = report.RenderBytes(table, now())
	if err != nil {
		slog.Error("failed to render report", "error", err, "kind", kind)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to render report")
		return "", nil, false
	}
	return kind, body, true
}

// Export handles GET /reports/{kind}
func (h *ReportHandler) Export(w http.ResponseWriter, r *http.Request) {
	kind, body, ok := h.render(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", htmlContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+report.Filename(kind, now())+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// Archive handles POST /reports/{kind}/archive
func (h *ReportHandler) Archive(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		middleware.ErrorResponse(w, http.StatusServiceUnavailable, "Report archive is disabled")
		return
	}

	kind, body, ok := h.render(w, r)
	if !ok {
		return
	}

	key := archive.ReportKey(kind, report.Filename(kind, now()))
	info, err := h.store.Put(r.Context(), key, bytes.NewReader(body), htmlContentType)
	if errors.Is(err, archive.ErrExists) {
		middleware.ErrorResponse(w, http.StatusConflict, "Report already archived today: "+key)
		return
	}
	if err != nil {
		slog.Error("failed to archive report", "error", err, "key", key)
		middleware.ErrorResponse(w, http.StatusBadGateway, "Failed to archive report")
		return
	}

	slog.Info("report archived", "key", info.Key, "size", info.SizeHuman, "driver", h.store.Driver())
	middleware.JSONResponse(w, http.StatusCreated, info)
}

// ListArchive handles GET /reports/archive?kind=
func (h *ReportHandler) ListArchive(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		middleware.ErrorResponse(w, http.StatusServiceUnavailable, "Report archive is disabled")
		return
	}

	prefix := "reports/"
	if kind := r.URL.Query().Get("kind"); kind != "" {
		if !report.IsKind(kind) {
			middleware.ErrorResponse(w, http.StatusBadRequest, "Unknown report: "+kind)
			return
		}
		prefix += kind + "/"
	}

	infos, err := h.store.List(r.Context(), prefix)
	if err != nil {
		slog.Error("failed to list archive", "error", err)
		middleware.ErrorResponse(w, http.StatusBadGateway, "Failed to list archive")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, infos)
}

// FetchArchived handles GET /reports/archive/{kind}/{file}
func (h *ReportHandler) FetchArchived(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		middleware.ErrorResponse(w, http.StatusServiceUnavailable, "Report archive is disabled")
		return
	}

	kind, file := r.PathValue("kind"), r.PathValue("file")
	if !report.IsKind(kind) || strings.Contains(file, "..") {
		middleware.ErrorResponse(w, http.StatusNotFound, "Report not found")
		return
	}

	info, rc, err := h.store.Get(r.Context(), archive.ReportKey(kind, file))
	if errors.Is(err, archive.ErrNotFound) || errors.Is(err, archive.ErrInvalidKey) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Report not found")
		return
	}
	if err != nil {
		slog.Error("failed to fetch archived report", "error", err)
		middleware.ErrorResponse(w, http.StatusBadGateway, "Failed to fetch report")
		return
	}
	defer rc.Close()

	contentType := info.ContentType
	if contentType == "" {
		contentType = htmlContentType
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		slog.Error("failed to stream archived report", "error", err)
	}
}
