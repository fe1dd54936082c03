// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/danielhkuo/stockroom/cliparse"
	"github.com/danielhkuo/stockroom/inventory"
	"github.com/danielhkuo/stockroom/middleware"
	"github.com/danielhkuo/stockroom/models"
	"github.com/danielhkuo/stockroom/payroll"
)

const recentTransactions = 5

// SummaryHandler serves the computed views: payroll, assets and the dashboard
type SummaryHandler struct {
	db    *sql.DB
	cfg   cliparse.Config
	rates payroll.Rates
}

func NewSummaryHandler(db *sql.DB, cfg cliparse.Config, rates payroll.Rates) *SummaryHandler {
	return &SummaryHandler{db: db, cfg: cfg, rates: rates}
}

// Payroll handles GET /payroll?month=YYYY-MM
func (h *SummaryHandler) Payroll(w http.ResponseWriter, r *http.Request) {
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

	recap, err := payroll.Recap(h.rates, start.Format("2006-01"), rows)
	if errors.Is(err, payroll.ErrUnknownDivision) {
		slog.Error("payroll rate missing", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Payroll rates incomplete")
		return
	}
	if err != nil {
		slog.Error("failed to compute payroll", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to compute payroll")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, recap)
}

// Assets handles GET /assets
func (h *SummaryHandler) Assets(w http.ResponseWriter, r *http.Request) {
	items, err := loadItems(r.Context(), h.db)
	if err != nil {
		slog.Error("failed to load items", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, inventory.Valuate(items))
}

// Dashboard handles GET /dashboard
func (h *SummaryHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	start, end := payroll.Period(now().Year(), now().Month())

	var (
		items      []models.Item
		txns       []models.Transaction
		employees  []models.Employee
		production []models.Production
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() (err error) {
		items, err = loadItems(ctx, h.db)
		return err
	})
	g.Go(func() (err error) {
		txns, err = loadTransactions(ctx, h.db)
		return err
	})
	g.Go(func() (err error) {
		employees, err = loadEmployees(ctx, h.db)
		return err
	})
	g.Go(func() (err error) {
		production, err = loadProduction(ctx, h.db, start, end)
		return err
	})
	if err := g.Wait(); err != nil {
		slog.Error("failed to load dashboard", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if len(txns) > recentTransactions {
		txns = txns[:recentTransactions]
	}
	units := 0
	for _, p := range production {
		units += p.Quantity
	}

	middleware.JSONResponse(w, http.StatusOK, models.DashboardResponse{
		Overview:           inventory.Overview(items),
		RecentTransactions: txns,
		Employees:          len(employees),
		MonthProduction:    units,
	})
}
