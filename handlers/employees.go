// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielhkuo/stockroom/auth"
	"github.com/danielhkuo/stockroom/cliparse"
	"github.com/danielhkuo/stockroom/feed"
	"github.com/danielhkuo/stockroom/middleware"
	"github.com/danielhkuo/stockroom/models"
)

type EmployeeHandler struct {
	db   *sql.DB
	cfg  cliparse.Config
	feed *feed.Broker
}

func NewEmployeeHandler(db *sql.DB, cfg cliparse.Config, broker *feed.Broker) *EmployeeHandler {
	return &EmployeeHandler{db: db, cfg: cfg, feed: broker}
}

// ListEmployees handles GET /employees
func (h *EmployeeHandler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := loadEmployees(r.Context(), h.db)
	if err != nil {
		slog.Error("failed to load employees", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	byDivision := make(map[string]int, len(models.Divisions))
	for _, d := range models.Divisions {
		byDivision[d] = 0
	}
	for _, e := range employees {
		byDivision[e.Division]++
	}

	middleware.JSONResponse(w, http.StatusOK, models.EmployeeListResponse{
		Employees:  employees,
		ByDivision: byDivision,
	})
}

// CreateEmployee handles POST /employees
func (h *EmployeeHandler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req models.CreateEmployeeRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "name is required")
		return
	}
	if !models.IsDivision(req.Division) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "division must be one of "+strings.Join(models.Divisions, ", "))
		return
	}

	id := auth.GenerateID()
	_, err := h.db.ExecContext(r.Context(), `
		INSERT INTO karyawan (id, nama, divisi, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
	`, id, name, req.Division, now())
	if err != nil {
		slog.Error("failed to insert employee", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create employee")
		return
	}

	slog.Info("employee created", "employee_id", id, "division", req.Division)
	h.feed.Publish(feed.Change{Table: feed.TableEmployees, Op: feed.OpInsert, ID: id})

	middleware.JSONResponse(w, http.StatusCreated, models.CreatedResponse{ID: id})
}

// DeleteEmployee handles DELETE /employees/{id}
func (h *EmployeeHandler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	tx, err := h.db.BeginTx(r.Context(), nil)
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	n, err := countRefs(r.Context(), tx, "produksi", "karyawan_id", id)
	if err != nil {
		slog.Error("failed to count production references", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if n > 0 {
		middleware.ErrorResponse(w, http.StatusConflict, "Employee has production records")
		return
	}

	res, err := tx.ExecContext(r.Context(), `DELETE FROM karyawan WHERE id = $1`, id)
	if err != nil {
		slog.Error("failed to delete employee", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete employee")
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "Employee not found")
		return
	}
	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit employee delete", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete employee")
		return
	}

	slog.Info("employee deleted", "employee_id", id)
	h.feed.Publish(feed.Change{Table: feed.TableEmployees, Op: feed.OpDelete, ID: id})

	w.WriteHeader(http.StatusNoContent)
}
