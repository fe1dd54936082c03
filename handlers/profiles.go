// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielhkuo/stockroom/auth"
	"github.com/danielhkuo/stockroom/cliparse"
	"github.com/danielhkuo/stockroom/feed"
	"github.com/danielhkuo/stockroom/middleware"
	"github.com/danielhkuo/stockroom/models"
)

var errEmailTaken = errors.New("email already registered")

type ProfileHandler struct {
	db   *sql.DB
	cfg  cliparse.Config
	feed *feed.Broker
}

func NewProfileHandler(db *sql.DB, cfg cliparse.Config, broker *feed.Broker) *ProfileHandler {
	return &ProfileHandler{db: db, cfg: cfg, feed: broker}
}

func insertProfile(ctx context.Context, q querier, email, fullName, role, division string) (string, error) {
	var n int
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM profiles WHERE email = $1`, email).Scan(&n); err != nil {
		return "", fmt.Errorf("check email: %w", err)
	}
	if n > 0 {
		return "", errEmailTaken
	}

	id := auth.GenerateID()
	_, err := q.ExecContext(ctx, `
		INSERT INTO profiles (id, email, full_name, role, divisi, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
	`, id, email, nullable(fullName), role, nullable(division), true, now())
	if err != nil {
		return "", fmt.Errorf("insert profile: %w", err)
	}
	return id, nil
}

// BootstrapAdmin makes sure an active admin profile exists for email and
// returns its bearer token
func BootstrapAdmin(ctx context.Context, db *sql.DB, cfg cliparse.Config, email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !strings.Contains(email, "@") {
		return "", fmt.Errorf("invalid admin email %q", email)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	var id string
	err = tx.QueryRowContext(ctx, `SELECT id FROM profiles WHERE email = $1`, email).Scan(&id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		id, err = insertProfile(ctx, tx, email, "", models.RoleAdmin, "")
		if err != nil {
			return "", err
		}
	case err != nil:
		return "", fmt.Errorf("look up profile: %w", err)
	default:
		_, err = tx.ExecContext(ctx, `
			UPDATE profiles SET role = $1, is_active = $2, updated_at = $3 WHERE id = $4
		`, models.RoleAdmin, true, now(), id)
		if err != nil {
			return "", fmt.Errorf("promote profile: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return auth.StaffToken(id, cfg.StaffKeySalt), nil
}

// Me handles GET /me
func (h *ProfileHandler) Me(w http.ResponseWriter, r *http.Request) {
	profile, ok := ProfileFromContext(r.Context())
	if !ok {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, profile)
}

// ListProfiles handles GET /profiles
func (h *ProfileHandler) ListProfiles(w http.ResponseWriter, r *http.Request) {
	rows, err := h.db.QueryContext(r.Context(), `SELECT `+profileColumns+` FROM profiles ORDER BY email`)
	if err != nil {
		slog.Error("failed to query profiles", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	profiles := []models.Profile{}
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			slog.Error("failed to scan profile", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		slog.Error("failed to iterate profiles", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, profiles)
}

// CreateProfile handles POST /profiles
func (h *ProfileHandler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	var req models.CreateProfileRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !strings.Contains(email, "@") {
		middleware.ErrorResponse(w, http.StatusBadRequest, "valid email is required")
		return
	}
	if req.Role == "" {
		req.Role = models.RoleEmployee
	}
	if !models.IsRole(req.Role) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "role must be admin, manager or employee")
		return
	}
	if req.Division != "" && !models.IsDivision(req.Division) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "unknown division")
		return
	}

	tx, err := h.db.BeginTx(r.Context(), nil)
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	id, err := insertProfile(r.Context(), tx, email, strings.TrimSpace(req.FullName), req.Role, req.Division)
	if errors.Is(err, errEmailTaken) {
		middleware.ErrorResponse(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		slog.Error("failed to create profile", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create profile")
		return
	}
	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit profile", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create profile")
		return
	}

	slog.Info("profile created", "profile_id", id, "role", req.Role)
	h.feed.Publish(feed.Change{Table: feed.TableProfiles, Op: feed.OpInsert, ID: id})

	middleware.JSONResponse(w, http.StatusCreated, models.CreateProfileResponse{
		ProfileID: id,
		Token:     auth.StaffToken(id, h.cfg.StaffKeySalt),
	})
}

// UpdateProfile handles PATCH /profiles/{id}
func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req models.UpdateProfileRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Role != nil && !models.IsRole(*req.Role) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "role must be admin, manager or employee")
		return
	}
	if req.Division != nil && *req.Division != "" && !models.IsDivision(*req.Division) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "unknown division")
		return
	}

	// An admin cannot lock themselves out
	if caller, ok := ProfileFromContext(r.Context()); ok && caller.ID == id {
		if (req.Role != nil && *req.Role != models.RoleAdmin) || (req.IsActive != nil && !*req.IsActive) {
			middleware.ErrorResponse(w, http.StatusConflict, "Cannot demote or deactivate your own profile")
			return
		}
	}

	tx, err := h.db.BeginTx(r.Context(), nil)
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	p, err := loadProfile(r.Context(), tx, id)
	if errors.Is(err, sql.ErrNoRows) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Profile not found")
		return
	}
	if err != nil {
		slog.Error("failed to load profile", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if req.FullName != nil {
		p.FullName = nullable(strings.TrimSpace(*req.FullName))
	}
	if req.Role != nil {
		p.Role = *req.Role
	}
	if req.Division != nil {
		p.Division = nullable(*req.Division)
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}
	p.UpdatedAt = now()

	_, err = tx.ExecContext(r.Context(), `
		UPDATE profiles SET full_name = $1, role = $2, divisi = $3, is_active = $4, updated_at = $5
		WHERE id = $6
	`, p.FullName, p.Role, p.Division, p.IsActive, p.UpdatedAt, id)
	if err != nil {
		slog.Error("failed to update profile", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update profile")
		return
	}
	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit profile update", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update profile")
		return
	}

	slog.Info("profile updated", "profile_id", id, "role", p.Role, "active", p.IsActive)
	h.feed.Publish(feed.Change{Table: feed.TableProfiles, Op: feed.OpUpdate, ID: id})

	middleware.JSONResponse(w, http.StatusOK, p)
}
