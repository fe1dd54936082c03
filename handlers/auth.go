// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/stockroom/auth"
	"github.com/danielhkuo/stockroom/cliparse"
	"github.com/danielhkuo/stockroom/middleware"
	"github.com/danielhkuo/stockroom/models"
)

type profileKey struct{}

// ProfileFromContext returns the authenticated caller set by Authenticator.Require
func ProfileFromContext(ctx context.Context) (models.Profile, bool) {
	p, ok := ctx.Value(profileKey{}).(models.Profile)
	return p, ok
}

type Authenticator struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewAuthenticator(db *sql.DB, cfg cliparse.Config) *Authenticator {
	return &Authenticator{db: db, cfg: cfg}
}

// Require admits callers holding a valid staff token for an active profile
// whose role is at least minRole
func (a *Authenticator) Require(minRole string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, err := auth.BearerToken(r.Header.Get("Authorization"))
		if err != nil {
			middleware.ErrorResponse(w, http.StatusUnauthorized, err.Error())
			return
		}
		profileID, err := auth.ParseStaffToken(token, a.cfg.StaffKeySalt)
		if err != nil {
			middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		profile, err := loadProfile(r.Context(), a.db, profileID)
		if errors.Is(err, sql.ErrNoRows) {
			middleware.ErrorResponse(w, http.StatusUnauthorized, "Unknown profile")
			return
		}
		if err != nil {
			slog.Error("failed to load profile", "error", err, "profile_id", profileID)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		if !profile.IsActive {
			middleware.ErrorResponse(w, http.StatusUnauthorized, "Profile is inactive")
			return
		}
		if !auth.HasRole(profile.Role, minRole) {
			middleware.ErrorResponse(w, http.StatusForbidden, "Requires "+minRole+" role")
			return
		}

		next(w, r.WithContext(context.WithValue(r.Context(), profileKey{}, profile)))
	}
}
