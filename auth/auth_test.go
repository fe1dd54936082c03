// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/danielhkuo/stockroom/models"
)

func TestGenerateID(t *testing.T) {
	id := GenerateID()
	if _, err := uuid.Parse(id); err != nil {
		t.Errorf("GenerateID() returned invalid uuid %q: %v", id, err)
	}

	// Test randomness - two IDs should be different
	if GenerateID() == GenerateID() {
		t.Error("GenerateID() produced duplicate IDs (extremely unlikely)")
	}
}

func TestGenerateStaffKey(t *testing.T) {
	tests := []struct {
		name      string
		profileID string
		salt      string
	}{
		{"standard", "3f1c7a52-9a51-4a43-9a1e-0f4c2b6d8e11", "secret-salt"},
		{"empty profile id", "", "salt"},
		{"empty salt", "3f1c7a52-9a51-4a43-9a1e-0f4c2b6d8e11", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := GenerateStaffKey(tt.profileID, tt.salt)

			if key == "" {
				t.Error("GenerateStaffKey() returned empty string")
			}

			// Should be deterministic
			if key != GenerateStaffKey(tt.profileID, tt.salt) {
				t.Error("GenerateStaffKey() is not deterministic")
			}

			if tt.profileID != "" && tt.salt != "" {
				if key == GenerateStaffKey(tt.profileID+"x", tt.salt) {
					t.Error("GenerateStaffKey() produced same key for different profiles")
				}
			}

			// Should be URL-safe (no padding)
			if strings.ContainsAny(key, "=+/") {
				t.Errorf("GenerateStaffKey() is not URL-safe: %s", key)
			}
		})
	}
}

func TestParseStaffToken(t *testing.T) {
	profileID := GenerateID()
	salt := "test-salt"
	valid := StaffToken(profileID, salt)

	tests := []struct {
		name    string
		token   string
		salt    string
		wantErr bool
	}{
		{"valid token", valid, salt, false},
		{"wrong salt", valid, "different-salt", true},
		{"wrong profile", GenerateID() + "." + GenerateStaffKey(profileID, salt), salt, true},
		{"no separator", profileID, salt, true},
		{"empty key", profileID + ".", salt, true},
		{"empty profile", "." + GenerateStaffKey(profileID, salt), salt, true},
		{"not a uuid", "admin." + GenerateStaffKey("admin", salt), salt, true},
		{"empty token", "", salt, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseStaffToken(tt.token, tt.salt)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseStaffToken() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if err != ErrInvalidToken {
					t.Errorf("ParseStaffToken() error = %v, want %v", err, ErrInvalidToken)
				}
				return
			}
			if got != profileID {
				t.Errorf("ParseStaffToken() = %s, want %s", got, profileID)
			}
		})
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr error
	}{
		{"standard", "Bearer abc.def", "abc.def", nil},
		{"lowercase scheme", "bearer abc.def", "abc.def", nil},
		{"missing", "", "", ErrMissingToken},
		{"basic auth", "Basic dXNlcjpwYXNz", "", ErrInvalidToken},
		{"scheme only", "Bearer ", "", ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BearerToken(tt.header)
			if err != tt.wantErr {
				t.Fatalf("BearerToken() error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("BearerToken() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHasRole(t *testing.T) {
	tests := []struct {
		role string
		min  string
		want bool
	}{
		{models.RoleAdmin, models.RoleAdmin, true},
		{models.RoleAdmin, models.RoleEmployee, true},
		{models.RoleManager, models.RoleEmployee, true},
		{models.RoleManager, models.RoleManager, true},
		{models.RoleManager, models.RoleAdmin, false},
		{models.RoleEmployee, models.RoleManager, false},
		{models.RoleEmployee, models.RoleEmployee, true},
		{"guest", models.RoleEmployee, false},
		{"", models.RoleEmployee, false},
	}

	for _, tt := range tests {
		t.Run(tt.role+">="+tt.min, func(t *testing.T) {
			if got := HasRole(tt.role, tt.min); got != tt.want {
				t.Errorf("HasRole(%q, %q) = %v, want %v", tt.role, tt.min, got, tt.want)
			}
		})
	}
}
