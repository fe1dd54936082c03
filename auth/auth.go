// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/danielhkuo/stockroom/models"
)

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid token")
)

// GenerateID creates a random UUID for a database row
func GenerateID() string {
	return uuid.NewString()
}

// GenerateStaffKey creates an HMAC-based key for a profile
// This is deterministic and verifiable, so it is never stored
func GenerateStaffKey(profileID, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(profileID))
	sum := h.Sum(nil)
	// Use URL-safe base64 and trim padding for cleaner keys
	return strings.TrimRight(base64.URLEncoding.EncodeToString(sum), "=")
}

// StaffToken is the bearer token handed to a profile: "<profile_id>.<key>"
func StaffToken(profileID, salt string) string {
	return profileID + "." + GenerateStaffKey(profileID, salt)
}

// ParseStaffToken verifies a token and returns the profile ID it belongs to
func ParseStaffToken(token, salt string) (string, error) {
	// UUIDs contain no dots, so the last dot separates the key
	i := strings.LastIndex(token, ".")
	if i <= 0 || i == len(token)-1 {
		return "", ErrInvalidToken
	}
	profileID, key := token[:i], token[i+1:]
	if _, err := uuid.Parse(profileID); err != nil {
		return "", ErrInvalidToken
	}

	expected := GenerateStaffKey(profileID, salt)
	if !hmac.Equal([]byte(key), []byte(expected)) {
		return "", ErrInvalidToken
	}
	return profileID, nil
}

// BearerToken extracts the token from an Authorization header value
func BearerToken(header string) (string, error) {
	const prefix = "Bearer "
	if header == "" {
		return "", ErrMissingToken
	}
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", ErrInvalidToken
	}
	return strings.TrimSpace(header[len(prefix):]), nil
}

func rank(role string) int {
	switch role {
	case models.RoleAdmin:
		return 3
	case models.RoleManager:
		return 2
	case models.RoleEmployee:
		return 1
	}
	return 0
}

// HasRole reports whether role is at least min
func HasRole(role, min string) bool {
	r := rank(role)
	return r > 0 && r >= rank(min)
}
