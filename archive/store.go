// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"
)

// Drivers
const (
	DriverNone   = "none"
	DriverFS     = "fs"
	DriverS3     = "s3"
	DriverMemory = "memory"
)

var (
	ErrExists     = errors.New("archive: object already exists")
	ErrNotFound   = errors.New("archive: object not found")
	ErrInvalidKey = errors.New("archive: invalid key")
)

// Info describes a stored report
type Info struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size_bytes"`
	SizeHuman    string    `json:"size"`
	ContentType  string    `json:"content_type,omitempty"`
	LastModified time.Time `json:"last_modified"`
}

// Store keeps exported reports. Put never overwrites.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) (Info, error)
	Get(ctx context.Context, key string) (Info, io.ReadCloser, error)
	List(ctx context.Context, prefix string) ([]Info, error)
	Driver() string
}

// Config selects and configures a driver
type Config struct {
	Driver      string
	Dir         string
	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3PathStyle bool
}

// Open builds the store named by cfg.Driver. DriverNone (or empty) returns a nil Store.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Driver {
	case "", DriverNone:
		return nil, nil
	case DriverFS:
		fs, err := NewFilesystem(cfg.Dir)
		if err != nil {
			return nil, err
		}
		return fs, nil
	case DriverMemory:
		return NewMemory(), nil
	case DriverS3:
		s, err := NewS3(ctx, S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			PathStyle: cfg.S3PathStyle,
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown archive driver %q", cfg.Driver)
	}
}

// ReportKey builds reports/<kind>/<filename>
func ReportKey(kind, filename string) string {
	return path.Join("reports", kind, filename)
}

// cleanKey rejects keys that could escape the store root
func cleanKey(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") {
		return "", ErrInvalidKey
	}
	c := path.Clean(key)
	if c == "." || c == ".." || strings.HasPrefix(c, "../") {
		return "", ErrInvalidKey
	}
	return c, nil
}
