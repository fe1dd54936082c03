// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

func newInfo(key string, size int64, contentType string, modified time.Time) Info {
	return Info{
		Key:          key,
		Size:         size,
		SizeHuman:    humanize.Bytes(uint64(size)),
		ContentType:  contentType,
		LastModified: modified.UTC(),
	}
}

// Filesystem stores objects as files below root
type Filesystem struct {
	root string
}

func NewFilesystem(root string) (*Filesystem, error) {
	if root == "" {
		return nil, errors.New("archive directory required")
	}
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("create archive dir: %w", err)
	}
	return &Filesystem{root: root}, nil
}

func (f *Filesystem) Driver() string { return DriverFS }

func (f *Filesystem) path(key string) (string, error) {
	k, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	return filepath.Join(f.root, filepath.FromSlash(k)), nil
}

func (f *Filesystem) Put(ctx context.Context, key string, r io.Reader, contentType string) (Info, error) {
	p, err := f.path(key)
	if err != nil {
		return Info{}, err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o750); err != nil {
		return Info{}, fmt.Errorf("create archive dir: %w", err)
	}

	file, err := os.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
	if errors.Is(err, fs.ErrExist) {
		return Info{}, ErrExists
	}
	if err != nil {
		return Info{}, fmt.Errorf("create %s: %w", key, err)
	}

	n, err := io.Copy(file, r)
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(p)
		return Info{}, fmt.Errorf("write %s: %w", key, err)
	}

	st, err := os.Stat(p)
	if err != nil {
		return Info{}, err
	}
	if contentType == "" {
		contentType = mime.TypeByExtension(filepath.Ext(p))
	}
	return newInfo(key, n, contentType, st.ModTime()), nil
}

func (f *Filesystem) Get(ctx context.Context, key string) (Info, io.ReadCloser, error) {
	p, err := f.path(key)
	if err != nil {
		return Info{}, nil, err
	}
	file, err := os.Open(p)
	if errors.Is(err, fs.ErrNotExist) {
		return Info{}, nil, ErrNotFound
	}
	if err != nil {
		return Info{}, nil, err
	}
	st, err := file.Stat()
	if err != nil {
		file.Close()
		return Info{}, nil, err
	}
	return newInfo(key, st.Size(), mime.TypeByExtension(filepath.Ext(p)), st.ModTime()), file, nil
}

func (f *Filesystem) List(ctx context.Context, prefix string) ([]Info, error) {
	infos := []Info{}
	err := filepath.WalkDir(f.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(f.root, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if !strings.HasPrefix(key, prefix) {
			return nil
		}
		st, err := d.Info()
		if err != nil {
			return err
		}
		infos = append(infos, newInfo(key, st.Size(), mime.TypeByExtension(filepath.Ext(p)), st.ModTime()))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list archive: %w", err)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })
	return infos, nil
}
