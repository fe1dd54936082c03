// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package archive

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"
)

type memObject struct {
	data        []byte
	contentType string
	modified    time.Time
}

// Memory keeps objects in a map
type Memory struct {
	mu      sync.RWMutex
	objects map[string]memObject
}

func NewMemory() *Memory {
	return &Memory{objects: make(map[string]memObject)}
}

func (m *Memory) Driver() string { return DriverMemory }

func (m *Memory) Put(ctx context.Context, key string, r io.Reader, contentType string) (Info, error) {
	k, err := cleanKey(key)
	if err != nil {
		return Info{}, err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return Info{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[k]; ok {
		return Info{}, ErrExists
	}
	obj := memObject{data: data, contentType: contentType, modified: time.Now()}
	m.objects[k] = obj
	return newInfo(k, int64(len(data)), contentType, obj.modified), nil
}

func (m *Memory) Get(ctx context.Context, key string) (Info, io.ReadCloser, error) {
	k, err := cleanKey(key)
	if err != nil {
		return Info{}, nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[k]
	if !ok {
		return Info{}, nil, ErrNotFound
	}
	info := newInfo(k, int64(len(obj.data)), obj.contentType, obj.modified)
	return info, io.NopCloser(bytes.NewReader(obj.data)), nil
}

func (m *Memory) List(ctx context.Context, prefix string) ([]Info, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	infos := []Info{}
	for k, obj := range m.objects {
		if strings.HasPrefix(k, prefix) {
			infos = append(infos, newInfo(k, int64(len(obj.data)), obj.contentType, obj.modified))
		}
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })
	return infos, nil
}
