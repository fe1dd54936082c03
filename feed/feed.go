// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package feed

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Change operations
const (
	OpInsert = "insert"
	OpUpdate = "update"
	OpDelete = "delete"
)

// Table names carried on changes
const (
	TableItems        = "barang"
	TableTransactions = "transaksi"
	TableEmployees    = "karyawan"
	TableProduction   = "produksi"
	TableProfiles     = "profiles"
)

const defaultBuffer = 64

// Change notifies subscribers that a row was written
type Change struct {
	Table string    `json:"table"`
	Op    string    `json:"op"`
	ID    string    `json:"id"`
	At    time.Time `json:"at"`
}

type subscriber struct {
	ch     chan Change
	tables map[string]bool
}

func (s *subscriber) wants(table string) bool {
	return len(s.tables) == 0 || s.tables[table]
}

// Broker fans out changes to subscribers. Publish never blocks: a subscriber
// whose buffer is full misses the change and should re-fetch.
type Broker struct {
	mu      sync.Mutex
	subs    map[*subscriber]struct{}
	buffer  int
	closed  bool
	done    chan struct{}
	dropped atomic.Uint64
}

func NewBroker(buffer int) *Broker {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	return &Broker{
		subs:   make(map[*subscriber]struct{}),
		buffer: buffer,
		done:   make(chan struct{}),
	}
}

// Subscribe returns a channel of changes for the given tables (all tables if none).
// The channel is closed when ctx is done or the broker is closed.
func (b *Broker) Subscribe(ctx context.Context, tables ...string) <-chan Change {
	sub := &subscriber{ch: make(chan Change, b.buffer), tables: make(map[string]bool, len(tables))}
	for _, t := range tables {
		if t != "" {
			sub.tables[t] = true
		}
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(sub.ch)
		return sub.ch
	}
	b.subs[sub] = struct{}{}
	b.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
			b.remove(sub)
		case <-b.done:
		}
	}()

	return sub.ch
}

func (b *Broker) remove(sub *subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[sub]; ok {
		delete(b.subs, sub)
		close(sub.ch)
	}
}

// Publish delivers c to every interested subscriber
func (b *Broker) Publish(c Change) {
	if c.At.IsZero() {
		c.At = time.Now().UTC()
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for sub := range b.subs {
		if !sub.wants(c.Table) {
			continue
		}
		select {
		case sub.ch <- c:
		default:
			b.dropped.Add(1)
		}
	}
}

// Subscribers returns the number of live subscriptions
func (b *Broker) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Dropped returns how many deliveries were skipped because a buffer was full
func (b *Broker) Dropped() uint64 {
	return b.dropped.Load()
}

// Close ends every subscription. Later Subscribe calls get a closed channel.
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	close(b.done)
	for sub := range b.subs {
		delete(b.subs, sub)
		close(sub.ch)
	}
}
