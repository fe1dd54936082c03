// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"testing"
	"time"

	"github.com/danielhkuo/stockroom/feed"
)

func newTestBroker(t *testing.T) *feed.Broker {
	t.Helper()
	b := feed.NewBroker(64)
	t.Cleanup(b.Close)
	return b
}

// drain collects the changes already buffered on ch
func drain(ch <-chan feed.Change) []feed.Change {
	var out []feed.Change
	for {
		select {
		case c := <-ch:
			out = append(out, c)
		case <-time.After(50 * time.Millisecond):
			return out
		}
	}
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func boolPtr(v bool) *bool { return &v }

func timePtr(v time.Time) *time.Time { return &v }
