// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/danielhkuo/stockroom/feed"
	"github.com/danielhkuo/stockroom/middleware"
)

const pingInterval = 15 * time.Second

var feedTables = map[string]bool{
	feed.TableItems:        true,
	feed.TableTransactions: true,
	feed.TableEmployees:    true,
	feed.TableProduction:   true,
	feed.TableProfiles:     true,
}

type EventHandler struct {
	feed *feed.Broker
	ping time.Duration
}

func NewEventHandler(broker *feed.Broker) *EventHandler {
	return &EventHandler{feed: broker, ping: pingInterval}
}

// Stream handles GET /events?tables=barang,transaksi as Server-Sent Events.
// Clients re-fetch the named table when a change arrives.
func (h *EventHandler) Stream(w http.ResponseWriter, r *http.Request) {
	var tables []string
	if v := r.URL.Query().Get("tables"); v != "" {
		for _, t := range strings.Split(v, ",") {
			t = strings.TrimSpace(t)
			if !feedTables[t] {
				middleware.ErrorResponse(w, http.StatusBadRequest, "Unknown table: "+t)
				return
			}
			tables = append(tables, t)
		}
	}

	rc := http.NewResponseController(w)
	// Streams outlive the server's write timeout
	_ = rc.SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, ": connected\n\n")
	if err := rc.Flush(); err != nil {
		slog.Error("event stream not flushable", "error", err)
		return
	}

	changes := h.feed.Subscribe(r.Context(), tables...)
	ticker := time.NewTicker(h.ping)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case c, ok := <-changes:
			if !ok {
				return
			}
			data, err := json.Marshal(c)
			if err != nil {
				slog.Error("failed to encode change", "error", err)
				continue
			}
			fmt.Fprintf(w, "event: change\ndata: %s\n\n", data)
		case <-ticker.C:
			fmt.Fprint(w, ": ping\n\n")
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}
