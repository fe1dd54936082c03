// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danielhkuo/stockroom/metrics"
	"github.com/danielhkuo/stockroom/models"
)

func TestWithLogging_PreservesResponse(t *testing.T) {
	testCases := []struct {
		name       string
		statusCode int
		body       string
	}{
		{"OK", http.StatusOK, "ok"},
		{"Created", http.StatusCreated, `{"id":"123"}`},
		{"Conflict", http.StatusConflict, `{"error":"Conflict"}`},
		{"NotFound", http.StatusNotFound, "not found"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			called := false
			handler := WithLogging(func(w http.ResponseWriter, r *http.Request) {
				called = true
				w.WriteHeader(tc.statusCode)
				w.Write([]byte(tc.body))
			})

			w := httptest.NewRecorder()
			handler(w, httptest.NewRequest("POST", "/transactions", nil))

			if !called {
				t.Error("Expected handler to be called")
			}
			if w.Code != tc.statusCode {
				t.Errorf("Expected status %d, got %d", tc.statusCode, w.Code)
			}
			if w.Body.String() != tc.body {
				t.Errorf("Expected body '%s', got '%s'", tc.body, w.Body.String())
			}
		})
	}
}

func TestStatusRecorder(t *testing.T) {
	t.Run("implicit 200 on write", func(t *testing.T) {
		rec := record(httptest.NewRecorder())
		rec.Write([]byte("x"))
		if rec.code() != http.StatusOK {
			t.Errorf("Expected 200, got %d", rec.code())
		}
	})

	t.Run("first status wins", func(t *testing.T) {
		rec := record(httptest.NewRecorder())
		rec.WriteHeader(http.StatusForbidden)
		rec.WriteHeader(http.StatusOK)
		if rec.code() != http.StatusForbidden {
			t.Errorf("Expected 403, got %d", rec.code())
		}
	})

	t.Run("not double wrapped", func(t *testing.T) {
		rec := record(httptest.NewRecorder())
		if record(rec) != rec {
			t.Error("Expected existing recorder to be reused")
		}
	})

	t.Run("flush passes through", func(t *testing.T) {
		inner := httptest.NewRecorder()
		rec := record(inner)
		rec.Flush()
		if !inner.Flushed {
			t.Error("Expected Flush to reach the underlying writer")
		}
	})
}

func TestWithMetrics(t *testing.T) {
	m := metrics.New()
	handler := WithLogging(WithMetrics(m, "GET /items", func(w http.ResponseWriter, r *http.Request) {
		ErrorResponse(w, http.StatusUnauthorized, "missing bearer token")
	}))

	w := httptest.NewRecorder()
	handler(w, httptest.NewRequest("GET", "/items", nil))

	scrape := httptest.NewRecorder()
	m.Handler().ServeHTTP(scrape, httptest.NewRequest("GET", "/metrics", nil))
	want := `stockroom_http_requests_total{code="401",route="GET /items"} 1`
	if !strings.Contains(scrape.Body.String(), want) {
		t.Errorf("Expected %q in exposition", want)
	}
}

func TestJSONResponse(t *testing.T) {
	testCases := []struct {
		name       string
		statusCode int
		data       interface{}
		expected   string
	}{
		{
			name:       "created response",
			statusCode: http.StatusCreated,
			data:       models.CreatedResponse{ID: "abc123"},
			expected:   `{"id":"abc123"}`,
		},
		{
			name:       "transaction response",
			statusCode: http.StatusCreated,
			data:       models.CreateTransactionResponse{TransactionID: "t1", NewStock: 40},
			expected:   `{"transaction_id":"t1","new_stock":40}`,
		},
		{
			name:       "array data",
			statusCode: http.StatusOK,
			data:       []string{"a", "b", "c"},
			expected:   `["a","b","c"]`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			JSONResponse(w, tc.statusCode, tc.data)

			if w.Code != tc.statusCode {
				t.Errorf("Expected status %d, got %d", tc.statusCode, w.Code)
			}
			if ct := w.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Expected Content-Type 'application/json', got '%s'", ct)
			}

			// Trim newline added by Encode
			body := strings.TrimSpace(w.Body.String())
			if body != tc.expected {
				t.Errorf("Expected body '%s', got '%s'", tc.expected, body)
			}
		})
	}
}

func TestErrorResponse(t *testing.T) {
	testCases := []struct {
		statusCode    int
		message       string
		expectedError string
	}{
		{http.StatusBadRequest, "quantity must be positive", "Bad Request"},
		{http.StatusUnauthorized, "invalid token", "Unauthorized"},
		{http.StatusForbidden, "requires manager role", "Forbidden"},
		{http.StatusConflict, "insufficient stock", "Conflict"},
		{http.StatusServiceUnavailable, "report archive disabled", "Service Unavailable"},
	}

	for _, tc := range testCases {
		t.Run(tc.expectedError, func(t *testing.T) {
			w := httptest.NewRecorder()

			ErrorResponse(w, tc.statusCode, tc.message)

			if w.Code != tc.statusCode {
				t.Errorf("Expected status %d, got %d", tc.statusCode, w.Code)
			}

			var resp models.ErrorResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("Failed to decode error response: %v", err)
			}
			if resp.Error != tc.expectedError {
				t.Errorf("Expected error '%s', got '%s'", tc.expectedError, resp.Error)
			}
			if resp.Message != tc.message {
				t.Errorf("Expected message '%s', got '%s'", tc.message, resp.Message)
			}
		})
	}
}

func TestParseJSONBody(t *testing.T) {
	t.Run("valid JSON", func(t *testing.T) {
		body := `{"item_id":"b1","kind":"masuk","quantity":50,"unknown_field":"ignored"}`
		req := httptest.NewRequest("POST", "/", strings.NewReader(body))

		var parsed models.CreateTransactionRequest
		if err := ParseJSONBody(req, &parsed); err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if parsed.ItemID != "b1" || parsed.Kind != models.TxnInbound || parsed.Quantity != 50 {
			t.Errorf("Unexpected parse result %+v", parsed)
		}
		if parsed.Date != nil {
			t.Error("Expected nil date when omitted")
		}
	})

	t.Run("invalid JSON", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/", strings.NewReader(`{invalid json}`))
		var parsed models.CreateTransactionRequest
		if err := ParseJSONBody(req, &parsed); err == nil {
			t.Error("Expected error for invalid JSON")
		}
	})

	t.Run("empty body", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/", strings.NewReader(""))
		var parsed models.CreateTransactionRequest
		if err := ParseJSONBody(req, &parsed); err == nil {
			t.Error("Expected error for empty body")
		}
	})
}

func TestCORS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("handled"))
	})

	t.Run("preflight reflects origin", func(t *testing.T) {
		req := httptest.NewRequest("OPTIONS", "/items", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		w := httptest.NewRecorder()

		CORS("*")(next).ServeHTTP(w, req)

		if w.Code != http.StatusOK || w.Body.String() != "" {
			t.Errorf("Expected empty 200 preflight, got %d %q", w.Code, w.Body.String())
		}
		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
			t.Errorf("Expected reflected origin, got %s", got)
		}
		methods := w.Header().Get("Access-Control-Allow-Methods")
		for _, m := range []string{"GET", "POST", "PATCH", "DELETE"} {
			if !strings.Contains(methods, m) {
				t.Errorf("Expected %s in allowed methods", m)
			}
		}
		if !strings.Contains(w.Header().Get("Access-Control-Allow-Headers"), "Authorization") {
			t.Error("Expected Authorization in allowed headers")
		}
		if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "" {
			t.Errorf("Expected no credentials header for a reflected origin, got %s", got)
		}
	})

	t.Run("configured origin is fixed", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/items", nil)
		req.Header.Set("Origin", "https://evil.example")
		w := httptest.NewRecorder()

		CORS("https://dashboard.example")(next).ServeHTTP(w, req)

		if w.Body.String() != "handled" {
			t.Error("Expected next handler to be called")
		}
		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://dashboard.example" {
			t.Errorf("Expected configured origin, got %s", got)
		}
		if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
			t.Errorf("Expected credentials allowed for configured origin, got %q", got)
		}
	})

	t.Run("no origin defaults to wildcard", func(t *testing.T) {
		w := httptest.NewRecorder()
		CORS("")(next).ServeHTTP(w, httptest.NewRequest("GET", "/items", nil))
		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
			t.Errorf("Expected '*', got %s", got)
		}
	})
}

func TestGetClientIP(t *testing.T) {
	testCases := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		expectedIP string
	}{
		{"forwarded chain", map[string]string{"X-Forwarded-For": "203.0.113.195, 70.41.3.18"}, "127.0.0.1:12345", "203.0.113.195"},
		{"real ip", map[string]string{"X-Real-IP": "203.0.113.50"}, "10.0.0.1:12345", "203.0.113.50"},
		{"forwarded beats real ip", map[string]string{"X-Forwarded-For": "192.168.1.100", "X-Real-IP": "203.0.113.50"}, "10.0.0.1:12345", "192.168.1.100"},
		{"remote with port", nil, "192.168.1.50:54321", "192.168.1.50"},
		{"remote without port", nil, "192.168.1.50", "192.168.1.50"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tc.remoteAddr
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}

			if got := GetClientIP(req); got != tc.expectedIP {
				t.Errorf("Expected IP '%s', got '%s'", tc.expectedIP, got)
			}
		})
	}
}
