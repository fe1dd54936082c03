// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging and Metrics

Wrap handlers with request logging and per-route metrics:

	mux.HandleFunc(pattern, middleware.WithLogging(middleware.WithMetrics(m, pattern, handler)))

Logs request start (method, path, remote) and completion (status, duration_ms).
Both wrappers share one status-recording writer, which still supports
flushing for event streams.

# CORS Middleware

Enable cross-origin requests for frontend access:

	server := http.Server{
		Handler: middleware.CORS(cfg.CORSOrigin)(mux),
	}

Allows methods GET, POST, PATCH, DELETE, OPTIONS with headers
Content-Type and Authorization. "*" reflects the request origin.

# JSON Helpers

Write JSON responses:

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")

Parse JSON request bodies:

	var req models.CreateItemRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

# Client IP Extraction

Get the original client IP (handles X-Forwarded-For, X-Real-IP):

	ip := middleware.GetClientIP(r)
*/
package middleware
