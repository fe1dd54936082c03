// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the stockroom API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(db, cfg, router.Deps{Feed: broker, Metrics: m, Archive: store})

Zero-valued Deps fields get defaults. A nil Archive leaves the archive
routes answering 503.

# Endpoints

Public:

	GET /health
	GET /metrics

Any active staff member (employee and up):

	GET  /me
	GET  /items, /items/low-stock, /items/{id}
	GET  /transactions
	POST /transactions
	GET  /employees
	GET  /production
	POST /production
	GET  /dashboard
	GET  /events

Manager and up:

	POST  /items
	PATCH /items/{id}
	POST  /employees
	GET   /payroll, /assets
	GET   /reports/{kind}
	POST  /reports/{kind}/archive
	GET   /reports/archive, /reports/archive/{kind}/{file}

Admin:

	DELETE /items/{id}, /employees/{id}
	GET    /profiles
	POST   /profiles
	PATCH  /profiles/{id}
	POST   /demo/seed, /demo/clear

Every route except /health and /metrics is wrapped with request logging and
per-route metrics.
*/
package router
