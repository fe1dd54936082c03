// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/danielhkuo/stockroom/archive"
	"github.com/danielhkuo/stockroom/cliparse"
	"github.com/danielhkuo/stockroom/feed"
	"github.com/danielhkuo/stockroom/handlers"
	"github.com/danielhkuo/stockroom/metrics"
	"github.com/danielhkuo/stockroom/middleware"
	"github.com/danielhkuo/stockroom/models"
	"github.com/danielhkuo/stockroom/payroll"
)

// Deps are the long-lived services shared by the handlers.
// Zero values get working defaults; a nil Archive disables archiving.
type Deps struct {
	Feed    *feed.Broker
	Metrics *metrics.Metrics
	Archive archive.Store
	Rates   payroll.Rates
}

func NewRouter(db *sql.DB, cfg cliparse.Config, deps Deps) *http.ServeMux {
	if deps.Feed == nil {
		deps.Feed = feed.NewBroker(0)
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.New()
		deps.Metrics.TrackFeedDrops(deps.Feed.Dropped)
	}
	if deps.Rates == nil {
		deps.Rates = payroll.DefaultRates()
	}

	mux := http.NewServeMux()

	// Initialize handlers
	authn := handlers.NewAuthenticator(db, cfg)
	itemHandler := handlers.NewItemHandler(db, cfg, deps.Feed)
	transactionHandler := handlers.NewTransactionHandler(db, cfg, deps.Feed, deps.Metrics)
	employeeHandler := handlers.NewEmployeeHandler(db, cfg, deps.Feed)
	productionHandler := handlers.NewProductionHandler(db, cfg, deps.Feed, deps.Metrics)
	summaryHandler := handlers.NewSummaryHandler(db, cfg, deps.Rates)
	reportHandler := handlers.NewReportHandler(db, cfg, deps.Rates, deps.Archive)
	eventHandler := handlers.NewEventHandler(deps.Feed)
	profileHandler := handlers.NewProfileHandler(db, cfg, deps.Feed)
	demoHandler := handlers.NewDemoHandler(db, cfg, deps.Feed)

	route := func(pattern string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, middleware.WithLogging(middleware.WithMetrics(deps.Metrics, pattern, h)))
	}
	employee := func(h http.HandlerFunc) http.HandlerFunc { return authn.Require(models.RoleEmployee, h) }
	manager := func(h http.HandlerFunc) http.HandlerFunc { return authn.Require(models.RoleManager, h) }
	admin := func(h http.HandlerFunc) http.HandlerFunc { return authn.Require(models.RoleAdmin, h) }

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.Handle("GET /metrics", deps.Metrics.Handler())

	route("GET /me", employee(profileHandler.Me))

	// Stock items
	route("GET /items", employee(itemHandler.ListItems))
	route("GET /items/low-stock", employee(itemHandler.LowStock))
	route("GET /items/{id}", employee(itemHandler.GetItem))
	route("POST /items", manager(itemHandler.CreateItem))
	route("PATCH /items/{id}", manager(itemHandler.UpdateItem))
	route("DELETE /items/{id}", admin(itemHandler.DeleteItem))

	// Stock movements
	route("GET /transactions", employee(transactionHandler.ListTransactions))
	route("POST /transactions", employee(transactionHandler.CreateTransaction))

	// Employees and production output
	route("GET /employees", employee(employeeHandler.ListEmployees))
	route("POST /employees", manager(employeeHandler.CreateEmployee))
	route("DELETE /employees/{id}", admin(employeeHandler.DeleteEmployee))
	route("GET /production", employee(productionHandler.ListProduction))
	route("POST /production", employee(productionHandler.CreateProduction))

	// Computed views
	route("GET /payroll", manager(summaryHandler.Payroll))
	route("GET /assets", manager(summaryHandler.Assets))
	route("GET /dashboard", employee(summaryHandler.Dashboard))

	// Exports
	route("GET /reports/{kind}", manager(reportHandler.Export))
	route("POST /reports/{kind}/archive", manager(reportHandler.Archive))
	route("GET /reports/archive", manager(reportHandler.ListArchive))
	route("GET /reports/archive/{kind}/{file}", manager(reportHandler.FetchArchived))

	// Change feed
	route("GET /events", employee(eventHandler.Stream))

	// Staff administration
	route("GET /profiles", admin(profileHandler.ListProfiles))
	route("POST /profiles", admin(profileHandler.CreateProfile))
	route("PATCH /profiles/{id}", admin(profileHandler.UpdateProfile))

	// Demo data
	route("POST /demo/seed", admin(demoHandler.Seed))
	route("POST /demo/clear", admin(demoHandler.Clear))

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("stockroom API v1"))
	})

	return mux
}
