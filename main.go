package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/danielhkuo/stockroom/archive"
	"github.com/danielhkuo/stockroom/cliparse"
	"github.com/danielhkuo/stockroom/db"
	"github.com/danielhkuo/stockroom/feed"
	"github.com/danielhkuo/stockroom/handlers"
	"github.com/danielhkuo/stockroom/metrics"
	"github.com/danielhkuo/stockroom/middleware"
	"github.com/danielhkuo/stockroom/payroll"
	"github.com/danielhkuo/stockroom/router"
)

const shutdownTimeout = 10 * time.Second

func newLogger(format, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q", level)
	}
	opts := &slog.HandlerOptions{Level: lvl}

	switch strings.ToLower(format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(os.Stderr, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(os.Stderr, opts)), nil
	}
	return nil, fmt.Errorf("invalid log format %q", format)
}

func main() {
	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.LogFormat, cfg.LogLevel)
	if err != nil {
		slog.Error("Error configuring logger", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(logger)

	if err := run(cfg); err != nil {
		slog.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg cliparse.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbConn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer dbConn.Close()

	// Create schema (tables)
	if err := db.CreateSchema(dbConn); err != nil {
		return fmt.Errorf("schema creation failed: %w", err)
	}
	slog.Info("Database schema ready", "type", cfg.DatabaseType)

	rates, err := payroll.LoadRates(cfg.PayrollRates)
	if err != nil {
		return err
	}

	store, err := archive.Open(ctx, archive.Config{
		Driver:      cfg.ArchiveDriver,
		Dir:         cfg.ArchiveDir,
		S3Bucket:    cfg.ArchiveS3Bucket,
		S3Region:    cfg.ArchiveS3Region,
		S3Endpoint:  cfg.ArchiveS3Endpoint,
		S3PathStyle: cfg.ArchiveS3PathStyle,
	})
	if err != nil {
		return fmt.Errorf("report archive: %w", err)
	}
	if store != nil {
		slog.Info("Report archive enabled", "driver", store.Driver())
	}

	if cfg.BootstrapAdmin != "" {
		token, err := handlers.BootstrapAdmin(ctx, dbConn, cfg, cfg.BootstrapAdmin)
		if err != nil {
			return fmt.Errorf("bootstrap admin: %w", err)
		}
		slog.Info("Admin profile ready", "email", cfg.BootstrapAdmin)
		fmt.Fprintf(os.Stdout, "Admin token: %s\n", token)
	}

	broker := feed.NewBroker(0)
	defer broker.Close()

	m := metrics.New()
	m.TrackFeedDrops(broker.Dropped)

	mux := router.NewRouter(dbConn, cfg, router.Deps{
		Feed:    broker,
		Metrics: m,
		Archive: store,
		Rates:   rates,
	})

	server := &http.Server{
		Handler:           middleware.CORS(cfg.CORSOrigin)(mux),
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("Listening", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutting down")

		// End open event streams so Shutdown does not wait on them
		broker.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	slog.Info("Server closed", "error", err)
	return err
}
