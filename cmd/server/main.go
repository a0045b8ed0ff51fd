/*
main.go - Application entry point

PURPOSE:
  Starts the equity valuation HTTP API. Handles configuration, dependency
  injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Load config (YAML, .env, environment, defaults)
  3. Configure slog
  4. Initialize SQLite store for company profiles
  5. Build tax engine and handler
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -config  Path to YAML config (optional)
  -port    HTTP server port (overrides config)
  -db      SQLite database path (overrides config)
           Use ":memory:" for an in-memory database

ENVIRONMENT:
  PORT, DATABASE_PATH, LOG_LEVEL, LOG_FORMAT (see config/config.go)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (server.shutdown_seconds)
  3. Close database connection
  4. Exit

EXAMPLES:
  ./server -config=config.yaml
  ./server -db=":memory:" -port=3000

SEE ALSO:
  - api/server.go: Router configuration
  - config/config.go: Settings
  - store/sqlite/sqlite.go: Company profile storage
*/
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/warp/equity-engine/api"
	"github.com/warp/equity-engine/config"
	"github.com/warp/equity-engine/schedule"
	"github.com/warp/equity-engine/store/sqlite"
	"github.com/warp/equity-engine/tax"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file")
	port := flag.Int("port", 0, "HTTP server port (overrides config)")
	dbPath := flag.String("db", "", "SQLite database path (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *dbPath != "" {
		cfg.Storage.DSN = *dbPath
	}

	logger := config.NewLogger(cfg.Log, os.Stdout)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped with error", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	store, err := sqlite.New(cfg.Storage.DSN)
	if err != nil {
		return err
	}
	defer store.Close()

	rates, err := cfg.TaxRates()
	if err != nil {
		return err
	}
	engine, err := tax.NewEngine(rates)
	if err != nil {
		return err
	}

	handler := api.NewHandler(store, schedule.NewBuilder(engine), logger)
	router := api.NewRouter(handler, api.RouterOptions{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		RateLimitRPS:   cfg.RateLimit.RequestsPerSecond,
		RateLimitBurst: cfg.RateLimit.Burst,
	})

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout(),
		WriteTimeout: cfg.WriteTimeout(),
		IdleTimeout:  cfg.IdleTimeout(),
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			"addr", server.Addr,
			"db", cfg.Storage.DSN,
			"rate_limit_rps", cfg.RateLimit.RequestsPerSecond,
			"capital_gains_rate", rates.CapitalGainsRate.String(),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errc:
		return err
	case sig := <-quit:
		logger.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return err
	}

	logger.Info("server stopped")
	return nil
}
