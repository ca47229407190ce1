package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "time/tzdata"

	"heli-training/logbook/internal/api"
	"heli-training/logbook/internal/config"
	"heli-training/logbook/internal/db"
	"heli-training/logbook/internal/logging"
	"heli-training/logbook/internal/metrics"
	"heli-training/logbook/internal/routes"
)

func main() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg := config.Load()

	if err := logging.Init(cfg.AppEnv); err != nil {
		log.Fatalf("❌ Failed to initialize logger: %v", err)
	}
	defer logging.Close()

	logging.Info("Logbook starting up",
		"environment", cfg.AppEnv,
		"store", cfg.StoreDriver,
		"cache", cfg.CacheDriver,
		"timestamp", time.Now().Format(time.RFC3339),
	)

	roster, err := config.LoadRoster(cfg.RosterFile)
	if err != nil {
		log.Fatalf("❌ Failed to load roster: %v", err)
	}

	orm, err := db.InitORM(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to open database (GORM): %v", err)
	}
	sqlDB, err := db.InitSQLX(cfg, orm)
	if err != nil {
		log.Fatalf("❌ Failed to open database (sqlx): %v", err)
	}
	logging.Info("Database ready", "postgres", cfg.Postgres.Enabled())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metricsReg := metrics.NewMetricsRegistry()
	deps, err := api.InitDependencies(ctx, cfg, roster, orm, sqlDB, metricsReg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize dependencies: %v", err)
	}
	deps.StartJobs(ctx)

	upSince := time.Now()
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           routes.RegisterRoutes(deps, upSince),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logging.Info("Server starting", "addr", cfg.HTTPAddr, "environment", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("Server stopped unexpectedly", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logging.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Warn("Graceful shutdown failed", "error", err)
	}
	deps.Close()
}
