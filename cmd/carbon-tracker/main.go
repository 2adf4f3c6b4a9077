package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/mr1hm/go-carbon-tracker/internal/api"
	"github.com/mr1hm/go-carbon-tracker/internal/config"
	"github.com/mr1hm/go-carbon-tracker/internal/events"
	"github.com/mr1hm/go-carbon-tracker/internal/ingestion"
	"github.com/mr1hm/go-carbon-tracker/internal/logging"
	"github.com/mr1hm/go-carbon-tracker/internal/models"
	"github.com/mr1hm/go-carbon-tracker/internal/repository"
	"github.com/mr1hm/go-carbon-tracker/internal/sample"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Fatal while loading config: %v", err)
	}
	logging.Setup(cfg.Logging.Level)

	slog.Info("Server starting", "host", cfg.Server.Host, "port", cfg.Server.Port)

	if dir := filepath.Dir(cfg.DB.Path); dir != "." && cfg.DB.Path != ":memory:" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logging.Fatalf("Failed to create database directory: %v", err)
		}
	}

	db, err := repository.NewSQLiteDB(cfg.DB.Path)
	if err != nil {
		logging.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Dataset change notifications for the SSE stream
	broadcaster := events.NewBroadcaster()

	if err := seedDataset(ctx, cfg, db, broadcaster); err != nil {
		logging.Fatalf("Failed to seed dataset: %v", err)
	}

	// Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logging.RequestLogger())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false, // Set to false when using wildcard origins
	}))
	router.Use(api.RateLimitMiddleware(cfg.Server.RateLimitRPS, "/health"))

	handler := api.NewHandler(db, broadcaster, cfg.Analysis.Factors, cfg.Analysis.DefaultTopK)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down...")

	cancel()
	broadcaster.Close() // Ends open event streams

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
}

// seedDataset loads the configured CSV sources into the store. Without
// sources, an empty store is filled with generated sample data when enabled.
func seedDataset(ctx context.Context, cfg *config.Config, repo repository.DatasetRepository, b *events.Broadcaster) error {
	if cfg.Dataset.SuppliersSource != "" {
		loader := ingestion.NewLoader(cfg.Dataset.FetchTimeout)
		suppliers, shipments, err := loader.Load(ctx, cfg.Dataset.SuppliersSource, cfg.Dataset.ShipmentsSource)
		if err != nil {
			return err
		}
		return replace(ctx, repo, b, "file", suppliers, shipments)
	}

	counts, err := repo.Counts(ctx)
	if err != nil {
		return err
	}
	if counts.Suppliers > 0 || !cfg.Sample.Enabled {
		slog.Info("using stored dataset", "suppliers", counts.Suppliers, "shipments", counts.Shipments)
		b.Publish(events.DatasetEvent{
			Source:    "store",
			Suppliers: counts.Suppliers,
			Shipments: counts.Shipments,
			At:        time.Now().UTC(),
		})
		return nil
	}

	suppliers, shipments, err := sample.Generate(sample.Options{
		Seed:      cfg.Sample.Seed,
		Suppliers: cfg.Sample.Suppliers,
		Shipments: cfg.Sample.Shipments,
	})
	if err != nil {
		return err
	}
	slog.Info("seeding sample dataset", "seed", cfg.Sample.Seed, "suppliers", len(suppliers), "shipments", len(shipments))
	return replace(ctx, repo, b, "sample", suppliers, shipments)
}

func replace(ctx context.Context, repo repository.DatasetRepository, b *events.Broadcaster, source string,
	suppliers []models.Supplier, shipments []models.Shipment) error {
	if err := repo.ReplaceDataset(ctx, suppliers, shipments); err != nil {
		return err
	}
	b.Publish(events.DatasetEvent{
		Source:    source,
		Suppliers: len(suppliers),
		Shipments: len(shipments),
		At:        time.Now().UTC(),
	})
	return nil
}
