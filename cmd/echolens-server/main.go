// Package main provides the standalone HTTP server for echolens.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/echolens/echolens/internal/config"
	"github.com/echolens/echolens/internal/db"
	"github.com/echolens/echolens/internal/llm"
	"github.com/echolens/echolens/internal/metrics"
	"github.com/echolens/echolens/internal/pipeline"
	"github.com/echolens/echolens/internal/retrieval"
	"github.com/echolens/echolens/internal/server"
	"github.com/echolens/echolens/internal/service"
	"github.com/echolens/echolens/internal/session"
	"github.com/echolens/echolens/internal/tools"
)

// Version is set at build time.
var Version = "0.1.0"

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	wipeDB := flag.Bool("wipe", false, "wipe all data from database on startup (testing only)")
	flag.Parse()

	cfg := config.Load()

	logger, closeLog := config.SetupLogger(cfg.LogFile, cfg.LogLevel)
	defer closeLog()
	slog.SetDefault(logger)

	logger.Info("starting echolens-server", "version", Version, "addr", *addr)

	catalog, err := config.LoadCatalog(cfg.CatalogFile)
	if err != nil {
		logger.Error("failed to load catalog", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	dbClient, err := db.NewClient(ctx, db.Config{
		URL:       cfg.SurrealDBURL,
		Namespace: cfg.SurrealDBNamespace,
		Database:  cfg.SurrealDBDatabase,
		Username:  cfg.SurrealDBUser,
		Password:  cfg.SurrealDBPass,
		AuthLevel: cfg.SurrealDBAuthLevel,
	}, logger)
	cancel()
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(context.Background()); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	collections := make([]string, len(catalog.Brands))
	for i, b := range catalog.Brands {
		collections[i] = b.Collection
	}

	ctx, cancel = context.WithTimeout(context.Background(), 30*time.Second)
	if *wipeDB || os.Getenv("ECHOLENS_WIPE_DB") == "true" {
		if err := dbClient.WipeCollections(ctx, collections); err != nil {
			cancel()
			logger.Error("failed to wipe database", "error", err)
			os.Exit(1)
		}
	}
	err = dbClient.InitSchema(ctx, collections, cfg.EmbedDimension)
	cancel()
	if err != nil {
		logger.Error("failed to initialize schema", "error", err)
		os.Exit(1)
	}

	collector := metrics.NewCollector()

	embedder, err := llm.NewEmbedder(cfg)
	if err != nil {
		logger.Error("failed to create embedder", "error", err)
		os.Exit(1)
	}
	model, err := llm.NewModel(cfg, collector)
	if err != nil {
		logger.Error("failed to create model", "error", err)
		os.Exit(1)
	}
	gateway := retrieval.NewGateway(dbClient, embedder, catalog, collector, logger)
	registry := tools.RegisterAll(&tools.Dependencies{
		Retriever: gateway,
		Catalog:   catalog,
	})
	driver := session.NewDriver(model, registry, cfg.MaxToolIterations, collector, logger)
	reporter := pipeline.NewReporter(driver, model, catalog, collector, logger)
	insights := service.NewInsightService(driver, reporter, gateway, model, catalog, logger)

	srv := server.NewHTTPServer(insights, model, dbClient, catalog, collector, logger)

	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(runCtx, *addr); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
