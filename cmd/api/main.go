package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/denisok6893-rgb/car-budget-matching/internal/cache"
	"github.com/denisok6893-rgb/car-budget-matching/internal/config"
	"github.com/denisok6893-rgb/car-budget-matching/internal/domain"
	httpapi "github.com/denisok6893-rgb/car-budget-matching/internal/http"
	"github.com/denisok6893-rgb/car-budget-matching/internal/logger"
	"github.com/denisok6893-rgb/car-budget-matching/internal/matching"
	"github.com/denisok6893-rgb/car-budget-matching/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	listings, store, err := loadDataset(ctx, cfg.Dataset, log)
	if err != nil {
		log.Fatal("load dataset", zap.Error(err))
	}
	if store != nil {
		defer store.Close()
	}

	bands, err := matching.LoadBandsFromFile(cfg.Matching.BandsPath)
	if err != nil {
		log.Warn("use default bands", zap.String("path", cfg.Matching.BandsPath), zap.Error(err))
		bands = matching.DefaultBands()
	}

	engine := matching.NewEngine(bands, log.Named("matching"))
	srv := httpapi.NewServer(engine, listings, log.Named("http"))
	if store != nil {
		srv.Repo = &httpapi.SQLiteListingsRepo{Store: store}
	}
	if cfg.Cache.Enabled {
		c, err := cache.New[domain.QueryResult]("query_results", 10_000, 10*time.Minute)
		if err != nil {
			log.Fatal("init query cache", zap.Error(err))
		}
		defer c.Close()
		srv.Cache = c
	}

	httpServer := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error("shutdown", zap.Error(err))
		}
	}()

	log.Info("API listening",
		zap.String("address", cfg.Server.Address),
		zap.Int("listings", len(listings)),
		zap.Bool("cache", cfg.Cache.Enabled),
		zap.Bool("sqlite", store != nil),
	)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("server error", zap.Error(err))
	}
	log.Info("server stopped")
}

// loadDataset reads the configured JSON or CSV source. With a SQLite path the
// source replaces the store contents and the snapshot is read back from it, so
// a previously imported database still serves when the source file is gone.
func loadDataset(ctx context.Context, cfg config.DatasetConfig, log *zap.Logger) ([]domain.Listing, *storage.SQLiteStore, error) {
	var (
		listings []domain.Listing
		err      error
	)
	cleaner := storage.NewCleaner(log.Named("cleaner"), cfg.ReferenceYear)
	switch {
	case cfg.JSONPath != "":
		listings, err = storage.LoadListingsFromFile(cfg.JSONPath, cleaner)
	case cfg.CSVPath != "":
		listings, err = storage.LoadListingsFromCSV(cfg.CSVPath, cleaner)
	}

	if cfg.SQLitePath == "" {
		if err != nil {
			return nil, nil, err
		}
		return listings, nil, nil
	}
	if err != nil {
		log.Warn("dataset source unavailable, serving sqlite contents", zap.Error(err))
	}

	store, err := storage.OpenSQLite(cfg.SQLitePath)
	if err != nil {
		return nil, nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := store.EnsureSchema(ctx); err != nil {
		_ = store.Close()
		return nil, nil, err
	}
	if len(listings) > 0 {
		if err := store.ReplaceListings(ctx, listings); err != nil {
			_ = store.Close()
			return nil, nil, err
		}
	}

	all, err := store.AllListings(ctx)
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}
	log.Info("sqlite snapshot ready", zap.String("path", cfg.SQLitePath), zap.Int("imported", len(listings)), zap.Int("listings", len(all)))
	return all, store, nil
}
