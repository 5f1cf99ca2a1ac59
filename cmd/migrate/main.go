package main

import (
	"context"
	"flag"
	"log"
	"time"

	"ledger/internal/config"
	"ledger/internal/db"
	"ledger/internal/logger"

	"go.uber.org/zap"
)

func main() {
	down := flag.Int("down", 0, "number of migrations to roll back instead of migrating up")
	flag.Parse()

	cfg := config.Load()
	zl, err := logger.New(cfg.LogLevel, cfg.AppEnv)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		zl.Fatal("failed to connect database", zap.String("dsn", cfg.MaskedDatabaseURL()), zap.Error(err))
	}
	defer database.Close()

	if *down > 0 {
		if err := db.Rollback(database.DB, cfg.MigrationsPath, *down); err != nil {
			zl.Fatal("rollback failed", zap.Error(err))
		}
		zl.Info("rolled back", zap.Int("steps", *down))
		return
	}
	if err := db.Migrate(database.DB, cfg.MigrationsPath); err != nil {
		zl.Fatal("migrate failed", zap.Error(err))
	}
	zl.Info("migrations up to date", zap.String("path", cfg.MigrationsPath))
}
