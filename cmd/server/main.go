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

	"ledger/internal/config"
	"ledger/internal/db"
	"ledger/internal/handlers"
	"ledger/internal/logger"
	"ledger/internal/services"
	"ledger/internal/store"
	"ledger/internal/websocket"

	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()
	zl, err := logger.New(cfg.LogLevel, cfg.AppEnv)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	connectCtx, cancelConnect := context.WithTimeout(context.Background(), 15*time.Second)
	database, err := db.Connect(connectCtx, cfg.DatabaseURL)
	cancelConnect()
	if err != nil {
		zl.Fatal("failed to connect database", zap.String("dsn", cfg.MaskedDatabaseURL()), zap.Error(err))
	}
	defer database.Close()

	if cfg.AutoMigrate {
		if err := db.Migrate(database.DB, cfg.MigrationsPath); err != nil {
			zl.Fatal("failed to apply migrations", zap.String("path", cfg.MigrationsPath), zap.Error(err))
		}
		zl.Info("migrations applied", zap.String("path", cfg.MigrationsPath))
	}

	users := store.NewUserStore(database)
	transactions := store.NewTransactionStore(database)
	audit := store.NewAuditStore(database)
	txRunner := db.NewTxRunner(database)
	hub := websocket.NewHub(zl.Named("hub"))

	engine := services.NewTransferEngine(txRunner, users, transactions, audit, hub, zl.Named("engine"))
	service := services.NewAccountService(txRunner, users, transactions, audit, engine, zl.Named("accounts"))
	handler := handlers.New(cfg, users, service, hub, zl.Named("http"))

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		zl.Info("ledger API listening", zap.String("addr", server.Addr), zap.String("env", cfg.AppEnv))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("server error", zap.Error(err))
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	<-shutdown

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		zl.Error("shutdown error", zap.Error(err))
		return
	}
	zl.Info("server stopped")
}
