package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	appmfg "github.com/mrp/backend/internal/application/manufacturing"
	"github.com/mrp/backend/internal/infrastructure/config"
	"github.com/mrp/backend/internal/infrastructure/event"
	"github.com/mrp/backend/internal/infrastructure/logger"
	"github.com/mrp/backend/internal/infrastructure/persistence"
	"github.com/mrp/backend/internal/infrastructure/strategy"
	httpiface "github.com/mrp/backend/internal/interfaces/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting server",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() { _ = db.Close() }()

	if err := db.Migrate(); err != nil {
		log.Fatal("failed to migrate database schema", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bus := event.NewInMemoryEventBus(log)
	bus.Subscribe(event.NewAuditLogHandler(log))
	if err := bus.Start(ctx); err != nil {
		log.Fatal("failed to start event bus", zap.Error(err))
	}

	orderService := appmfg.NewManufacturingOrderService(
		persistence.NewGormTransactionScope(db.DB),
		persistence.NewGormManufacturingOrderRepository(db.DB),
		persistence.NewGormMaterialReservationRepository(db.DB),
		persistence.NewGormStockLedgerRepository(db.DB),
		strategy.NewPrimaryWarehousePolicy(db.DB),
		bus,
		log,
	)

	router := httpiface.NewRouter(orderService, log)
	server := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        router,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
	if err := bus.Stop(shutdownCtx); err != nil {
		log.Error("event bus shutdown failed", zap.Error(err))
	}
	log.Info("server stopped")
}
