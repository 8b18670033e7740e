package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/draughtworks/brewdeck/internal/api"
	"github.com/draughtworks/brewdeck/internal/config"
	"github.com/draughtworks/brewdeck/internal/event"
	"github.com/draughtworks/brewdeck/internal/feed"
	"github.com/draughtworks/brewdeck/internal/server"
	"github.com/draughtworks/brewdeck/internal/services"
	"github.com/draughtworks/brewdeck/internal/store"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck

	logger.Info("brewdeck server starting")

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	st, err := store.New(cfg.GetString("store.path"))
	if err != nil {
		logger.Fatal("failed to open store", zap.Error(err))
	}
	defer st.Close() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := st.Migrate(ctx, "services", services.Migrations); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	bus := event.NewBus(logger)

	handler := api.NewHandler(
		services.NewSQLiteBeerRepository(st.DB()),
		services.NewSQLiteCustomerRepository(st.DB()),
		services.NewSQLiteOrderRepository(st),
		services.NewSQLiteShipmentRepository(st.DB()),
		bus,
		logger,
	)
	changeFeed := feed.New(bus, logger)

	addr := cfg.GetString("server.addr")
	srv := server.New(addr, logger, handler, changeFeed)

	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	logger.Info("brewdeck server ready", zap.String("addr", addr))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh

	logger.Info("received shutdown signal", zap.String("signal", sig.String()))

	shutdownCtx, shutdownCancel := context.WithTimeout(
		context.Background(), cfg.GetDuration("server.shutdown_timeout"))
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}

	logger.Info("brewdeck server stopped")
}
