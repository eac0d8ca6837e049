package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmehra2102/flash-sale-inventory/internal/config"
	"github.com/dmehra2102/flash-sale-inventory/internal/inventory/application"
	invhttp "github.com/dmehra2102/flash-sale-inventory/internal/inventory/infrastructure/http"
	invredis "github.com/dmehra2102/flash-sale-inventory/internal/inventory/infrastructure/redis"
	"github.com/dmehra2102/flash-sale-inventory/pkg/logging"
	"github.com/dmehra2102/flash-sale-inventory/pkg/shutdown"
)

func main() {
	log := logging.New("inventory-service")

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	cfg := config.Load()

	// The one client per process. Its pool is the PoolHandle: shared by
	// every request, bounded, closed exactly once on the way out.
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr(),
		PoolSize:     cfg.PoolMaxConnections,
		DialTimeout:  cfg.StoreTimeout,
		ReadTimeout:  cfg.StoreTimeout,
		WriteTimeout: cfg.StoreTimeout,
	})
	defer rdb.Close()

	store := invredis.NewStore(log, rdb)

	// Probe before accepting traffic; a dead store at boot is fatal.
	probeCtx, probeCancel := context.WithTimeout(ctx, cfg.StoreTimeout)
	if err := store.Ping(probeCtx); err != nil {
		probeCancel()
		log.Error("startup probe failed", "addr", cfg.RedisAddr(), "err", err)
		os.Exit(1)
	}
	probeCancel()

	if _, err := store.InitIfAbsent(ctx, cfg.StockKey, cfg.InitialStock); err != nil {
		log.Error("stock seeding failed", "key", cfg.StockKey, "err", err)
		os.Exit(1)
	}

	svc := application.NewService(store, cfg.StockKey, cfg.UnsafeDelay)
	handler := invhttp.NewHandler(log, svc, cfg.InitialStock)

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      handler.Routes(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("http listening", "addr", cfg.HTTPAddr, "stock_key", cfg.StockKey)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server error", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	_ = srv.Shutdown(shutdownCtx)
	log.Info("inventory-service shutdown complete")
}
