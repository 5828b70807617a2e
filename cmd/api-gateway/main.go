package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/noah-isme/worktime-api/api/swagger"
	"github.com/noah-isme/worktime-api/pkg/cache"
	"github.com/noah-isme/worktime-api/pkg/config"
	"github.com/noah-isme/worktime-api/pkg/database"
	"github.com/noah-isme/worktime-api/pkg/kvstore"
	"github.com/noah-isme/worktime-api/pkg/logger"
)

// @title Worktime API
// @version 0.1.0
// @description Attendance time tracking: clock actions, the shared attendance ledger and monthly overviews.
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, redisClient, closeStore, err := openStore(ctx, cfg, logr)
	if err != nil {
		logr.Fatal("failed to open key-value store", zap.String("driver", cfg.Store.Driver), zap.Error(err))
	}
	defer closeStore()

	app := newApp(cfg, logr, store, redisClient)
	defer app.Close()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           app.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "store", cfg.Store.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("graceful shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}

// openStore connects the configured key-value backend and starts its change
// listener. The Redis client is returned for the overview cache when the
// backend is Redis or the cache is enabled.
func openStore(ctx context.Context, cfg *config.Config, logr *zap.Logger) (kvstore.Store, *redis.Client, func(), error) {
	var (
		redisClient *redis.Client
		closers     []func()
	)
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	connectRedis := func() error {
		if redisClient != nil {
			return nil
		}
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		redisClient = client
		closers = append(closers, func() { _ = client.Close() })
		return nil
	}

	var store kvstore.Store
	switch cfg.Store.Driver {
	case config.StoreDriverRedis:
		if err := connectRedis(); err != nil {
			return nil, nil, cleanup, err
		}
		rs := kvstore.NewRedisStore(redisClient, cfg.Redis.ChannelPrefix, logr)
		if err := rs.Start(ctx); err != nil {
			cleanup()
			return nil, nil, func() {}, err
		}
		store = rs

	case config.StoreDriverPostgres:
		db, err := database.NewPostgres(cfg.Database)
		if err != nil {
			return nil, nil, cleanup, err
		}
		closers = append(closers, func() { _ = db.Close() })
		ps, err := kvstore.NewPostgresStore(db, cfg.Store.Table, cfg.Store.NotifyChannel, logr)
		if err != nil {
			cleanup()
			return nil, nil, func() {}, err
		}
		if err := ps.EnsureSchema(ctx); err != nil {
			cleanup()
			return nil, nil, func() {}, err
		}
		if err := ps.Listen(ctx, database.DSN(cfg.Database)); err != nil {
			cleanup()
			return nil, nil, func() {}, err
		}
		store = ps

	case config.StoreDriverMemory, "":
		store = kvstore.NewMemoryStore()

	default:
		return nil, nil, cleanup, fmt.Errorf("unsupported store driver %q", cfg.Store.Driver)
	}
	closers = append(closers, func() { _ = store.Close() })

	if cfg.Overview.CacheEnabled {
		if err := connectRedis(); err != nil {
			logr.Warn("overview cache disabled, redis unavailable", zap.Error(err))
		}
	}
	return store, redisClient, cleanup, nil
}
