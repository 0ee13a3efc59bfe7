package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/multierr"

	"github.com/baharkarakas/rewear-backend/internal/api"
	"github.com/baharkarakas/rewear-backend/internal/auth"
	"github.com/baharkarakas/rewear-backend/internal/config"
	"github.com/baharkarakas/rewear-backend/internal/db"
	"github.com/baharkarakas/rewear-backend/internal/idempotency"
	"github.com/baharkarakas/rewear-backend/internal/logger"
	"github.com/baharkarakas/rewear-backend/internal/metrics"
	repo "github.com/baharkarakas/rewear-backend/internal/repository"
	"github.com/baharkarakas/rewear-backend/internal/repository/memory"
	"github.com/baharkarakas/rewear-backend/internal/repository/postgres"
	"github.com/baharkarakas/rewear-backend/internal/services"
	"github.com/baharkarakas/rewear-backend/internal/worker"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "err", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Env, cfg.LogLevel)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var closers []io.Closer

	store, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Error("store", "driver", cfg.StoreDriver, "err", err)
		os.Exit(1)
	}
	closers = append(closers, store)

	var idem idempotency.Store = idempotency.NewMemoryStore()
	if cfg.RedisURL != "" {
		client, err := idempotency.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Error("redis", "err", err)
			_ = store.Close()
			os.Exit(1)
		}
		closers = append(closers, client)
		idem = idempotency.NewRedisStore(client)
	}

	metrics.Init()
	wp := worker.NewPool(cfg.Workers, cfg.WorkerQueue, log)

	audit := services.NewAuditor(store.Repos().AuditLogs, wp, log)
	userSvc := services.NewUserService(store, audit, log, services.UserOptions{
		WelcomeBonus: cfg.WelcomeBonus,
		AdminEmails:  cfg.AdminEmails,
	})
	pointsSvc := services.NewPointsService(store, audit, log)
	catalogSvc := services.NewCatalogService(store, audit, log, services.CatalogOptions{
		MaxPoints:    cfg.MaxItemPoints,
		ListingBonus: cfg.ListingBonus,
	})

	r := api.NewRouter(api.RouterDeps{
		Cfg:         cfg,
		Log:         log,
		Store:       store,
		Tokens:      auth.NewTokenManager(cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.JWTIssuer, cfg.AccessTTL, cfg.RefreshTTL),
		Idempotency: idem,
		Users:       userSvc,
		Points:      pointsSvc,
		Catalog:     catalogSvc,
		Swaps:       services.NewSwapService(store, audit, log),
		Messages:    services.NewMessageService(store, log),
		Admin:       services.NewAdminService(userSvc, catalogSvc, pointsSvc),
		Dashboard:   services.NewDashboardService(store),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.HTTPPort, "env", cfg.Env, "store", cfg.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	err = srv.Shutdown(shutdownCtx)
	// Audit jobs still queued need the store, so drain them before closing it.
	wp.Stop()
	for _, c := range closers {
		err = multierr.Append(err, c.Close())
	}
	if err != nil {
		log.Error("shutdown", "err", err)
		os.Exit(1)
	}
	log.Info("bye")
}

func openStore(ctx context.Context, cfg config.Config, log *slog.Logger) (repo.Store, error) {
	if cfg.StoreDriver == config.DriverMemory {
		log.Warn("using in-memory store, data is lost on exit")
		return memory.NewStore(), nil
	}
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
	if err != nil {
		return nil, err
	}
	if cfg.AutoMigrate {
		if err := db.RunMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		log.Info("migrations applied")
	}
	return postgres.NewStore(pool), nil
}
