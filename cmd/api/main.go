package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nikhilbhutani/tenantplatform/internal/api"
	"github.com/nikhilbhutani/tenantplatform/internal/api/handlers"
	"github.com/nikhilbhutani/tenantplatform/internal/api/middleware"
	"github.com/nikhilbhutani/tenantplatform/internal/auth"
	"github.com/nikhilbhutani/tenantplatform/internal/billing"
	"github.com/nikhilbhutani/tenantplatform/internal/cache"
	"github.com/nikhilbhutani/tenantplatform/internal/config"
	"github.com/nikhilbhutani/tenantplatform/internal/entitlement"
	"github.com/nikhilbhutani/tenantplatform/internal/notify"
	"github.com/nikhilbhutani/tenantplatform/internal/plan"
	"github.com/nikhilbhutani/tenantplatform/internal/queue"
	"github.com/nikhilbhutani/tenantplatform/internal/tenant"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Log.SlogLevel()}))
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, closeStore, err := openStore(ctx, cfg.Database)
	if err != nil {
		slog.Error("database unavailable", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	checks := map[string]handlers.Pinger{"database": st}
	var tenantCache *cache.Cache
	if err := rdb.Ping(ctx).Err(); err != nil {
		slog.Warn("redis unavailable, running without tenant cache", "error", err)
	} else {
		tenantCache = cache.NewCache(rdb, "tp")
		checks["redis"] = tenantCache
	}

	queueClient := queue.NewClient(cfg.Redis, cfg.Billing.MaxRetry)
	defer queueClient.Close()
	dispatcher := notify.NewDispatcher(queueClient, cfg.Billing.QueueSize)

	hasher := auth.NewBcryptHasher(0)
	codec := auth.NewTokenCodec(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
	resolver := tenant.NewResolver(st, tenantCache, cfg.Cache.TenantTTL)

	limiter := middleware.NewRateLimiter(100, 200)
	go limiter.Run(ctx)

	router := api.NewRouter(api.Services{
		Auth:         auth.NewService(st, codec, hasher),
		Middleware:   auth.NewMiddleware(resolver, auth.NewPrincipalResolver(codec, st)),
		Plans:        plan.NewService(st),
		Tenants:      tenant.NewService(st, hasher, resolver),
		Entitlements: entitlement.NewService(st),
		Billing:      billing.NewService(st, dispatcher),
		Checks:       checks,
		Limiter:      limiter,
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router.Setup(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("starting API server", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()

	slog.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced shutdown", "error", err)
	}
	if err := dispatcher.Close(shutdownCtx); err != nil {
		slog.Warn("billing dispatcher did not drain", "error", err)
	}
	slog.Info("server stopped")
}
