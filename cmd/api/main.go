package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/apexcrm/leadflow/internal/api/router"
	"github.com/apexcrm/leadflow/internal/auth"
	appconfig "github.com/apexcrm/leadflow/internal/config"
	"github.com/apexcrm/leadflow/internal/leads"
	"github.com/apexcrm/leadflow/internal/observability/metrics"
	"github.com/apexcrm/leadflow/pkg/logging"
)

func main() {
	// Load .env in development; in production config comes from the
	// environment directly.
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting leadflow API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	if cfg.AuthJWTSecret == "" {
		logger.Error("AUTH_JWT_SECRET is required")
		os.Exit(1)
	}

	ctx := context.Background()

	// Storage: Postgres when DATABASE_URL is set, otherwise in-memory
	// with a bootstrap admin for local development.
	var (
		leadRepo leads.Repository
		users    auth.UserStore
	)
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to create database pool", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		if err := pool.Ping(ctx); err != nil {
			logger.Error("failed to ping database", "error", err)
			os.Exit(1)
		}
		leadRepo = leads.NewPostgresRepository(pool)
		users = auth.NewPostgresUserStore(pool)
		logger.Info("using postgres storage")
	} else {
		memRepo := leads.NewInMemoryRepository()
		memUsers := auth.NewInMemoryUserStore()
		leadRepo = memRepo
		users = memUsers
		logger.Warn("DATABASE_URL not set, using in-memory storage")
	}

	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		if err := bootstrapAdmin(ctx, users, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			logger.Error("failed to bootstrap admin user", "error", err)
			os.Exit(1)
		}
		logger.Info("bootstrap admin ready", "email", cfg.AdminEmail)
	}

	// Sessions: Redis when configured, otherwise tokens stay valid
	// until expiry and logout is best-effort.
	var sessions auth.SessionStore
	if cfg.RedisAddr != "" {
		opts := &redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		}
		if cfg.RedisTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Error("failed to ping redis", "error", err)
			os.Exit(1)
		}
		defer client.Close()
		sessions = auth.NewRedisSessionStore(client)
		logger.Info("session revocation enabled", "addr", cfg.RedisAddr)
	} else {
		logger.Warn("REDIS_ADDR not set, logout cannot revoke tokens")
	}

	authService := auth.NewService(users, sessions, cfg.AuthJWTSecret, cfg.AuthTokenTTL)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	leadMetrics := metrics.NewLeadMetrics(registry)

	r := router.New(&router.Config{
		Logger:             logger,
		LeadsHandler:       leads.NewHandler(leadRepo, logger, leadMetrics),
		AuthHandler:        auth.NewHandler(authService, logger, leadMetrics),
		Verifier:           authService,
		MetricsHandler:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		PublicRatePerSec:   cfg.PublicRatePerSec,
		PublicRateBurst:    cfg.PublicRateBurst,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// bootstrapAdmin creates the admin user if it does not exist yet.
func bootstrapAdmin(ctx context.Context, users auth.UserStore, email, password string) error {
	if _, err := users.GetByEmail(ctx, email); err == nil {
		return nil
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	_, err = users.Create(ctx, email, hash)
	return err
}
