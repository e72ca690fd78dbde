// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/olegiv/landed/internal/auth"
	"github.com/olegiv/landed/internal/cache"
	"github.com/olegiv/landed/internal/config"
	"github.com/olegiv/landed/internal/dnscheck"
	"github.com/olegiv/landed/internal/handler"
	"github.com/olegiv/landed/internal/logging"
	"github.com/olegiv/landed/internal/metrics"
	"github.com/olegiv/landed/internal/middleware"
	"github.com/olegiv/landed/internal/scheduler"
	"github.com/olegiv/landed/internal/service"
	"github.com/olegiv/landed/internal/session"
	"github.com/olegiv/landed/internal/store"
	"github.com/olegiv/landed/internal/version"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

// Negative host lookups are cached briefly so a newly verified domain is
// picked up quickly.
const hostNegativeTTL = 30 * time.Second

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "landed - landing page publishing server\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  LANDED_SESSION_SECRET  Session encryption key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  LANDED_TOKEN_SECRET    Bearer token signing key (default: session secret)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  LANDED_DB_PATH         SQLite database path (default: ./data/landed.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  LANDED_SERVER_PORT     Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  LANDED_ENV             Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  LANDED_BASE_DOMAIN     Domain pages are published under (default: landed.page)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  LANDED_DEV_HOST        Development host serving /{subdomain}/{slug} (default: localhost:8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  LANDED_PLATFORM_IP     Address custom domains must point to\n")
		_, _ = fmt.Fprintf(os.Stderr, "  LANDED_REDIS_URL       Redis URL for distributed caching (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  LANDED_EVENT_RETENTION How long audit events are kept (default: 720h, 0 = forever)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  LANDED_DO_SEED         Create the default administrator (default: false)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if *showVersion {
		_, _ = fmt.Println(buildInfo())
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func buildInfo() version.Info {
	return version.Info{
		Version:   appVersion,
		GitCommit: appGitCommit,
		BuildTime: appBuildTime,
	}
}

func run() error {
	// Load .env files if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	versionInfo := buildInfo()

	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	slog.Info("running database migrations")
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	// WARN and ERROR records also go to the event log
	logger = slog.New(logging.NewEventLogHandler(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}), db))
	slog.SetDefault(logger)

	ctx := context.Background()
	if cfg.DoSeed {
		if err := store.Seed(ctx, db); err != nil {
			return fmt.Errorf("seeding database: %w", err)
		}
	}

	cacheResult, err := cache.NewCacheWithInfo(cache.CacheConfig{
		RedisURL:         cfg.RedisURL,
		Prefix:           cfg.CachePrefix,
		DefaultTTL:       time.Duration(cfg.CacheTTL) * time.Second,
		CleanupInterval:  time.Minute,
		FallbackToMemory: true,
	})
	if err != nil {
		return fmt.Errorf("initializing cache: %w", err)
	}
	backend := cacheResult.Cache
	defer func() { _ = backend.Close() }()
	slog.Info("cache initialized", "backend", cacheResult.BackendType, "fallback", cacheResult.IsFallback)

	cacheTTL := time.Duration(cfg.CacheTTL) * time.Second
	pageCache := cache.NewPublicPageCache(backend, cacheTTL)
	hostCache := cache.NewHostCache(backend, cacheTTL, hostNegativeTTL)

	m := metrics.New(prometheus.DefaultRegisterer)
	sessionManager := session.New(db, cfg.IsDevelopment())
	tokens := auth.NewTokenService(cfg.SigningKey(), cfg.TokenTTL, backend)

	if !cfg.VerificationEnabled() {
		slog.Warn("LANDED_PLATFORM_IP is not set; custom domains cannot be verified")
	}

	accounts := service.NewAccountService(db, logger)
	subdomains := service.NewSubdomainService(db, hostCache, pageCache, logger, m, cfg.AppSubdomain)
	pages := service.NewPageService(db, pageCache, logger, m)
	publish := service.NewPublishService(db, cfg, pageCache, logger, m)
	domains := service.NewDomainService(db, dnscheck.NewChecker(nil, cfg.DNSTimeout), hostCache,
		service.DomainConfig{PlatformIP: cfg.PlatformIP, BaseDomain: cfg.BaseDomain}, logger, m)
	events := service.NewEventService(db)

	sched := scheduler.New(events, scheduler.Config{
		EventRetention: cfg.EventRetention,
		PruneSchedule:  cfg.PruneSchedule,
	}, logger)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer sched.Stop()

	router := handler.NewRouter(handler.RouterConfig{
		Sessions: sessionManager,
		Identity: auth.ChainResolver{
			auth.TokenResolver{Tokens: tokens},
			auth.SessionResolver{Sessions: sessionManager},
		},
		Tokens:     tokens,
		Accounts:   accounts,
		Subdomains: subdomains,
		Pages:      pages,
		Publish:    publish,
		Domains:    domains,
		Events:     events,
		Health:     handler.NewHealthHandler(db, backend, cacheResult.BackendType, versionInfo),
		Metrics:    promhttp.Handler(),
		CSRF: middleware.DefaultCSRFConfig([]byte(cfg.SessionSecret), cfg.AppHost(), cfg.DevAppHost(),
			cfg.DevHost, cfg.IsDevelopment()),
		Security:        middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment()),
		LoginProtection: middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig()),
		LoginLimiter:    middleware.NewRateLimiter("login", 0.5, 5),
		VerifyLimiter:   middleware.NewRateLimiter("domain_verify", 0.2, 3),
		HostRouter: middleware.NewHostRouter(middleware.HostRouterConfig{
			BaseDomain:   cfg.BaseDomain,
			DevHost:      cfg.DevHost,
			AppSubdomain: cfg.AppSubdomain,
			Domains:      domains,
			Metrics:      m,
			Logger:       logger,
		}),
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB max header size
	}

	go func() {
		slog.Info("starting server",
			"addr", srv.Addr,
			"env", cfg.Env,
			"base_domain", cfg.BaseDomain,
			"dev_host", cfg.DevHost,
			"version", appVersion,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
