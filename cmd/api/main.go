// ABOUTME: Main entry point for the Bluehand admin API server
// ABOUTME: Wires storage, courier, settings, scheduler and HTTP layers and handles shutdown

package main

import (
	"context"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bluehand-admin-api/api"
	"bluehand-admin-api/api/handlers"
	"bluehand-admin-api/api/middleware"
	"bluehand-admin-api/core/cache"
	"bluehand-admin-api/core/courier"
	"bluehand-admin-api/core/interfaces"
	"bluehand-admin-api/core/settings"
	"bluehand-admin-api/core/workers"
	"bluehand-admin-api/infrastructure/cache/memory"
	"bluehand-admin-api/infrastructure/cache/redis"
	"bluehand-admin-api/infrastructure/cache/sqlite"
	stdhttp "bluehand-admin-api/infrastructure/http/standard"
	logruslogger "bluehand-admin-api/infrastructure/logger/logrus"
	zaplogger "bluehand-admin-api/infrastructure/logger/zap"
	"bluehand-admin-api/infrastructure/metrics/prometheus"
	"bluehand-admin-api/infrastructure/scheduler"
	settingssqlite "bluehand-admin-api/infrastructure/settings/sqlite"
	"bluehand-admin-api/infrastructure/settings/supabase"
	"bluehand-admin-api/pkg/config"
	"bluehand-admin-api/pkg/featureflags"
)

// logger is the process logger plus its flush hook
type logger interface {
	interfaces.Logger
	Close() error
}

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	appLogger, err := newLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer appLogger.Close()

	flags := featureflags.NewEnvManager("FEATURE_")
	ctx := context.Background()

	appLogger.Info("Starting Bluehand admin API", map[string]interface{}{
		"port":             cfg.Server.Port,
		"cache_backend":    cfg.Cache.Backend,
		"settings_backend": cfg.Settings.Backend,
		"log_backend":      cfg.Log.Backend,
	})

	var metrics *prometheus.Metrics
	var deps interfaces.Dependencies
	if flags.IsEnabled(ctx, featureflags.MetricsEnabled) {
		metrics = prometheus.New()
		deps.Metrics = metrics
	}

	storage, closeStorage := newStorage(cfg.Cache, appLogger)
	defer closeStorage()

	deps.Storage = storage
	deps.HTTPClient = stdhttp.New(cfg.Courier.Timeout, stdhttp.WithLogger(appLogger))
	deps.Logger = appLogger

	responseCache := cache.NewResponseCache(ctx, deps, cache.Options{
		Prefix:        cfg.Cache.Prefix,
		Version:       cfg.Cache.Version,
		MaxEntryBytes: cfg.Cache.MaxEntryBytes,
	})

	settingsStore, closeSettings := newSettingsStore(cfg.Settings, deps.HTTPClient, appLogger)
	defer closeSettings()

	credentials := settings.NewCredentialsProviderWithEnv(settingsStore, appLogger, func(key string) string {
		switch key {
		case settings.EnvUsername:
			return cfg.Courier.Username
		case settings.EnvPassword:
			return cfg.Courier.Password
		case settings.EnvClientID:
			return cfg.Courier.ClientID
		}
		return os.Getenv(key)
	})

	courierService := courier.NewService(deps, credentials,
		courier.WithBaseURL(cfg.Courier.BaseURL),
		courier.WithSortEventsByDate(flags.IsEnabled(ctx, featureflags.TrackingSortByDate)),
	)

	registry := workers.NewRegistry()
	refreshWorker := workers.NewRefreshWorker(courierService, appLogger, workers.WorkerConfig{
		MaxWorkers: cfg.Courier.TrackingWorkers,
	})
	if err := refreshWorker.Start(); err != nil {
		log.Fatalf("Failed to start tracking workers: %v", err)
	}
	defer refreshWorker.Stop()

	schedOpts := []scheduler.Option{scheduler.WithJobTimeout(10 * time.Minute)}
	if metrics != nil {
		schedOpts = append(schedOpts, scheduler.WithRecorder(metrics))
	}
	jobs := scheduler.New(appLogger, schedOpts...)
	if err := jobs.Add("cache_sweep", cfg.Cache.SweepSchedule, cache.NewSweeper(responseCache, appLogger)); err != nil {
		log.Fatalf("Failed to schedule cache sweep: %v", err)
	}
	trackingSchedule := cfg.Courier.TrackingRefreshSchedule
	if !flags.IsEnabled(ctx, featureflags.CourierEnabled) {
		trackingSchedule = ""
	}
	if err := jobs.Add("tracking_refresh", trackingSchedule, workers.NewTrackingRefresh(registry, refreshWorker, appLogger)); err != nil {
		log.Fatalf("Failed to schedule tracking refresh: %v", err)
	}
	jobs.Start()

	apiCfg := api.Config{
		Logger:         appLogger,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	}
	if metrics != nil {
		apiCfg.Metrics = metrics
	}
	if cfg.Server.RateLimit > 0 && flags.IsEnabled(ctx, featureflags.RateLimitEnabled) {
		limiter := middleware.NewRateLimiter(cfg.Server.RateLimit, cfg.Server.RateWindow)
		defer limiter.Close()
		apiCfg.RateLimiter = limiter
	}
	humaAPI, router := api.NewAPI(apiCfg)

	handlers.NewCourierHandler(handlers.CourierHandlerConfig{
		Courier:  courierService,
		Registry: registry,
		Cache:    responseCache,
		Flags:    flags,
		Logger:   appLogger,
	}).RegisterRoutes(humaAPI)
	handlers.NewShipmentHandler().RegisterRoutes(humaAPI)
	handlers.NewCacheHandler(responseCache).RegisterRoutes(humaAPI)
	handlers.NewSettingsHandler(credentials, courierService, appLogger).RegisterRoutes(humaAPI)
	storageStats, _ := storage.(handlers.StorageStats)
	handlers.NewHealthHandler(api.Version, flags, jobs, storageStats).RegisterRoutes(humaAPI)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Courier.Timeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		appLogger.Info("HTTP server starting", map[string]interface{}{
			"address": srv.Addr,
		})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serverErr:
		appLogger.Error("HTTP server error", map[string]interface{}{
			"error": err.Error(),
		})
	}

	appLogger.Info("Shutting down server...", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", map[string]interface{}{
			"error": err.Error(),
		})
	}
	if err := jobs.Stop(shutdownCtx); err != nil {
		appLogger.Warn("Scheduled jobs did not stop in time", map[string]interface{}{
			"error": err.Error(),
		})
	}

	appLogger.Info("Server stopped", nil)
}

func newLogger(cfg config.LogConfig) (logger, error) {
	if cfg.Backend == "zap" {
		return zaplogger.New(cfg.Level, cfg.Format)
	}
	return logruslogger.New(logruslogger.Options{
		Level:  cfg.Level,
		Format: cfg.Format,
		File:   cfg.File,
	}), nil
}

// newStorage opens the configured cache backend, falling back to memory
// when it is unreachable
func newStorage(cfg config.CacheConfig, logger interfaces.Logger) (interfaces.Storage, func()) {
	switch cfg.Backend {
	case "redis":
		store, err := redis.NewStorage(cfg.Redis)
		if err == nil {
			logger.Info("Using Redis cache storage", map[string]interface{}{
				"address": cfg.Redis.Address,
			})
			return store, closer(store, logger)
		}
		logger.Error("Failed to connect to Redis, falling back to memory", map[string]interface{}{
			"error": err.Error(),
		})
	case "sqlite":
		store, err := sqlite.NewStorage(sqlite.Options{
			Path:       cfg.SQLitePath,
			QuotaBytes: cfg.QuotaBytes,
			Logger:     logger,
		})
		if err == nil {
			logger.Info("Using SQLite cache storage", map[string]interface{}{
				"path": cfg.SQLitePath,
			})
			return store, closer(store, logger)
		}
		logger.Error("Failed to open SQLite cache, falling back to memory", map[string]interface{}{
			"error": err.Error(),
		})
	}

	store := memory.NewStorage(cfg.QuotaBytes)
	logger.Info("Using memory cache storage", map[string]interface{}{
		"quota_bytes": store.Quota(),
	})
	return store, closer(store, logger)
}

// newSettingsStore returns nil when no settings backend is configured, in
// which case courier credentials come from the environment only
func newSettingsStore(cfg config.SettingsConfig, httpClient interfaces.HTTPClient, logger interfaces.Logger) (interfaces.SettingsStore, func()) {
	switch cfg.Backend {
	case "supabase":
		store, err := supabase.New(httpClient, supabase.Config{
			ProjectURL: cfg.SupabaseURL,
			APIKey:     cfg.SupabaseKey,
			Table:      cfg.Table,
		})
		if err != nil {
			log.Fatalf("Failed to create settings store: %v", err)
		}
		return store, func() {}
	case "sqlite":
		store, err := settingssqlite.New(cfg.SQLitePath, cfg.Table)
		if err != nil {
			log.Fatalf("Failed to open settings database: %v", err)
		}
		return store, closer(store, logger)
	}
	return nil, func() {}
}

func closer(c io.Closer, logger interfaces.Logger) func() {
	return func() {
		if err := c.Close(); err != nil {
			logger.Warn("Failed to close resource", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
}
