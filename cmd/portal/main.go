package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/campushire/portal/pkg/api"
	"github.com/campushire/portal/pkg/auth"
	"github.com/campushire/portal/pkg/config"
	"github.com/campushire/portal/pkg/files"
	"github.com/campushire/portal/pkg/middleware"
	"github.com/campushire/portal/pkg/observability"
	"github.com/campushire/portal/pkg/panels"
	"github.com/campushire/portal/pkg/rbac"
	"github.com/campushire/portal/pkg/router"
	"github.com/campushire/portal/pkg/storage"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := observability.NewLogger(cfg.Observability.LogLevel, os.Stdout)
	logger.Info("starting campus recruitment portal")

	var metrics *observability.Metrics
	promRegistry := prometheus.NewRegistry()
	if cfg.Observability.MetricsEnabled {
		metrics = observability.NewMetrics(promRegistry)
	}

	// Record store
	store, db, err := buildStore(cfg)
	if err != nil {
		logger.WithError(err).Error("failed to initialize storage")
		os.Exit(1)
	}
	defer store.Close()
	logger.WithField("type", cfg.Storage.Type).Info("storage initialized")

	// Redis: change feed + login rate limiting
	var redisClient *redis.Client
	var feed *storage.RedisFeed
	var loginLimiter *middleware.RateLimiter
	if cfg.Storage.RedisURL != "" {
		bus := busOf(store)
		feed, err = storage.NewRedisFeed(cfg.Storage.RedisURL, cfg.Storage.RedisPassword, cfg.Storage.RedisDB, bus)
		if err != nil {
			logger.WithError(err).Error("failed to connect to redis")
			os.Exit(1)
		}
		redisClient = feed.Client()
		attachFeed(store, feed)
		loginLimiter = middleware.NewRateLimiter(redisClient, &middleware.RateLimitConfig{
			RequestsPerWindow: cfg.Auth.LoginRateLimit,
			WindowDuration:    cfg.Auth.LoginRateWindow,
		}, "")
		logger.Info("redis change feed enabled")
	}

	// Read cache in front of SQL backends
	if cfg.Storage.CacheEnabled && cfg.Storage.Type != "memory" {
		cached, err := storage.NewCachedStore(store, cfg.Storage.CacheSize)
		if err != nil {
			logger.WithError(err).Error("failed to initialize cache")
			os.Exit(1)
		}
		if metrics != nil {
			cached.OnHit = func(table storage.Table) {
				metrics.CacheHitsTotal.WithLabelValues(string(table)).Inc()
			}
			cached.OnMiss = func(table storage.Table) {
				metrics.CacheMissesTotal.WithLabelValues(string(table)).Inc()
			}
		}
		store = cached
		logger.WithField("size", cfg.Storage.CacheSize).Info("read cache enabled")
	}

	// Credential resolution
	registry := auth.NewRegistry(cfg.Auth.SessionTTL)
	var sources []auth.CredentialSource
	if cfg.Auth.DemoEnabled {
		sources = append(sources, auth.NewStaticSource(auth.DemoAccounts))
	}
	if cfg.Auth.OIDCIssuerURL != "" {
		provider, err := auth.NewProviderSource(context.Background(), auth.ProviderConfig{
			IssuerURL:    cfg.Auth.OIDCIssuerURL,
			ClientID:     cfg.Auth.OIDCClientID,
			ClientSecret: cfg.Auth.OIDCClientSecret,
		})
		if err != nil {
			logger.WithError(err).Error("failed to discover OIDC provider")
			os.Exit(1)
		}
		sources = append(sources, provider)
		logger.WithField("issuer", cfg.Auth.OIDCIssuerURL).Info("OIDC provider enabled")
	}
	resolver := auth.NewResolver(registry, sources,
		auth.WithPinnedSuperAdmin(cfg.Auth.SuperAdminEmail, cfg.Auth.SuperAdminSecret))

	// Role lookup, panel routing
	lookup := rbac.NewLookup(store, metrics)
	factory := panels.NewFactory(store, metrics)
	routers := router.NewManager(lookup, factory, cfg.Auth.SuperAdminEmail, logger, metrics)
	routers.WatchRegistry(registry)

	// Resume storage
	blobs, err := buildBlobStore(cfg)
	if err != nil {
		logger.WithError(err).Error("failed to initialize file storage")
		os.Exit(1)
	}
	resumes := files.NewResumeService(blobs, store, metrics)

	server := api.NewServer(api.Dependencies{
		Resolver:     resolver,
		Lookup:       lookup,
		Routers:      routers,
		Store:        store,
		Resumes:      resumes,
		PinnedEmail:  cfg.Auth.SuperAdminEmail,
		Logger:       logger,
		Metrics:      metrics,
		LoginLimiter: loginLimiter,
	})

	// Expired-session sweep
	sweeper := cron.New()
	_, err = sweeper.AddFunc(cfg.Auth.SweepSchedule, func() {
		if removed := registry.SweepExpired(time.Now()); removed > 0 {
			logger.WithField("removed", removed).Info("swept expired sessions")
		}
		if metrics != nil {
			metrics.SessionsActive.Set(float64(registry.Count()))
		}
	})
	if err != nil {
		logger.WithError(err).Error("invalid session sweep schedule")
		os.Exit(1)
	}
	sweeper.Start()
	defer sweeper.Stop()

	// Health and metrics on a separate port for probes
	healthMux := http.NewServeMux()
	checker := observability.NewHealthChecker(db, redisClient)
	observability.RegisterHealthRoutes(healthMux, checker)
	if cfg.Observability.MetricsEnabled {
		observability.RegisterMetricsEndpoint(healthMux, promRegistry)
	}

	apiServer := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      server,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	healthServer := &http.Server{
		Addr:    cfg.Server.Host + ":" + cfg.Server.HealthPort,
		Handler: healthMux,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		logger.WithField("addr", apiServer.Addr).Info("API server listening")
		if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("api server: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		logger.WithField("addr", healthServer.Addr).Info("health server listening")
		if err := healthServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("health server: %w", err)
		}
		return nil
	})
	if feed != nil {
		group.Go(func() error {
			if err := feed.Run(groupCtx); err != nil && err != context.Canceled {
				return fmt.Errorf("redis feed: %w", err)
			}
			return nil
		})
	}
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		logger.Info("shutting down")
		apiServer.Shutdown(shutdownCtx)
		healthServer.Shutdown(shutdownCtx)
		return nil
	})

	if err := group.Wait(); err != nil {
		logger.WithError(err).Error("server exited with error")
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}

// buildStore creates the configured record store. The *sql.DB is returned
// separately for health checks; it is nil for the memory backend.
func buildStore(cfg *config.Config) (storage.RecordStore, *sql.DB, error) {
	switch cfg.Storage.Type {
	case "memory":
		return storage.NewMemoryStore(), nil, nil
	case "sqlite":
		s, err := storage.NewSQLiteStore(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return s, s.DB(), nil
	case "postgres":
		s, err := storage.NewPostgresStore(cfg.Storage.PostgresURL, cfg.Storage.PostgresMaxConns, cfg.Storage.PostgresMinConns)
		if err != nil {
			return nil, nil, err
		}
		return s, s.DB(), nil
	default:
		return nil, nil, fmt.Errorf("unknown storage type %q", cfg.Storage.Type)
	}
}

func buildBlobStore(cfg *config.Config) (files.BlobStore, error) {
	switch cfg.Files.Type {
	case "memory":
		return files.NewMemoryBlobStore(), nil
	case "s3":
		return files.NewS3Store(context.Background(), files.S3Config{
			Region:       cfg.Files.S3Region,
			Bucket:       cfg.Files.S3Bucket,
			Endpoint:     cfg.Files.S3Endpoint,
			AccessKey:    cfg.Files.S3AccessKey,
			SecretKey:    cfg.Files.S3SecretKey,
			UsePathStyle: cfg.Files.S3UsePathStyle,
		})
	default:
		return nil, fmt.Errorf("unknown files type %q", cfg.Files.Type)
	}
}

func busOf(store storage.RecordStore) *storage.Bus {
	switch s := store.(type) {
	case *storage.MemoryStore:
		return s.Bus()
	case *storage.SQLStore:
		return s.Bus()
	default:
		return nil
	}
}

func attachFeed(store storage.RecordStore, feed *storage.RedisFeed) {
	if s, ok := store.(*storage.SQLStore); ok {
		s.AttachFeed(feed)
	}
}
