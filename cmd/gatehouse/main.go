package main

import (
	"context"
	"database/sql"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/platinummonkey/gatehouse/pkg/applications"
	"github.com/platinummonkey/gatehouse/pkg/config"
	"github.com/platinummonkey/gatehouse/pkg/guard"
	"github.com/platinummonkey/gatehouse/pkg/interaction"
	"github.com/platinummonkey/gatehouse/pkg/observability"
	"github.com/platinummonkey/gatehouse/pkg/samlapp"
	"github.com/platinummonkey/gatehouse/pkg/server"
	"github.com/platinummonkey/gatehouse/pkg/tenants"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		observability.NewLogger(observability.ErrorLevel, os.Stderr).WithError(err).Error("failed to load configuration")
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Observability.LogLevel, os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tracerProvider, err := observability.InitTracing(ctx, observability.OTelConfig{
		Enabled:        cfg.Observability.OTelEnabled,
		Endpoint:       cfg.Observability.OTelEndpoint,
		ServiceName:    cfg.Observability.OTelServiceName,
		ServiceVersion: cfg.Observability.OTelServiceVersion,
		Insecure:       cfg.Observability.OTelInsecure,
	}, logger)
	if err != nil {
		logger.WithError(err).Error("failed to initialize tracing")
		os.Exit(1)
	}
	if tracerProvider != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
				logger.WithError(err).Warn("failed to shut down tracer provider")
			}
		}()
	}

	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		logger.WithError(err).Error("failed to open database")
		os.Exit(1)
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	if err := db.PingContext(ctx); err != nil {
		logger.WithError(err).Error("failed to ping database")
		os.Exit(1)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.URL,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		// The guard degrades to its fallback chain without the interaction
		// store, so an unreachable Redis is not fatal at startup.
		logger.WithError(err).Warn("interaction store unreachable at startup")
	}

	var metrics *observability.Metrics
	if cfg.Observability.MetricsEnabled {
		metrics = observability.NewMetrics(prometheus.NewRegistry())
	}

	resolver, err := tenants.NewResolver(
		cfg.Tenancy.DomainBased,
		cfg.Tenancy.BaseDomain,
		cfg.Tenancy.DefaultTenantID,
		cfg.Tenancy.Endpoint,
	)
	if err != nil {
		logger.WithError(err).Error("failed to build tenant resolver")
		os.Exit(1)
	}

	appFinder := applications.NewCachedFinder(applications.NewStorage(db), 0, 0, metrics)
	tenantConfigs := tenants.NewConfigStore(db)
	sessions := interaction.NewRedisStore(redisClient)
	samlStore := samlapp.NewStorage(db, metrics)

	sessionGuard := guard.New(
		sessions,
		appFinder,
		tenantConfigs,
		resolver,
		guard.NewCookieCodec(cfg.CookieKeys),
		logger,
		metrics,
	)

	apiServer := server.New(server.Options{
		Guard:          sessionGuard,
		Finder:         appFinder,
		SAML:           samlStore,
		Logger:         logger,
		Metrics:        metrics,
		TracingEnabled: cfg.Observability.OTelEnabled,
	})

	healthMux := http.NewServeMux()
	observability.RegisterHealthRoutes(healthMux, observability.NewHealthChecker(db, redisClient))
	if metrics != nil {
		healthMux.Handle("/metrics", metrics.Handler())
	}

	mainServer := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:      apiServer,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	healthServer := &http.Server{
		Addr:    net.JoinHostPort(cfg.Server.Host, cfg.Server.HealthPort),
		Handler: healthMux,
	}

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		logger.WithField("addr", mainServer.Addr).Info("starting gatehouse server")
		if err := mainServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	group.Go(func() error {
		logger.WithField("addr", healthServer.Addr).Info("starting health server")
		if err := healthServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := mainServer.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Warn("main server shutdown failed")
		}
		if err := healthServer.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Warn("health server shutdown failed")
		}
		return nil
	})

	if err := group.Wait(); err != nil {
		logger.WithError(err).Error("server exited with error")
		os.Exit(1)
	}
	logger.Info("gatehouse stopped")
}
