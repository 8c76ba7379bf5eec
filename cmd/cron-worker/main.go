package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/warrantywizard-backend/internal/alerts"
	"github.com/angelmondragon/warrantywizard-backend/internal/bootstrap"
	"github.com/angelmondragon/warrantywizard-backend/internal/cron"
	"github.com/angelmondragon/warrantywizard-backend/internal/warranties"
	"github.com/angelmondragon/warrantywizard-backend/pkg/config"
	"github.com/angelmondragon/warrantywizard-backend/pkg/logger"
	"github.com/angelmondragon/warrantywizard-backend/pkg/metrics"
	"github.com/angelmondragon/warrantywizard-backend/pkg/redis"
)

func main() {
	once := flag.Bool("once", false, "run a single cycle and exit")
	flag.Parse()

	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})

	if cfg.Store.Driver == config.StoreDriverMemory {
		logg.Error(context.Background(), "cron worker needs a shared store",
			fmt.Errorf("%s=%s; the api runs maintenance jobs in process for this driver", config.EnvStoreDriver, cfg.Store.Driver))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stores, err := bootstrap.OpenStores(ctx, cfg, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := stores.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	lock, closeLock, err := newLock(ctx, cfg, logg)
	if err != nil {
		logg.Error(ctx, "failed to create cron lock", err)
		os.Exit(1)
	}
	defer closeLock()

	service, err := newService(ctx, cfg, logg, stores, lock)
	if err != nil {
		logg.Error(ctx, "failed to create cron service", err)
		os.Exit(1)
	}

	ctx = logg.WithFields(ctx, map[string]any{
		"env":   cfg.App.Env,
		"store": cfg.Store.Driver,
	})

	if *once {
		if failed := service.RunOnce(ctx); failed > 0 {
			logg.Error(logg.WithField(ctx, "failed_jobs", failed), "cron cycle finished with failures", errors.New("job failures"))
			os.Exit(1)
		}
		return
	}

	logg.Info(ctx, "starting cron worker")
	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}

func newService(ctx context.Context, cfg *config.Config, logg *logger.Logger, stores *bootstrap.Stores, lock cron.Lock) (*cron.Service, error) {
	warrantySvc, err := warranties.NewService(stores.Warranties, warranties.WithLogger(logg))
	if err != nil {
		return nil, err
	}
	alertSvc, err := alerts.NewService(stores.Alerts, warrantySvc, logg)
	if err != nil {
		return nil, err
	}

	registry, err := bootstrap.MaintenanceJobs(cfg, logg, alertSvc, stores.History)
	if err != nil {
		return nil, err
	}
	logg.Info(logg.WithField(ctx, "jobs", registry.Names()), "cron jobs registered")

	return cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Alerts.Interval,
	})
}

// newLock uses Redis when configured so replicas share one schedule.
func newLock(ctx context.Context, cfg *config.Config, logg *logger.Logger) (cron.Lock, func(), error) {
	if !cfg.Redis.Enabled() {
		logg.Warn(ctx, "redis not configured, using process-local cron lock")
		return &cron.LocalLock{}, func() {}, nil
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}

	lock, err := cron.NewRedisLock(redisClient, redisClient.LockKey("cron-worker", cfg.App.Env), cfg.Alerts.LockTTL)
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	return lock, closeFn, nil
}
