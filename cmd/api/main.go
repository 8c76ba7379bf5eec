package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/angelmondragon/warrantywizard-backend/api/middleware"
	"github.com/angelmondragon/warrantywizard-backend/api/routes"
	"github.com/angelmondragon/warrantywizard-backend/internal/alerts"
	"github.com/angelmondragon/warrantywizard-backend/internal/bootstrap"
	"github.com/angelmondragon/warrantywizard-backend/internal/chat"
	"github.com/angelmondragon/warrantywizard-backend/internal/cron"
	"github.com/angelmondragon/warrantywizard-backend/internal/insights"
	"github.com/angelmondragon/warrantywizard-backend/internal/invoices"
	"github.com/angelmondragon/warrantywizard-backend/internal/warranties"
	"github.com/angelmondragon/warrantywizard-backend/pkg/config"
	"github.com/angelmondragon/warrantywizard-backend/pkg/llm"
	"github.com/angelmondragon/warrantywizard-backend/pkg/logger"
	"github.com/angelmondragon/warrantywizard-backend/pkg/metrics"
	"github.com/angelmondragon/warrantywizard-backend/pkg/redis"
	"github.com/angelmondragon/warrantywizard-backend/pkg/storage/local"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: cfg.App.Name,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(context.Background(), "api server shut down gracefully")
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) error {
	stores, err := bootstrap.OpenStores(ctx, cfg, logg)
	if err != nil {
		return err
	}
	defer func() {
		if err := stores.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	var rateStore middleware.RateLimiterStore
	if cfg.Redis.Enabled() {
		redisClient, err := redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return err
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
		rateStore = redisClient
	} else {
		logg.Warn(ctx, "redis not configured, rate limiting disabled")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	var httpMetrics *metrics.HTTPMetrics
	if cfg.FeatureFlags.HTTPMetrics {
		httpMetrics = metrics.NewHTTPMetrics(reg)
	}

	var (
		alertSvc   *alerts.Service
		insightSvc *insights.Service
	)
	warrantySvc, err := warranties.NewService(stores.Warranties,
		warranties.WithLogger(logg),
		// The relational schema cascades; the memory store needs explicit cleanup.
		warranties.WithDeleteHook(func(ctx context.Context, id int64) error {
			if stores.Shared() {
				return nil
			}
			return alertSvc.DeleteForWarranty(ctx, id)
		}),
		warranties.WithDeleteHook(func(ctx context.Context, id int64) error {
			if stores.Shared() {
				return nil
			}
			return insightSvc.DeleteForWarranty(ctx, id)
		}),
	)
	if err != nil {
		return err
	}

	if cfg.Store.SeedDemo {
		n, err := warranties.Seed(ctx, stores.Warranties, warrantySvc.Today())
		if err != nil {
			return err
		}
		if n > 0 {
			logg.Info(logg.WithField(ctx, "count", n), "seeded demo warranties")
		}
	}

	completer, err := bootstrap.NewCompleter(ctx, cfg)
	if err != nil {
		return err
	}

	if alertSvc, err = alerts.NewService(stores.Alerts, warrantySvc, logg); err != nil {
		return err
	}
	if insightSvc, err = insights.NewService(stores.Insights, warrantySvc, completer, logg); err != nil {
		return err
	}

	responder, err := newResponder(ctx, cfg, warrantySvc, completer, logg)
	if err != nil {
		return err
	}
	chatSvc, err := chat.NewService(responder, stores.History,
		chat.WithHistorySize(cfg.Chat.HistorySize),
		chat.WithMetrics(metrics.NewChatMetrics(reg)),
		chat.WithLogger(logg),
	)
	if err != nil {
		return err
	}

	files, err := local.New(cfg.Uploads.Dir)
	if err != nil {
		return err
	}
	invoiceSvc, err := invoices.NewService(warrantySvc, files, logg)
	if err != nil {
		return err
	}

	handler := routes.NewRouter(routes.Deps{
		Config:      cfg,
		Logger:      logg,
		DB:          stores.Pinger(),
		RateStore:   rateStore,
		HTTPMetrics: httpMetrics,
		Gatherer:    reg,
		Warranties:  warrantySvc,
		Alerts:      alertSvc,
		Insights:    insightSvc,
		Chat:        chatSvc,
		Invoices:    invoiceSvc,
		UploadsDir:  files.Dir(),
	})

	addr := ":" + cfg.App.Port
	server := &http.Server{Addr: addr, Handler: handler}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logg.Info(logg.WithFields(gctx, map[string]any{
			"env":   cfg.App.Env,
			"addr":  addr,
			"store": cfg.Store.Driver,
			"chat":  responder.Name(),
		}), "starting api server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownWait)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	// Nothing else can reach an in-memory store, so maintenance jobs run in process.
	if !stores.Shared() {
		worker, err := inProcessJobs(cfg, logg, alertSvc, stores.History, reg)
		if err != nil {
			return err
		}
		g.Go(func() error {
			if err := worker.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	return g.Wait()
}

func newResponder(ctx context.Context, cfg *config.Config, source warranties.Service, completer llm.Completer, logg *logger.Logger) (chat.Responder, error) {
	if cfg.Chat.Mode != config.ChatModeLLM {
		return chat.NewRuleBasedResponder(source), nil
	}
	logg.Info(logg.WithField(ctx, "provider", cfg.Chat.Provider), "chat uses llm responder")
	responder, err := chat.NewLLMResponder(source, completer, chat.LLMOptions{
		Temperature: float64(cfg.Chat.Temperature),
		MaxTokens:   cfg.Chat.MaxTokens,
	}, logg)
	if err != nil {
		return nil, err
	}
	return responder, nil
}

func inProcessJobs(cfg *config.Config, logg *logger.Logger, alertSvc *alerts.Service, history bootstrap.History, reg prometheus.Registerer) (*cron.Service, error) {
	registry, err := bootstrap.MaintenanceJobs(cfg, logg, alertSvc, history)
	if err != nil {
		return nil, err
	}
	return cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     &cron.LocalLock{},
		Metrics:  metrics.NewCronJobMetrics(reg),
		Interval: cfg.Alerts.Interval,
	})
}
