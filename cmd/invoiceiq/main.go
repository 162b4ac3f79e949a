package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/invoiceiq/invoiceiq/internal/analytics"
	analytichttp "github.com/invoiceiq/invoiceiq/internal/analytics/http"
	"github.com/invoiceiq/invoiceiq/internal/app"
	"github.com/invoiceiq/invoiceiq/internal/extraction"
	"github.com/invoiceiq/invoiceiq/internal/invoices"
	"github.com/invoiceiq/invoiceiq/internal/observability"
	"github.com/invoiceiq/invoiceiq/internal/platform/cache"
	"github.com/invoiceiq/invoiceiq/internal/platform/db"
	"github.com/invoiceiq/invoiceiq/internal/vendors"
	"github.com/invoiceiq/invoiceiq/jobs"
)

// invoiceChangeRecorder reacts to invoice mutations: invalidate the
// analytics cache immediately and queue a warmup so the next dashboard
// load hits fresh data.
type invoiceChangeRecorder struct {
	analytics *analytics.Service
	jobs      *jobs.Client
	logger    *slog.Logger
}

func (r *invoiceChangeRecorder) InvoicesChanged(ctx context.Context) {
	if err := r.analytics.Invalidate(ctx); err != nil {
		r.logger.Warn("invalidate analytics cache", slog.Any("error", err))
	}
	if r.jobs == nil {
		return
	}
	if _, err := r.jobs.EnqueueAnalyticsWarmup(ctx, jobs.AnalyticsWarmupPayload{}); err != nil {
		r.logger.Warn("enqueue analytics warmup", slog.Any("error", err))
	}
}

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis connect", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()

	analyticsRepo := analytics.NewRepository(pool)
	analyticsCache := analytics.NewCache(redisClient, cfg.AnalyticsCacheTTL)
	analyticsService := analytics.NewService(analyticsRepo, analyticsCache)
	if err := analyticsCache.ListenForInvalidation(ctx, ""); err != nil {
		logger.Warn("cache invalidation listener", slog.Any("error", err))
	}
	analyticsHandler := analytichttp.NewHandler(logger, analyticsService)

	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	invoiceRepo := invoices.NewRepository(pool)
	invoiceService := invoices.NewService(invoiceRepo)
	invoiceService.SetChangeRecorder(&invoiceChangeRecorder{
		analytics: analyticsService,
		jobs:      jobClient,
		logger:    logger,
	})
	invoiceHandler := invoices.NewHandler(logger, invoiceService)

	vendorRepo := vendors.NewRepository(pool)
	vendorService := vendors.NewService(vendorRepo)
	vendorHandler := vendors.NewHandler(logger, vendorService)

	var engine extraction.Engine
	if cfg.VisionEnabled {
		visionEngine, err := extraction.NewVisionEngine(ctx)
		if err != nil {
			logger.Error("init vision engine", slog.Any("error", err))
			os.Exit(1)
		}
		defer func() {
			if err := visionEngine.Close(); err != nil {
				logger.Warn("vision engine close", slog.Any("error", err))
			}
		}()
		engine = visionEngine
	} else {
		logger.Info("vision engine disabled, using fallback extraction")
	}
	extractionService := extraction.NewService(logger, engine, invoiceService, vendorService, metrics)
	extractionHandler := extraction.NewHandler(logger, extractionService, cfg.MaxUploadBytes)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		Pool:              pool,
		InvoiceHandler:    invoiceHandler,
		VendorHandler:     vendorHandler,
		ExtractionHandler: extractionHandler,
		AnalyticsHandler:  analyticsHandler,
		JobHandler:        jobHandler,
		Metrics:           metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", slog.Any("error", err))
	}
}
