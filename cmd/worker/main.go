package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/inkwell-press/inkwell/internal/affiliate"
	"github.com/inkwell-press/inkwell/internal/app"
	"github.com/inkwell-press/inkwell/internal/observability"
	"github.com/inkwell-press/inkwell/internal/platform/cache"
	"github.com/inkwell-press/inkwell/internal/platform/db"
	"github.com/inkwell-press/inkwell/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
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
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()

	affiliateRepo := affiliate.NewRepository(pool)
	graph := affiliate.NewGraph(affiliateRepo)
	calculator := affiliate.NewCalculator(affiliateRepo)
	ledger := affiliate.NewLedger(affiliateRepo)
	distributor := affiliate.NewDistributor(affiliateRepo, calculator, ledger, logger, metrics)
	statsCache := affiliate.NewStatsCache(redisClient, cfg.StatsCacheTTL)
	affiliateService := affiliate.NewService(affiliateRepo, graph, calculator, ledger, distributor, statsCache, logger, affiliate.ServiceConfig{
		FrontendURL: cfg.FrontendURL,
	})

	cron, err := jobs.DefaultCron()
	if err != nil {
		logger.Error("build cron tasks", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskCommissionDistribute, Handler: jobs.NewCommissionDistributeHandler(affiliateService, logger)},
			{Type: jobs.TaskEarningsPayout, Handler: jobs.NewEarningsPayoutHandler(affiliateRepo, affiliateService, logger)},
		},
		Cron: cron,
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
