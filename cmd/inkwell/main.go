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

	"github.com/inkwell-press/inkwell/internal/affiliate"
	"github.com/inkwell-press/inkwell/internal/app"
	"github.com/inkwell-press/inkwell/internal/articles"
	"github.com/inkwell-press/inkwell/internal/auth"
	"github.com/inkwell-press/inkwell/internal/observability"
	"github.com/inkwell-press/inkwell/internal/platform/cache"
	"github.com/inkwell-press/inkwell/internal/platform/db"
	"github.com/inkwell-press/inkwell/internal/subscriptions"
	"github.com/inkwell-press/inkwell/internal/users"
	"github.com/inkwell-press/inkwell/jobs"
)

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
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()

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

	affiliateRepo := affiliate.NewRepository(pool)
	graph := affiliate.NewGraph(affiliateRepo)
	calculator := affiliate.NewCalculator(affiliateRepo)
	ledger := affiliate.NewLedger(affiliateRepo)
	distributor := affiliate.NewDistributor(affiliateRepo, calculator, ledger, logger, metrics)
	statsCache := affiliate.NewStatsCache(redisClient, cfg.StatsCacheTTL)
	affiliateService := affiliate.NewService(affiliateRepo, graph, calculator, ledger, distributor, statsCache, logger, affiliate.ServiceConfig{
		FrontendURL: cfg.FrontendURL,
	})
	registrar := affiliate.NewRegistrar(affiliateRepo)
	affiliateHandler := affiliate.NewHandler(logger, affiliateService, jobClient)

	userRepo := users.NewRepository(pool)
	userService := users.NewService(userRepo, registrar)
	userHandler := users.NewHandler(logger, userService)

	authService := auth.NewService(auth.NewRepository(pool), cfg.JWTSecret, cfg.JWTTTL)
	authHandler := auth.NewHandler(logger, authService)
	authMiddleware := auth.Middleware{Service: authService}

	articleService := articles.NewService(articles.NewRepository(pool))
	articleHandler := articles.NewHandler(logger, articleService)

	subscriptionService := subscriptions.NewService(subscriptions.NewRepository(pool), jobClient, logger)
	subscriptionHandler := subscriptions.NewHandler(logger, subscriptionService, cfg.WebhookSecret)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:              logger,
		Config:              cfg,
		AuthHandler:         authHandler,
		AuthMiddleware:      authMiddleware,
		UsersHandler:        userHandler,
		ArticlesHandler:     articleHandler,
		AffiliateHandler:    affiliateHandler,
		SubscriptionHandler: subscriptionHandler,
		JobHandler:          jobHandler,
		Metrics:             metrics,
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
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
