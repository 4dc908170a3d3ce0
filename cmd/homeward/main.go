package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/homeward-pm/homeward/internal/app"
	"github.com/homeward-pm/homeward/internal/assignment"
	"github.com/homeward-pm/homeward/internal/auth"
	"github.com/homeward-pm/homeward/internal/authz"
	"github.com/homeward-pm/homeward/internal/directory"
	"github.com/homeward-pm/homeward/internal/observability"
	"github.com/homeward-pm/homeward/internal/platform/cache"
	"github.com/homeward-pm/homeward/internal/platform/db"
	"github.com/homeward-pm/homeward/internal/shared"
	"github.com/homeward-pm/homeward/internal/team"
	"github.com/homeward-pm/homeward/jobs"
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

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

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

	sessionManager := shared.NewSessionManager(redisClient, "homeward_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	graph := authz.NewGraphRepository(dbpool)
	resolver := authz.NewResolver(graph)
	authorizer := authz.NewAuthorizer(resolver)

	authRepo := auth.NewRepository(dbpool)
	authService := auth.NewService(authRepo)
	authHandler := auth.NewHandler(logger, authService, sessionManager, csrfManager)

	auditLogger := shared.NewAuditLogger(dbpool)
	idempotencyStore := shared.NewIdempotencyStore(dbpool)

	assignmentRepo := assignment.NewRepository(dbpool)
	assignmentManager := assignment.NewManager(authorizer, graph, assignmentRepo, auditLogger, logger)

	teamRepo := team.NewRepository(dbpool)
	teamService := team.NewService(authorizer, assignmentManager, teamRepo, idempotencyStore, redisClient, logger)
	teamHandler := team.NewHandler(logger, teamService)

	directoryRepo := directory.NewRepository(dbpool)
	directoryService := directory.NewService(authorizer, directoryRepo)
	directoryHandler := directory.NewHandler(logger, directoryService)

	metrics := observability.NewMetrics()

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobsHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		SessionManager:   sessionManager,
		CSRFManager:      csrfManager,
		AuthHandler:      authHandler,
		TeamHandler:      teamHandler,
		DirectoryHandler: directoryHandler,
		JobsHandler:      jobsHandler,
		Pool:             dbpool,
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("http server", slog.Any("error", err))
		os.Exit(1)
	}
}
