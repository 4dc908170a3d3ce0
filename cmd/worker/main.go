package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/homeward-pm/homeward/internal/app"
	"github.com/homeward-pm/homeward/internal/assignment"
	"github.com/homeward-pm/homeward/internal/authz"
	"github.com/homeward-pm/homeward/internal/observability"
	"github.com/homeward-pm/homeward/internal/platform/db"
	"github.com/homeward-pm/homeward/internal/shared"
	"github.com/homeward-pm/homeward/jobs"
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
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	graph := authz.NewGraphRepository(pool)
	authorizer := authz.NewAuthorizer(authz.NewResolver(graph))
	auditLogger := shared.NewAuditLogger(pool)
	assignmentRepo := assignment.NewRepository(pool)
	assignmentManager := assignment.NewManager(authorizer, graph, assignmentRepo, auditLogger, logger)
	idempotencyStore := shared.NewIdempotencyStore(pool)
	metrics := observability.NewMetrics()

	sweepSpec := "@hourly"
	if cfg.SweepInterval > 0 {
		sweepSpec = fmt.Sprintf("@every %s", cfg.SweepInterval)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			jobs.NewAssignmentSweepHandler(assignmentManager, metrics, logger),
			jobs.NewIdempotencyCleanupHandler(idempotencyStore, metrics, logger),
		},
		Cron: []jobs.CronRegistration{
			{Spec: sweepSpec, Task: jobs.NewAssignmentSweepTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "45 3 * * *", Task: jobs.NewIdempotencyCleanupTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
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
