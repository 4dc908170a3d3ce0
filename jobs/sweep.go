package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/homeward-pm/homeward/internal/observability"
	"github.com/homeward-pm/homeward/internal/shared"
)

// AssignmentCloser is the slice of the assignment manager the sweep needs.
type AssignmentCloser interface {
	CompleteExpired(ctx context.Context) (int64, error)
}

// NewAssignmentSweepHandler completes expired assignments on each run.
func NewAssignmentSweepHandler(closer AssignmentCloser, metrics *observability.Metrics, logger *slog.Logger) TaskHandler {
	return TaskHandler{
		Type: TaskAssignmentSweep,
		Handler: func(ctx context.Context, _ *asynq.Task) error {
			closed, err := closer.CompleteExpired(ctx)
			metrics.ObserveJob(TaskAssignmentSweep, err)
			if err != nil {
				logger.Error("assignment sweep", slog.Any("error", err))
				return err
			}
			if closed > 0 {
				logger.Info("assignment sweep", slog.Int64("completed", closed))
			}
			return nil
		},
	}
}

// idempotencyRetention bounds how long processed keys stay replayable.
const idempotencyRetention = 24 * time.Hour

// NewIdempotencyCleanupHandler prunes aged idempotency keys.
func NewIdempotencyCleanupHandler(store *shared.IdempotencyStore, metrics *observability.Metrics, logger *slog.Logger) TaskHandler {
	return TaskHandler{
		Type: TaskIdempotencyCleanup,
		Handler: func(ctx context.Context, _ *asynq.Task) error {
			err := store.Cleanup(ctx, idempotencyRetention)
			metrics.ObserveJob(TaskIdempotencyCleanup, err)
			if err != nil {
				logger.Error("idempotency cleanup", slog.Any("error", err))
			}
			return err
		},
	}
}
