package jobs

import (
	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskAssignmentSweep closes active assignments whose end date passed.
	TaskAssignmentSweep = "assignment:sweep"
	// TaskIdempotencyCleanup prunes aged idempotency keys.
	TaskIdempotencyCleanup = "idempotency:cleanup"
)

// NewAssignmentSweepTask constructs the sweep task. The task carries no
// payload; the handler reads the clock when it runs.
func NewAssignmentSweepTask() *asynq.Task {
	return asynq.NewTask(TaskAssignmentSweep, nil)
}

// NewIdempotencyCleanupTask constructs the cleanup task.
func NewIdempotencyCleanupTask() *asynq.Task {
	return asynq.NewTask(TaskIdempotencyCleanup, nil)
}
