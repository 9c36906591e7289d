package jobs

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// DefaultReconciliationSchedule runs the reconciliation every 30 seconds.
const DefaultReconciliationSchedule = "*/30 * * * * *"

// RunReconciler logs the runs missing for done batches.
type RunReconciler interface {
	ReconcileRuns(ctx context.Context) (int, error)
}

// RunReconciliationJob periodically logs the runs that a crash or a failed
// auto-log left missing.
type RunReconciliationJob struct {
	reconciler RunReconciler
	schedule   string
	cron       *cron.Cron
	logger     *slog.Logger
}

// NewRunReconciliationJob creates the job. An empty schedule selects
// DefaultReconciliationSchedule; schedules use the six-field cron format.
func NewRunReconciliationJob(reconciler RunReconciler, schedule string, logger *slog.Logger) *RunReconciliationJob {
	if schedule == "" {
		schedule = DefaultReconciliationSchedule
	}
	return &RunReconciliationJob{
		reconciler: reconciler,
		schedule:   schedule,
		cron:       cron.New(cron.WithSeconds()),
		logger:     logger.With("component", "run_reconciliation_job"),
	}
}

// Start schedules the job.
func (j *RunReconciliationJob) Start() error {
	_, err := j.cron.AddFunc(j.schedule, func() {
		j.RunOnce(context.Background())
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Run reconciliation job started", "schedule", j.schedule)
	return nil
}

// RunOnce performs a single reconciliation pass and returns how many runs it
// logged.
func (j *RunReconciliationJob) RunOnce(ctx context.Context) int {
	created, err := j.reconciler.ReconcileRuns(ctx)
	if err != nil {
		j.logger.ErrorContext(ctx, "Run reconciliation failed", "created", created, "error", err)
		return created
	}
	if created > 0 {
		j.logger.InfoContext(ctx, "Missing runs logged", "created", created)
	}
	return created
}

// Stop stops the scheduler and waits for a running pass to return.
func (j *RunReconciliationJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Run reconciliation job stopped")
}
