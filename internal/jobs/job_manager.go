package jobs

import (
	"fmt"
	"log/slog"
)

// JobManager coordinates the scheduled jobs of the plant.
type JobManager struct {
	runReconciliationJob *RunReconciliationJob
}

func NewJobManager(reconciler RunReconciler, reconciliationSchedule string, logger *slog.Logger) *JobManager {
	return &JobManager{
		runReconciliationJob: NewRunReconciliationJob(reconciler, reconciliationSchedule, logger),
	}
}

// StartAll starts all scheduled jobs.
func (jm *JobManager) StartAll() error {
	if err := jm.runReconciliationJob.Start(); err != nil {
		return fmt.Errorf("failed to start run reconciliation job: %w", err)
	}
	return nil
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll() {
	jm.runReconciliationJob.Stop()
}
