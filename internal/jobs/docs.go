// Package jobs provides scheduled background tasks for the batch plant.
//
// Jobs use github.com/robfig/cron/v3 with the six-field (seconds) format.
//
// # Available Jobs
//
// RunReconciliationJob logs the vehicle runs of done batches that have no
// run yet. Rows and runs are committed in separate transactions, so a crash
// or a failed auto-log can leave a finished batch without its run.
//
// # Usage
//
//	jobManager := jobs.NewJobManager(controller, cfg.ReconcileSchedule, logger)
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//	defer jobManager.StopAll()
package jobs
