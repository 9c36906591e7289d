package jobs_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"batchplant/internal/jobs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReconciler struct {
	calls   atomic.Int32
	created int
	err     error
}

func (f *fakeReconciler) ReconcileRuns(context.Context) (int, error) {
	f.calls.Add(1)
	return f.created, f.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunReconciliationJob_RunOnce(t *testing.T) {
	t.Run("reports created runs", func(t *testing.T) {
		r := &fakeReconciler{created: 2}
		job := jobs.NewRunReconciliationJob(r, "", discardLogger())

		assert.Equal(t, 2, job.RunOnce(t.Context()))
		assert.EqualValues(t, 1, r.calls.Load())
	})

	t.Run("keeps partial count on failure", func(t *testing.T) {
		r := &fakeReconciler{created: 1, err: errors.New("order 7: conflict")}
		job := jobs.NewRunReconciliationJob(r, "", discardLogger())

		assert.Equal(t, 1, job.RunOnce(t.Context()))
	})
}

func TestRunReconciliationJob_Start(t *testing.T) {
	t.Run("invalid schedule", func(t *testing.T) {
		job := jobs.NewRunReconciliationJob(&fakeReconciler{}, "every now and then", discardLogger())

		require.Error(t, job.Start())
	})

	t.Run("runs on schedule", func(t *testing.T) {
		r := &fakeReconciler{}
		job := jobs.NewRunReconciliationJob(r, "* * * * * *", discardLogger())

		require.NoError(t, job.Start())
		defer job.Stop()

		assert.Eventually(t, func() bool { return r.calls.Load() > 0 }, 3*time.Second, 50*time.Millisecond)
	})
}

func TestJobManager_StartAllRejectsBadSchedule(t *testing.T) {
	jm := jobs.NewJobManager(&fakeReconciler{}, "61 * * * * *", discardLogger())

	require.ErrorContains(t, jm.StartAll(), "run reconciliation job")
}
