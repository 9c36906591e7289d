package services_test

import (
	"testing"

	"batchplant/internal/core/domain/model/kernel"
	"batchplant/internal/core/domain/services"
	"batchplant/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeBatches(t *testing.T) {
	t.Run("should cut 32 rows into 15, 15 and 2", func(t *testing.T) {
		o := newRunningOrder(t, 32)

		batches, err := services.ComputeBatches(o.Rows(), 15)

		require.NoError(t, err)
		require.Len(t, batches, 3)
		assert.Equal(t, services.Batch{
			Number: 1, StartSeq: 1, EndSeq: 15, TotalCount: 15,
			Volume: 15 * kernel.CubicMetre, Status: services.BatchQueued,
		}, batches[0])
		assert.Equal(t, 16, batches[1].StartSeq)
		assert.Equal(t, 30, batches[1].EndSeq)
		assert.Equal(t, 31, batches[2].StartSeq)
		assert.Equal(t, 32, batches[2].EndSeq)
		assert.Equal(t, 2, batches[2].TotalCount)
	})

	t.Run("should cover every row exactly once", func(t *testing.T) {
		for _, tc := range []struct {
			m3       float64
			capacity int
			want     int
		}{
			{m3: 1, capacity: 15, want: 1},
			{m3: 15, capacity: 15, want: 1},
			{m3: 16, capacity: 15, want: 2},
			{m3: 7.5, capacity: 3, want: 3},
			{m3: 10, capacity: 1, want: 10},
		} {
			o := newRunningOrder(t, tc.m3)

			batches, err := services.ComputeBatches(o.Rows(), tc.capacity)

			require.NoError(t, err)
			require.Len(t, batches, tc.want)
			var total kernel.Volume
			next := 1
			for i, b := range batches {
				assert.Equal(t, i+1, b.Number)
				assert.Equal(t, next, b.StartSeq)
				next = b.EndSeq + 1
				total += b.Volume
			}
			assert.Equal(t, o.TotalCount()+1, next)
			assert.Equal(t, o.TotalVolume(), total)
		}
	})

	t.Run("should keep the fractional last row in the last batch", func(t *testing.T) {
		o := newRunningOrder(t, 16.5)

		batches, err := services.ComputeBatches(o.Rows(), 15)

		require.NoError(t, err)
		require.Len(t, batches, 2)
		assert.Equal(t, 2, batches[1].TotalCount)
		assert.Equal(t, kernel.Volume(1500), batches[1].Volume)
	})

	t.Run("should derive status from row progress", func(t *testing.T) {
		o := newRunningOrder(t, 32)
		produce(t, o, 15)
		_, err := o.StartNextRow(testNow)
		require.NoError(t, err)

		batches, err := services.ComputeBatches(o.Rows(), 15)

		require.NoError(t, err)
		assert.Equal(t, services.BatchDone, batches[0].Status)
		assert.Equal(t, 15, batches[0].DoneCount)
		assert.Equal(t, services.BatchRunning, batches[1].Status)
		assert.Equal(t, 1, batches[1].RunningCount)
		assert.Equal(t, 14, batches[1].PendingCount())
		assert.Equal(t, services.BatchQueued, batches[2].Status)
		assert.Equal(t, 0, batches[0].PendingCount())
	})

	t.Run("should return an empty slice for no rows", func(t *testing.T) {
		batches, err := services.ComputeBatches(nil, 15)

		require.NoError(t, err)
		assert.Empty(t, batches)
	})

	t.Run("should reject non-positive capacity", func(t *testing.T) {
		o := newRunningOrder(t, 3)

		_, err := services.ComputeBatches(o.Rows(), 0)

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})
}

func TestCurrentBatch(t *testing.T) {
	t.Run("should pick the first batch that is not done", func(t *testing.T) {
		o := newRunningOrder(t, 32)
		produce(t, o, 20)
		batches, err := services.ComputeBatches(o.Rows(), 15)
		require.NoError(t, err)

		b, ok := services.CurrentBatch(batches)

		require.True(t, ok)
		assert.Equal(t, 2, b.Number)
		assert.Equal(t, 5, b.DoneCount)
	})

	t.Run("should fall back to the last batch when all are done", func(t *testing.T) {
		o := newRunningOrder(t, 4)
		produce(t, o, 4)
		batches, err := services.ComputeBatches(o.Rows(), 3)
		require.NoError(t, err)

		b, ok := services.CurrentBatch(batches)

		require.True(t, ok)
		assert.Equal(t, 2, b.Number)
		assert.Equal(t, services.BatchDone, b.Status)
	})

	t.Run("should report nothing for no batches", func(t *testing.T) {
		_, ok := services.CurrentBatch(nil)
		assert.False(t, ok)
	})
}

func TestFindBatch(t *testing.T) {
	o := newRunningOrder(t, 32)
	batches, err := services.ComputeBatches(o.Rows(), 15)
	require.NoError(t, err)

	b, err := services.FindBatch(batches, 3)
	require.NoError(t, err)
	assert.Equal(t, 31, b.StartSeq)

	_, err = services.FindBatch(batches, 4)
	require.ErrorIs(t, err, errs.ErrObjectNotFound)

	_, err = services.FindBatch(batches, 0)
	require.ErrorIs(t, err, errs.ErrObjectNotFound)

	b, ok := services.BatchOfRow(batches, 16)
	require.True(t, ok)
	assert.Equal(t, 2, b.Number)
	assert.Equal(t, "Batch-2 (16..30)", b.Label())

	_, ok = services.BatchOfRow(batches, 33)
	assert.False(t, ok)
}
