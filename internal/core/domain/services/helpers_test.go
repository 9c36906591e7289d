package services_test

import (
	"testing"
	"time"

	"batchplant/internal/core/domain/model/kernel"
	"batchplant/internal/core/domain/model/order"

	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

func newRunningOrder(t *testing.T, m3 float64) *order.Order {
	t.Helper()
	total, err := kernel.VolumeFromCubicMetres(m3)
	require.NoError(t, err)
	o, err := order.NewOrder(kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(), total, testNow)
	require.NoError(t, err)
	require.NoError(t, o.Resume())
	return o
}

// produce starts and completes the next n rows.
func produce(t *testing.T, o *order.Order, n int) {
	t.Helper()
	actual, err := kernel.NewMeasurement(map[kernel.Material]float64{kernel.Cement: 350})
	require.NoError(t, err)
	for range n {
		row, err := o.StartNextRow(testNow)
		require.NoError(t, err)
		require.NoError(t, o.CompleteRow(row.Seq(), actual, testNow))
	}
}
