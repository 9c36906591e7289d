package ports

import (
	"context"

	"batchplant/internal/core/domain/model/kernel"
)

// MaterialMeter reports what the plant actually weighed out for one row.
// setpoints are per cubic metre; the result is for the planned volume.
type MaterialMeter interface {
	Measure(ctx context.Context, setpoints kernel.Measurement, planned kernel.Volume) (kernel.Measurement, error)
}
