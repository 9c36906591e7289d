package ports

import (
	"context"

	"batchplant/internal/core/domain/model/kernel"
	"batchplant/internal/core/domain/model/run"
)

// RunRepository stores runs. Runs are immutable, so there is no Update.
type RunRepository interface {
	// Add persists a new run. Implementations reject a second run with the
	// same order and sequence.
	Add(ctx context.Context, r *run.Run) error

	// ListByOrder returns the runs of an order ordered by run sequence.
	ListByOrder(ctx context.Context, orderID kernel.UUID) ([]*run.Run, error)
}
