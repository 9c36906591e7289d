package production

import (
	"context"
	"errors"
	"fmt"

	"batchplant/internal/core/domain/model/kernel"
	"batchplant/internal/core/domain/model/order"
	"batchplant/internal/core/domain/model/run"
	"batchplant/internal/core/domain/services"
	"batchplant/internal/pkg/errs"
)

// StopReason tells why a production loop ended without an error.
type StopReason string

const (
	StopNothingPending StopReason = "nothing_pending"
	StopNotRunning     StopReason = "not_running"
	StopMaxRows        StopReason = "max_rows"
	StopInterrupted    StopReason = "interrupted"
	StopBatchDone      StopReason = "batch_done"
)

// LoopResult lists the rows a loop completed. Run is set by RunBatch when
// the batch's run exists at the end.
type LoopResult struct {
	Completed []int
	Reason    StopReason
	Run       *run.Run
}

// AutoRun produces rows one after another until nothing is pending, the
// order leaves running, maxRows rows are done, or ctx ends. A maxRows of
// zero selects the configured default. Rows completed before a failure stay
// completed.
func (c *Controller) AutoRun(ctx context.Context, orderID kernel.UUID, maxRows int) (LoopResult, error) {
	limit, err := c.rowLimit(maxRows)
	if err != nil {
		return LoopResult{}, err
	}

	res := LoopResult{Completed: make([]int, 0)}
	for len(res.Completed) < limit {
		reason, seq, stepErr := c.step(ctx, orderID, nil)
		if stepErr != nil {
			return res, stepErr
		}
		if reason != "" {
			res.Reason = reason
			return res, nil
		}
		res.Completed = append(res.Completed, seq)
	}
	res.Reason = StopMaxRows
	return res, nil
}

// RunBatch produces the rows of one batch and then logs the batch's run. A
// non-nil vehicleID is selected for the batch first. Only the current batch
// can be produced: when an earlier batch still has pending rows a
// ConflictError wrapping ErrBatchNotCurrent is returned and nothing is
// started. Calling it again for a finished batch returns the existing run.
func (c *Controller) RunBatch(
	ctx context.Context,
	orderID kernel.UUID,
	batchNo int,
	vehicleID *kernel.UUID,
) (LoopResult, error) {
	if vehicleID != nil {
		if err := c.SelectVehicle(ctx, orderID, batchNo, *vehicleID); err != nil {
			return LoopResult{}, err
		}
	}

	res := LoopResult{Completed: make([]int, 0)}
	for {
		b, err := c.batch(ctx, orderID, batchNo)
		if err != nil {
			return res, err
		}
		if b.PendingCount() == 0 {
			break
		}
		if len(res.Completed) >= b.TotalCount {
			res.Reason = StopMaxRows
			return res, nil
		}

		reason, seq, stepErr := c.step(ctx, orderID, &b)
		if stepErr != nil {
			return res, stepErr
		}
		if reason != "" {
			res.Reason = reason
			return res, nil
		}
		res.Completed = append(res.Completed, seq)
	}

	// A row of the batch may still be running when another caller started it.
	if d, ok := c.ActiveDischarge(orderID); ok {
		if err := d.Wait(ctx); err != nil && !errors.Is(err, ErrDischargeCancelled) {
			return res, err
		}
	}

	b, err := c.batch(ctx, orderID, batchNo)
	if err != nil {
		return res, err
	}
	if b.Status != services.BatchDone {
		res.Reason = StopInterrupted
		return res, nil
	}

	res.Run, err = c.batchRun(ctx, orderID, b, vehicleID)
	if err != nil {
		return res, err
	}
	res.Reason = StopBatchDone
	return res, nil
}

// step starts the next row, inside within when it is set, and waits for its
// discharge. A non-empty reason means the loop should stop without error.
func (c *Controller) step(ctx context.Context, orderID kernel.UUID, within *services.Batch) (StopReason, int, error) {
	if err := ctx.Err(); err != nil {
		return "", 0, err
	}

	d, err := c.startNext(ctx, orderID, within)
	switch {
	case errors.Is(err, order.ErrNothingPending):
		return StopNothingPending, 0, nil
	case errors.Is(err, errs.ErrIllegalTransition):
		return StopNotRunning, 0, nil
	case err != nil:
		return "", 0, err
	}

	if err = d.Wait(ctx); err != nil {
		if errors.Is(err, ErrDischargeCancelled) {
			return StopInterrupted, 0, nil
		}
		return "", 0, fmt.Errorf("row %d: %w", d.Seq(), err)
	}
	return "", d.Seq(), nil
}

func (c *Controller) batch(ctx context.Context, orderID kernel.UUID, batchNo int) (services.Batch, error) {
	o, err := c.Order(ctx, orderID)
	if err != nil {
		return services.Batch{}, err
	}
	batches, err := c.assigner.Batches(o)
	if err != nil {
		return services.Batch{}, err
	}
	return services.FindBatch(batches, batchNo)
}

// batchRun returns the run already carrying the batch, or logs one.
func (c *Controller) batchRun(ctx context.Context, orderID kernel.UUID, b services.Batch, vehicleID *kernel.UUID) (*run.Run, error) {
	runs, err := c.RunsForOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	for _, r := range runs {
		if r.StartSeq() == b.StartSeq && r.EndSeq() == b.EndSeq &&
			(vehicleID == nil || r.VehicleID().IsEqual(*vehicleID)) {
			return r, nil
		}
	}

	a, err := c.LogRun(ctx, orderID, b.StartSeq, b.EndSeq, vehicleID, "")
	if err != nil {
		return nil, err
	}
	return a.Run, nil
}

func (c *Controller) rowLimit(maxRows int) (int, error) {
	switch {
	case maxRows < 0:
		return 0, errs.NewValueIsInvalidErrorWithCause("maxRows", fmt.Errorf("%d is negative", maxRows))
	case maxRows == 0:
		return c.cfg.DefaultMaxRows, nil
	default:
		return maxRows, nil
	}
}
