package production

import (
	"context"
	"errors"
	"fmt"

	"batchplant/internal/core/application/usecases/commands"
	"batchplant/internal/core/domain/model/kernel"
	"batchplant/internal/core/domain/model/order"
	"batchplant/internal/core/domain/model/run"
	"batchplant/internal/core/domain/services"
	"batchplant/internal/core/ports"
	"batchplant/internal/pkg/errs"
)

// SelectVehicle overrides round-robin for one batch of an order. The choice
// is used by every run logged for that batch afterwards.
func (c *Controller) SelectVehicle(ctx context.Context, orderID kernel.UUID, batchNo int, vehicleID kernel.UUID) error {
	if _, err := c.vehicles.Get(ctx, vehicleID); err != nil {
		return err
	}
	o, err := c.Order(ctx, orderID)
	if err != nil {
		return err
	}
	batches, err := c.assigner.Batches(o)
	if err != nil {
		return err
	}
	if _, err = services.FindBatch(batches, batchNo); err != nil {
		return err
	}

	l, err := c.line(orderID)
	if err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.selected[batchNo] = vehicleID
	return nil
}

// SelectedVehicle returns the operator's choice for a batch, if one was made.
func (c *Controller) SelectedVehicle(orderID kernel.UUID, batchNo int) (kernel.UUID, bool) {
	c.mu.Lock()
	l, ok := c.lines[orderID]
	c.mu.Unlock()
	if !ok {
		return kernel.UUID{}, false
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	id, ok := l.selected[batchNo]
	return id, ok
}

// LogRun records that a vehicle left with rows start..end. Without an explicit
// vehicle the batch's selected vehicle is used, then round-robin.
func (c *Controller) LogRun(
	ctx context.Context,
	orderID kernel.UUID,
	start, end int,
	vehicleID *kernel.UUID,
	note string,
) (services.Assignment, error) {
	l, err := c.line(orderID)
	if err != nil {
		return services.Assignment{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	o, err := c.Order(ctx, orderID)
	if err != nil {
		return services.Assignment{}, err
	}
	batches, err := c.assigner.Batches(o)
	if err != nil {
		return services.Assignment{}, err
	}
	b, ok := services.BatchOfRow(batches, start)
	if !ok {
		return services.Assignment{}, errs.NewObjectNotFoundError("rowSeq", start)
	}
	return c.logRange(ctx, l, orderID, b.Number, start, end, vehicleID, note)
}

// RunsForOrder lists the runs of an order by run sequence.
func (c *Controller) RunsForOrder(ctx context.Context, orderID kernel.UUID) ([]*run.Run, error) {
	uow := c.uow.Create()
	if _, err := uow.OrderRepository().Get(ctx, orderID); err != nil {
		return nil, err
	}
	return uow.RunRepository().ListByOrder(ctx, orderID)
}

// ReconcileRuns logs the runs that are missing for done batches, for example
// after a crash between a row completion and its run. It returns how many
// runs were created and keeps going past orders that fail.
func (c *Controller) ReconcileRuns(ctx context.Context) (int, error) {
	orders, err := c.uow.Create().OrderRepository().ListByStatus(ctx,
		order.Running, order.Paused, order.Stopped, order.Done)
	if err != nil {
		return 0, err
	}

	created := 0
	var errList []error
	for _, o := range orders {
		if err = ctx.Err(); err != nil {
			errList = append(errList, err)
			break
		}
		n, orderErr := c.reconcileOrder(ctx, o.ID())
		created += n
		if orderErr != nil {
			errList = append(errList, fmt.Errorf("order %s: %w", o.ID(), orderErr))
		}
	}
	return created, errors.Join(errList...)
}

func (c *Controller) reconcileOrder(ctx context.Context, orderID kernel.UUID) (int, error) {
	l, err := c.line(orderID)
	if err != nil {
		return 0, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	uow := c.uow.Create()
	o, err := uow.OrderRepository().Get(ctx, orderID)
	if err != nil {
		return 0, err
	}
	runs, err := uow.RunRepository().ListByOrder(ctx, orderID)
	if err != nil {
		return 0, err
	}
	missing, err := c.assigner.UnloggedBatches(o, runs)
	if err != nil {
		return 0, err
	}

	created := 0
	for _, b := range missing {
		a, logErr := c.logRange(ctx, l, orderID, b.Number, b.StartSeq, b.EndSeq, nil, "")
		if logErr != nil {
			return created, logErr
		}
		if a.Created {
			created++
			c.logger.InfoContext(ctx, "missing run logged", "order_id", orderID, "batch", b.Number)
		}
	}
	return created, nil
}

// autoLog logs the run of the batch holding seq once that batch is done.
// The caller holds l.mu.
func (c *Controller) autoLog(ctx context.Context, l *line, o *order.Order, seq int) error {
	batches, err := c.assigner.Batches(o)
	if err != nil {
		return err
	}
	b, ok := services.BatchOfRow(batches, seq)
	if !ok || b.Status != services.BatchDone {
		return nil
	}
	_, err = c.logRange(ctx, l, o.ID(), b.Number, b.StartSeq, b.EndSeq, nil, "")
	return err
}

// logRange runs the LogRun command. The caller holds l.mu.
func (c *Controller) logRange(
	ctx context.Context,
	l *line,
	orderID kernel.UUID,
	batchNo, start, end int,
	vehicleID *kernel.UUID,
	note string,
) (services.Assignment, error) {
	if vehicleID == nil {
		if selected, ok := l.selected[batchNo]; ok {
			vehicleID = &selected
		}
	}

	at := c.now()
	cmd, err := commands.NewLogRunCommand(orderID, start, end, vehicleID, note, at)
	if err != nil {
		return services.Assignment{}, err
	}
	a, err := c.logRun.Handle(ctx, cmd)
	if err != nil {
		return services.Assignment{}, err
	}

	if a.Created {
		runID := a.Run.ID()
		c.metrics.RunLogged()
		c.emit(ctx, ports.ProductionEvent{
			Type:    ports.EventRunLogged,
			OrderID: orderID,
			RunID:   &runID,
			At:      at,
		})
		c.logger.InfoContext(ctx, "run logged",
			"order_id", orderID, "run", a.Run.Seq(), "rows", fmt.Sprintf("%d..%d", start, end),
			"vehicle_id", a.Run.VehicleID())
	}
	return a, nil
}
