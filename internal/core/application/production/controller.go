// Package production drives the plant floor. The Controller starts row
// discharges, completes them when their timers expire, applies operator
// actions with the configured interrupt policy and logs vehicle runs.
//
// Every mutation is a command executed in its own unit of work. The
// controller serializes the commands of one order behind a per-order lock;
// different orders never wait for each other.
package production

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"batchplant/internal/core/application/usecases/commands"
	"batchplant/internal/core/domain/model/kernel"
	"batchplant/internal/core/domain/model/order"
	"batchplant/internal/core/domain/services"
	"batchplant/internal/core/ports"
	"batchplant/internal/pkg/errs"
)

// Dependencies are the ports the controller works with. Events, Metrics,
// Logger and Clock are optional.
type Dependencies struct {
	UnitOfWork ports.UnitOfWorkFactory
	Vehicles   ports.VehicleDirectory
	Recipes    ports.RecipeDirectory
	Clients    ports.ClientDirectory
	Meter      ports.MaterialMeter
	Events     ports.EventPublisher
	Metrics    ports.ProductionMetrics
	Logger     *slog.Logger
	Clock      func() time.Time
}

type Controller struct {
	cfg      Config
	uow      ports.UnitOfWorkFactory
	vehicles ports.VehicleDirectory
	recipes  ports.RecipeDirectory
	assigner services.RunAssigner
	events   ports.EventPublisher
	metrics  ports.ProductionMetrics
	logger   *slog.Logger
	clock    func() time.Time

	placeOrder   commands.PlaceOrderCommandHandler
	changeStatus commands.ChangeOrderStatusCommandHandler
	startNextRow commands.StartNextRowCommandHandler
	completeRow  commands.CompleteRowCommandHandler
	requeueRow   commands.RequeueRowCommandHandler
	logRun       commands.LogRunCommandHandler

	mu     sync.Mutex
	lines  map[kernel.UUID]*line
	closed bool
}

// line is the production state of one order that lives outside the ledger.
type line struct {
	mu        sync.Mutex
	discharge *Discharge
	selected  map[int]kernel.UUID
}

func NewController(cfg Config, deps Dependencies) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := deps.validate(); err != nil {
		return nil, err
	}

	assigner, err := services.NewRunAssigner(cfg.CapacityUnits)
	if err != nil {
		return nil, err
	}

	c := &Controller{
		cfg:      cfg,
		uow:      deps.UnitOfWork,
		vehicles: deps.Vehicles,
		recipes:  deps.Recipes,
		assigner: assigner,
		events:   deps.Events,
		metrics:  deps.Metrics,
		logger:   deps.Logger,
		clock:    deps.Clock,
		lines:    make(map[kernel.UUID]*line),
	}
	if c.events == nil {
		c.events = noEvents{}
	}
	if c.metrics == nil {
		c.metrics = noMetrics{}
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	c.logger = c.logger.With("component", "production_controller")
	if c.clock == nil {
		c.clock = time.Now
	}

	orderUoW := orderUoWFactory(func() commands.OrderUoW { return deps.UnitOfWork.Create() })
	fullUoW := uowFactory(func() commands.UoW { return deps.UnitOfWork.Create() })

	c.placeOrder = commands.NewPlaceOrderCommandHandler(orderUoW, deps.Clients, deps.Recipes)
	c.changeStatus = commands.NewChangeOrderStatusCommandHandler(orderUoW)
	c.startNextRow = commands.NewStartNextRowCommandHandler(orderUoW)
	c.completeRow = commands.NewCompleteRowCommandHandler(orderUoW, deps.Recipes, deps.Meter)
	c.requeueRow = commands.NewRequeueRowCommandHandler(orderUoW)
	c.logRun = commands.NewLogRunCommandHandler(fullUoW, deps.Vehicles, assigner)

	return c, nil
}

func (d Dependencies) validate() error {
	var errList []error
	if d.UnitOfWork == nil {
		errList = append(errList, errs.NewValueIsRequiredError("unitOfWork"))
	}
	if d.Vehicles == nil {
		errList = append(errList, errs.NewValueIsRequiredError("vehicles"))
	}
	if d.Recipes == nil {
		errList = append(errList, errs.NewValueIsRequiredError("recipes"))
	}
	if d.Clients == nil {
		errList = append(errList, errs.NewValueIsRequiredError("clients"))
	}
	if d.Meter == nil {
		errList = append(errList, errs.NewValueIsRequiredError("meter"))
	}
	return errors.Join(errList...)
}

// Config returns the settings the controller runs with.
func (c *Controller) Config() Config {
	return c.cfg
}

// PlaceOrder creates a draft order of volume for the client and recipe.
func (c *Controller) PlaceOrder(
	ctx context.Context,
	clientID, recipeID kernel.UUID,
	volume kernel.Volume,
) (*order.Order, error) {
	id := kernel.NewUUID()
	cmd, err := commands.NewPlaceOrderCommand(id, clientID, recipeID, volume, c.now())
	if err != nil {
		return nil, err
	}
	if err = c.placeOrder.Handle(ctx, cmd); err != nil {
		return nil, err
	}
	c.logger.InfoContext(ctx, "order placed", "order_id", id, "volume", volume.String())
	return c.Order(ctx, id)
}

// StartNextRow begins the next pending row and arms its discharge timer. It
// returns as soon as the row is running.
func (c *Controller) StartNextRow(ctx context.Context, orderID kernel.UUID) (*Discharge, error) {
	return c.startNext(ctx, orderID, nil)
}

// startNext begins the next pending row. A non-nil within refuses to start a
// row outside that batch.
func (c *Controller) startNext(ctx context.Context, orderID kernel.UUID, within *services.Batch) (*Discharge, error) {
	l, err := c.line(orderID)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if c.isClosed() {
		return nil, ErrControllerClosed
	}
	if d := l.discharge; d != nil {
		return nil, errs.NewConflictErrorWithCause(fmt.Sprintf("order %s", orderID),
			fmt.Errorf("%w: row %d", order.ErrAnotherRowRunning, d.seq))
	}
	if within != nil {
		if err = c.checkBatchIsNext(ctx, orderID, *within); err != nil {
			return nil, err
		}
	}

	at := c.now()
	cmd, err := commands.NewStartNextRowCommand(orderID, at)
	if err != nil {
		return nil, err
	}
	res, err := c.startNextRow.Handle(ctx, cmd)
	if res.Status != res.From {
		c.statusChanged(ctx, orderID, res.Status, at)
	}
	if err != nil {
		return nil, err
	}

	seq := res.Row.Seq()
	c.metrics.RowStarted()
	c.emit(ctx, ports.ProductionEvent{
		Type:    ports.EventRowStarted,
		OrderID: orderID,
		RowSeq:  seq,
		Status:  res.Status.String(),
		At:      at,
	})

	d := newDischarge(orderID, seq, at)
	d.cancel = c.cancelDischarge
	d.timer = time.AfterFunc(c.cfg.DischargeDuration, func() { c.finish(l, d) })
	l.discharge = d

	c.logger.DebugContext(ctx, "row started", "order_id", orderID, "row", seq)
	return d, nil
}

// checkBatchIsNext fails with ErrBatchNotCurrent when the lowest pending row
// of a running order lies outside b. Other states are left to the start
// command to reject. The caller holds the line lock.
func (c *Controller) checkBatchIsNext(ctx context.Context, orderID kernel.UUID, b services.Batch) error {
	o, err := c.Order(ctx, orderID)
	if err != nil || o.Status() != order.Running {
		return err
	}
	next, ok, err := o.NextPending()
	if err != nil || !ok {
		return err
	}
	if !b.Contains(next.Seq()) {
		return errs.NewConflictErrorWithCause(b.Label(),
			fmt.Errorf("%w: next pending row is %d", ErrBatchNotCurrent, next.Seq()))
	}
	return nil
}

// ActiveDischarge returns the outstanding discharge of an order, if any.
func (c *Controller) ActiveDischarge(orderID kernel.UUID) (*Discharge, bool) {
	c.mu.Lock()
	l, ok := c.lines[orderID]
	c.mu.Unlock()
	if !ok {
		return nil, false
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	return l.discharge, l.discharge != nil
}

// finish is the timer callback. A completion that raced with pause or stop
// is still applied.
func (c *Controller) finish(l *line, d *Discharge) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if d.cancelled {
		return
	}
	if l.discharge == d {
		l.discharge = nil
	}

	ctx := context.Background()
	if _, err := c.complete(ctx, l, d.orderID, d.seq); err != nil {
		c.logger.ErrorContext(ctx, "discharge completion failed",
			"order_id", d.orderID, "row", d.seq, "error", err)
		d.resolve(err)
		return
	}
	d.resolve(nil)
}

// complete measures and completes a running row, then logs the run of its
// batch when the batch became done. The caller holds l.mu.
func (c *Controller) complete(ctx context.Context, l *line, orderID kernel.UUID, seq int) (commands.CompleteRowResult, error) {
	at := c.now()
	cmd, err := commands.NewCompleteRowCommand(orderID, seq, at)
	if err != nil {
		return commands.CompleteRowResult{}, err
	}
	res, err := c.completeRow.Handle(ctx, cmd)
	if err != nil {
		return commands.CompleteRowResult{}, err
	}

	took := time.Duration(0)
	if started := res.Row.StartedAt(); !started.IsZero() {
		took = at.Sub(started)
	}
	c.metrics.RowCompleted(took)
	c.emit(ctx, ports.ProductionEvent{
		Type:    ports.EventRowCompleted,
		OrderID: orderID,
		RowSeq:  seq,
		Status:  res.To.String(),
		At:      at,
	})
	if res.From != res.To {
		c.statusChanged(ctx, orderID, res.To, at)
	}

	if c.cfg.AutoLogRuns {
		if logErr := c.autoLog(ctx, l, res.Order, seq); logErr != nil {
			c.logger.WarnContext(ctx, "run not logged, reconciliation will retry",
				"order_id", orderID, "row", seq, "error", logErr)
		}
	}
	return res, nil
}

// MarkRowDone completes a running row now. It is how an operator clears a
// row left running by the cancel policy; an outstanding discharge of the same
// row is settled by it.
func (c *Controller) MarkRowDone(ctx context.Context, orderID kernel.UUID, seq int) (order.Row, error) {
	l, err := c.line(orderID)
	if err != nil {
		return order.Row{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	d := l.discharge
	if d != nil && d.seq == seq {
		d.timer.Stop()
		d.cancelled = true
		l.discharge = nil
	} else {
		d = nil
	}

	res, err := c.complete(ctx, l, orderID, seq)
	if d != nil {
		d.resolve(err)
	}
	if err != nil {
		return order.Row{}, err
	}
	return res.Row, nil
}

// ChangeStatus applies pause, resume or stop. Pause and stop treat an
// outstanding discharge according to the interrupt policy.
func (c *Controller) ChangeStatus(
	ctx context.Context,
	orderID kernel.UUID,
	action commands.StatusAction,
) (commands.ChangeOrderStatusResult, error) {
	l, err := c.line(orderID)
	if err != nil {
		return commands.ChangeOrderStatusResult{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	var interrupted *Discharge
	requeue := false
	if action != commands.ActionResume && l.discharge != nil && c.cfg.InterruptPolicy != PolicyDrain {
		o, getErr := c.Order(ctx, orderID)
		if getErr != nil {
			return commands.ChangeOrderStatusResult{}, getErr
		}
		if checkErr := action.Check(o.Status()); checkErr != nil {
			return commands.ChangeOrderStatusResult{}, checkErr
		}
		if l.discharge.stop() {
			interrupted = l.discharge
			l.discharge = nil
			requeue = c.cfg.InterruptPolicy == PolicyRequeue
		}
	}

	var res commands.ChangeOrderStatusResult
	cmd, err := commands.NewChangeOrderStatusCommand(orderID, action, requeue)
	if err == nil {
		res, err = c.changeStatus.Handle(ctx, cmd)
	}
	if err != nil {
		if interrupted != nil {
			c.rearm(l, interrupted)
		}
		return commands.ChangeOrderStatusResult{}, err
	}
	if interrupted != nil {
		interrupted.resolve(ErrDischargeCancelled)
	}

	at := c.now()
	if res.RequeuedSeq > 0 {
		c.rowRequeued(ctx, orderID, res.RequeuedSeq, res.To, at)
	}
	if res.From != res.To {
		c.statusChanged(ctx, orderID, res.To, at)
	}
	c.logger.InfoContext(ctx, "order status changed",
		"order_id", orderID, "action", string(action), "from", res.From.String(), "to", res.To.String())
	return res, nil
}

func (c *Controller) Pause(ctx context.Context, orderID kernel.UUID) (commands.ChangeOrderStatusResult, error) {
	return c.ChangeStatus(ctx, orderID, commands.ActionPause)
}

func (c *Controller) Resume(ctx context.Context, orderID kernel.UUID) (commands.ChangeOrderStatusResult, error) {
	return c.ChangeStatus(ctx, orderID, commands.ActionResume)
}

func (c *Controller) Stop(ctx context.Context, orderID kernel.UUID) (commands.ChangeOrderStatusResult, error) {
	return c.ChangeStatus(ctx, orderID, commands.ActionStop)
}

// rearm restores a discharge whose timer was stopped by a status change that
// did not commit. The timer gets the time the discharge had left. The caller
// holds l.mu.
func (c *Controller) rearm(l *line, d *Discharge) {
	left := max(c.cfg.DischargeDuration-c.now().Sub(d.startedAt), 0)
	d.cancelled = false
	d.timer = time.AfterFunc(left, func() { c.finish(l, d) })
	l.discharge = d
	c.logger.Warn("status change failed, discharge resumed",
		"order_id", d.orderID, "row", d.seq, "remaining", left)
}

// CancelDischarge cancels the outstanding discharge of an order and returns
// its row to pending.
func (c *Controller) CancelDischarge(ctx context.Context, orderID kernel.UUID) error {
	d, ok := c.ActiveDischarge(orderID)
	if !ok {
		return errs.NewObjectNotFoundError("discharge", orderID)
	}
	return d.Cancel(ctx)
}

func (c *Controller) cancelDischarge(ctx context.Context, d *Discharge) error {
	l, err := c.line(d.orderID)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.discharge != d || !d.stop() {
		return errs.NewConflictErrorWithCause(fmt.Sprintf("row %d", d.seq), errors.New("discharge already finished"))
	}
	l.discharge = nil

	cmd, err := commands.NewRequeueRowCommand(d.orderID, d.seq)
	if err == nil {
		err = c.requeueRow.Handle(ctx, cmd)
	}
	if err != nil {
		d.resolve(errors.Join(ErrDischargeCancelled, err))
		return err
	}

	o, err := c.Order(ctx, d.orderID)
	status := order.Unknown
	if err == nil {
		status = o.Status()
	}
	c.rowRequeued(ctx, d.orderID, d.seq, status, c.now())
	d.resolve(ErrDischargeCancelled)
	return nil
}

// Shutdown rejects new discharges and waits for the outstanding ones. When
// ctx ends first the remaining timers keep running and ctx's error is returned.
func (c *Controller) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	c.closed = true
	lines := make([]*line, 0, len(c.lines))
	for _, l := range c.lines {
		lines = append(lines, l)
	}
	c.mu.Unlock()

	for _, l := range lines {
		l.mu.Lock()
		d := l.discharge
		l.mu.Unlock()
		if d == nil {
			continue
		}
		select {
		case <-d.Done():
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (c *Controller) line(orderID kernel.UUID) (*line, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrControllerClosed
	}
	l, ok := c.lines[orderID]
	if !ok {
		l = &line{selected: make(map[int]kernel.UUID)}
		c.lines[orderID] = l
	}
	return l, nil
}

func (c *Controller) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Controller) now() time.Time {
	return c.clock().UTC()
}

func (c *Controller) emit(ctx context.Context, event ports.ProductionEvent) {
	if err := c.events.Publish(ctx, event); err != nil {
		c.logger.WarnContext(ctx, "event not published", "type", string(event.Type), "error", err)
	}
}

func (c *Controller) statusChanged(ctx context.Context, orderID kernel.UUID, to order.Status, at time.Time) {
	c.metrics.StatusChanged(to.String())
	c.emit(ctx, ports.ProductionEvent{
		Type:    ports.EventStatusChanged,
		OrderID: orderID,
		Status:  to.String(),
		At:      at,
	})
}

func (c *Controller) rowRequeued(ctx context.Context, orderID kernel.UUID, seq int, status order.Status, at time.Time) {
	c.metrics.RowRequeued()
	c.emit(ctx, ports.ProductionEvent{
		Type:    ports.EventRowRequeued,
		OrderID: orderID,
		RowSeq:  seq,
		Status:  status.String(),
		At:      at,
	})
}

type orderUoWFactory func() commands.OrderUoW

func (f orderUoWFactory) Create() commands.OrderUoW { return f() }

type uowFactory func() commands.UoW

func (f uowFactory) Create() commands.UoW { return f() }

type noEvents struct{}

func (noEvents) Publish(context.Context, ports.ProductionEvent) error { return nil }

type noMetrics struct{}

func (noMetrics) RowStarted()                {}
func (noMetrics) RowCompleted(time.Duration) {}
func (noMetrics) RowRequeued()               {}
func (noMetrics) RunLogged()                 {}
func (noMetrics) StatusChanged(string)       {}
