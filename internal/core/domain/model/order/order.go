package order

import (
	"errors"
	"fmt"
	"time"

	"batchplant/internal/core/domain/model/kernel"
	"batchplant/internal/pkg/errs"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order was not created through
	// NewOrder or RestoreOrder.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder constructor")

	// ErrNothingPending is returned when a row is requested but none is pending.
	ErrNothingPending = errors.New("nothing pending")

	ErrRowNotPending      = errors.New("row is not pending")
	ErrRowNotRunning      = errors.New("row is not running")
	ErrRowNotDone         = errors.New("row is not done")
	ErrAnotherRowRunning  = errors.New("another row is running")
	ErrRowAlreadyAssigned = errors.New("row already belongs to another run")
)

// Order is the aggregate root of production. It owns the ordered row ledger
// and the order state machine, so every mutation of either goes through it.
//
// Order follows these invariants:
//   - rows are numbered densely from 1 and their planned volumes add up to the total
//   - at most one row is running
//   - a Done order has every row done
//   - rows move Pending -> Running -> Done; only RequeueRow moves one back
//
// Order is not safe for concurrent use. The production controller serializes
// access per order.
type Order struct {
	id          kernel.UUID
	clientID    kernel.UUID
	recipeID    kernel.UUID
	totalVolume kernel.Volume
	status      Status
	createdAt   time.Time
	rows        []Row

	isConstructed bool
}

// NewOrder places a draft order and plans its rows.
//
// Example:
//
//	total, _ := kernel.VolumeFromCubicMetres(32)
//	o, err := order.NewOrder(kernel.NewUUID(), clientID, recipeID, total, time.Now())
//	if err != nil {
//	    return err
//	}
//	fmt.Println(o.TotalCount()) // 32
func NewOrder(id, clientID, recipeID kernel.UUID, totalVolume kernel.Volume, createdAt time.Time) (*Order, error) {
	o := &Order{
		status:        Draft,
		createdAt:     createdAt,
		isConstructed: true,
	}

	if err := errors.Join(
		o.setID(id),
		o.setClientID(clientID),
		o.setRecipeID(recipeID),
		o.setTotalVolume(totalVolume),
	); err != nil {
		return nil, err
	}

	rows, err := PlanRows(totalVolume)
	if err != nil {
		return nil, err
	}
	o.rows = rows

	return o, nil
}

// RestoreOrder rebuilds an order from storage and re-checks the ledger
// invariants, so corrupted data surfaces as an InvalidStateError.
func RestoreOrder(
	id, clientID, recipeID kernel.UUID,
	totalVolume kernel.Volume,
	status Status,
	createdAt time.Time,
	rows []Row,
) (*Order, error) {
	o := &Order{
		createdAt:     createdAt,
		isConstructed: true,
	}

	if err := errors.Join(
		o.setID(id),
		o.setClientID(clientID),
		o.setRecipeID(recipeID),
		o.setTotalVolume(totalVolume),
		status.Validate(),
	); err != nil {
		return nil, err
	}
	o.status = status

	if err := o.setRows(rows); err != nil {
		return nil, err
	}

	return o, nil
}

// Validate ensures the Order was properly constructed.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	return nil
}

// IsEqual compares orders by identity.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

func (o *Order) ID() kernel.UUID { return o.id }

func (o *Order) ClientID() kernel.UUID { return o.clientID }

func (o *Order) RecipeID() kernel.UUID { return o.recipeID }

// TotalVolume returns the ordered volume, the sum of all rows.
func (o *Order) TotalVolume() kernel.Volume { return o.totalVolume }

func (o *Order) Status() Status { return o.status }

func (o *Order) CreatedAt() time.Time { return o.createdAt }

// Pause stops new rows from being started. A discharge already in progress is
// handled by the controller's interrupt policy, not here.
func (o *Order) Pause() error {
	next, err := o.status.Pause()
	if err != nil {
		return err
	}
	o.status = next
	return nil
}

// Resume moves the order back to Running. An order whose rows were all finished
// while paused or stopped passes through Running and completes immediately.
func (o *Order) Resume() error {
	next, err := o.status.Resume()
	if err != nil {
		return err
	}
	o.status = next
	o.completeIfFinished()
	return nil
}

// Stop halts the order. See Pause for in-flight rows.
func (o *Order) Stop() error {
	next, err := o.status.Stop()
	if err != nil {
		return err
	}
	o.status = next
	return nil
}

func (o *Order) completeIfFinished() {
	if o.status != Running || !o.AllDone() {
		return
	}
	if next, err := o.status.Complete(); err == nil {
		o.status = next
	}
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setClientID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("clientID", err)
	}
	o.clientID = id
	return nil
}

func (o *Order) setRecipeID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("recipeID", err)
	}
	o.recipeID = id
	return nil
}

func (o *Order) setTotalVolume(total kernel.Volume) error {
	if !total.IsPositive() {
		return errs.NewValueIsInvalidErrorWithCause("volume is invalid", fmt.Errorf("%s is not greater than 0", total))
	}
	o.totalVolume = total
	return nil
}

func (o *Order) setRows(rows []Row) error {
	if len(rows) == 0 {
		return errs.NewInvalidStateError("order ledger", errors.New("order has no rows"))
	}

	var sum kernel.Volume
	running := 0
	restored := make([]Row, len(rows))
	for i, r := range rows {
		if r.seq != i+1 {
			return errs.NewInvalidStateError("order ledger", fmt.Errorf("row %d found at position %d", r.seq, i+1))
		}
		if r.state == RowRunning {
			running++
		}
		sum += r.planned
		restored[i] = r
	}

	if sum != o.totalVolume {
		return errs.NewInvalidStateError("order ledger", fmt.Errorf("rows add up to %s, order is %s", sum, o.totalVolume))
	}
	if running > 1 {
		return errs.NewInvalidStateError("order ledger", fmt.Errorf("%d rows running", running))
	}

	o.rows = restored
	if o.status == Done && !o.AllDone() {
		return errs.NewInvalidStateError("order ledger", errors.New("done order has unfinished rows"))
	}
	return nil
}
