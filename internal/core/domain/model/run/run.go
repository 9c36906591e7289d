// Package run models the vehicle load that carries one batch of an order.
package run

import (
	"errors"
	"fmt"
	"time"

	"batchplant/internal/core/domain/model/kernel"
	"batchplant/internal/pkg/errs"
)

// ErrRunIsNotConstructed is returned when a Run was not created through NewRun.
var ErrRunIsNotConstructed = errors.New("Run must be created via NewRun constructor")

// Run records that a vehicle left with the rows start..end of an order.
// Runs are immutable once created; their sequence is 1..n within the order
// and their ranges never overlap.
type Run struct {
	id        kernel.UUID
	orderID   kernel.UUID
	vehicleID kernel.UUID
	seq       int
	startSeq  int
	endSeq    int
	volume    kernel.Volume
	note      string
	createdAt time.Time

	isConstructed bool
}

// NewRun validates and creates a run.
//
// Example:
//
//	r, err := run.NewRun(kernel.NewUUID(), orderID, 1, truckID, 1, 15,
//	    15*kernel.CubicMetre, run.DefaultNote(1, 1, 15), time.Now())
func NewRun(
	id, orderID kernel.UUID,
	seq int,
	vehicleID kernel.UUID,
	startSeq, endSeq int,
	volume kernel.Volume,
	note string,
	createdAt time.Time,
) (*Run, error) {
	r := &Run{
		note:          note,
		createdAt:     createdAt,
		isConstructed: true,
	}

	if err := errors.Join(
		r.setIDs(id, orderID, vehicleID),
		r.setSeq(seq),
		r.setRange(startSeq, endSeq),
		r.setVolume(volume),
	); err != nil {
		return nil, err
	}

	return r, nil
}

// RestoreRun rebuilds a run read from storage with the same checks as NewRun.
func RestoreRun(
	id, orderID kernel.UUID,
	seq int,
	vehicleID kernel.UUID,
	startSeq, endSeq int,
	volume kernel.Volume,
	note string,
	createdAt time.Time,
) (*Run, error) {
	return NewRun(id, orderID, seq, vehicleID, startSeq, endSeq, volume, note, createdAt)
}

// DefaultNote is the note written on runs logged without operator input.
func DefaultNote(batchNo, startSeq, endSeq int) string {
	return fmt.Sprintf("Auto-log: Batch-%d (%d..%d)", batchNo, startSeq, endSeq)
}

// Validate ensures the Run was properly constructed.
func (r *Run) Validate() error {
	if r == nil || !r.isConstructed {
		return ErrRunIsNotConstructed
	}
	return nil
}

func (r *Run) ID() kernel.UUID { return r.id }

func (r *Run) OrderID() kernel.UUID { return r.orderID }

func (r *Run) VehicleID() kernel.UUID { return r.vehicleID }

// Seq returns the load number of the run within its order, starting at 1.
func (r *Run) Seq() int { return r.seq }

func (r *Run) StartSeq() int { return r.startSeq }

func (r *Run) EndSeq() int { return r.endSeq }

// Volume returns the planned volume of the covered rows.
func (r *Run) Volume() kernel.Volume { return r.volume }

func (r *Run) Note() string { return r.note }

func (r *Run) CreatedAt() time.Time { return r.createdAt }

// Covers reports whether row seq belongs to this run.
func (r *Run) Covers(seq int) bool {
	return seq >= r.startSeq && seq <= r.endSeq
}

// Overlaps reports whether start..end shares at least one row with this run.
func (r *Run) Overlaps(start, end int) bool {
	return start <= r.endSeq && end >= r.startSeq
}

// Matches reports whether this run is exactly the assignment of start..end to vehicleID.
func (r *Run) Matches(start, end int, vehicleID kernel.UUID) bool {
	return r.startSeq == start && r.endSeq == end && r.vehicleID.IsEqual(vehicleID)
}

func (r *Run) setIDs(id, orderID, vehicleID kernel.UUID) error {
	if err := errors.Join(
		id.Validate(),
		wrapRequired("orderID", orderID.Validate()),
		wrapRequired("vehicleID", vehicleID.Validate()),
	); err != nil {
		return err
	}
	r.id, r.orderID, r.vehicleID = id, orderID, vehicleID
	return nil
}

func (r *Run) setSeq(seq int) error {
	if seq < 1 {
		return errs.NewValueIsInvalidErrorWithCause("run seq", fmt.Errorf("%d is less than 1", seq))
	}
	r.seq = seq
	return nil
}

func (r *Run) setRange(start, end int) error {
	if start < 1 || end < start {
		return errs.NewValueIsInvalidErrorWithCause("row range", fmt.Errorf("%d..%d is not a valid range", start, end))
	}
	r.startSeq, r.endSeq = start, end
	return nil
}

func (r *Run) setVolume(volume kernel.Volume) error {
	if !volume.IsPositive() {
		return errs.NewValueIsInvalidErrorWithCause("run volume", fmt.Errorf("%s is not positive", volume))
	}
	r.volume = volume
	return nil
}

func wrapRequired(param string, err error) error {
	if err == nil {
		return nil
	}
	return errs.NewValueIsRequiredErrorWithCause(param, err)
}
