package services

import (
	"errors"
	"fmt"
	"time"

	"batchplant/internal/core/domain/model/kernel"
	"batchplant/internal/core/domain/model/order"
	"batchplant/internal/core/domain/model/run"
	"batchplant/internal/core/domain/model/vehicle"
	"batchplant/internal/pkg/errs"
)

var (
	// ErrNoVehicleAvailable is returned when round-robin selection has no vehicle to pick.
	ErrNoVehicleAvailable = errors.New("no vehicle available")

	// ErrBatchIncomplete is returned when a run is requested for a batch that
	// still has rows which are not done.
	ErrBatchIncomplete = errors.New("batch incomplete")

	// ErrNotBatchBoundary is returned when a run range does not match a batch.
	ErrNotBatchBoundary = errors.New("range is not a batch boundary")

	// ErrRunOverlaps is returned when a range intersects a run of another
	// range or vehicle.
	ErrRunOverlaps = errors.New("range overlaps an existing run")
)

// Assignment is the outcome of RunAssigner.LogRun. Created is false when an
// identical run already existed and was returned unchanged.
type Assignment struct {
	Run     *run.Run
	Batch   Batch
	Created bool
}

// RunAssigner is a domain service mapping batches to vehicles and creating the
// Run that records a vehicle leaving with a batch.
//
// Business rules:
//   - an explicitly selected vehicle wins, otherwise vehicles rotate by batch number
//   - a run covers exactly one batch, and every row of it is done
//   - logging the same range with the same vehicle again returns the first run
//   - a range can never be carried by two different runs
//
// Example usage:
//
//	assigner, _ := services.NewRunAssigner(15)
//	vehicleID, err := assigner.AssignVehicle(batch, vehicles, nil)
//	if err != nil {
//	    return err
//	}
//	a, err := assigner.LogRun(o, batch.StartSeq, batch.EndSeq, vehicleID, "", runs, time.Now())
type RunAssigner struct {
	capacityUnits int
}

// NewRunAssigner creates an assigner cutting batches of capacityUnits rows.
func NewRunAssigner(capacityUnits int) (RunAssigner, error) {
	if capacityUnits <= 0 {
		return RunAssigner{}, errs.NewValueIsInvalidErrorWithCause("capacityUnits",
			fmt.Errorf("%d is not greater than 0", capacityUnits))
	}
	return RunAssigner{capacityUnits: capacityUnits}, nil
}

// CapacityUnits returns the batch size in rows.
func (a RunAssigner) CapacityUnits() int {
	return a.capacityUnits
}

// Batches partitions the order's ledger.
func (a RunAssigner) Batches(o *order.Order) ([]Batch, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	return ComputeBatches(o.Rows(), a.capacityUnits)
}

// AssignVehicle returns selected when given, otherwise
// vehicles[(batch.Number-1) mod len(vehicles)].
func (a RunAssigner) AssignVehicle(batch Batch, vehicles []*vehicle.Vehicle, selected *kernel.UUID) (kernel.UUID, error) {
	if selected != nil {
		if err := selected.Validate(); err != nil {
			return kernel.UUID{}, err
		}
		return *selected, nil
	}
	if len(vehicles) == 0 {
		return kernel.UUID{}, errs.NewPreconditionFailedError(batch.Label(), ErrNoVehicleAvailable)
	}
	if batch.Number < 1 {
		return kernel.UUID{}, errs.NewValueIsInvalidErrorWithCause("batchNo", fmt.Errorf("%d is less than 1", batch.Number))
	}
	return vehicles[(batch.Number-1)%len(vehicles)].ID(), nil
}

// LogRun creates the run carrying rows start..end with vehicleID and stamps the
// covered rows of o with its id. existing must hold every run of the order.
// An empty note is replaced by run.DefaultNote.
func (a RunAssigner) LogRun(
	o *order.Order,
	start, end int,
	vehicleID kernel.UUID,
	note string,
	existing []*run.Run,
	at time.Time,
) (Assignment, error) {
	if err := vehicleID.Validate(); err != nil {
		return Assignment{}, errs.NewValueIsRequiredErrorWithCause("vehicleID", err)
	}

	batches, err := a.Batches(o)
	if err != nil {
		return Assignment{}, err
	}
	batch, ok := findBoundary(batches, start, end)
	if !ok {
		return Assignment{}, errs.NewValueIsInvalidErrorWithCause(fmt.Sprintf("row range %d..%d", start, end), ErrNotBatchBoundary)
	}

	nextSeq := 1
	for _, r := range existing {
		if r.Matches(start, end, vehicleID) {
			return Assignment{Run: r, Batch: batch, Created: false}, nil
		}
		if r.Overlaps(start, end) {
			return Assignment{}, errs.NewConflictErrorWithCause(batch.Label(),
				fmt.Errorf("%w: run %d (%d..%d)", ErrRunOverlaps, r.Seq(), r.StartSeq(), r.EndSeq()))
		}
		nextSeq = max(nextSeq, r.Seq()+1)
	}

	if batch.Status != BatchDone {
		return Assignment{}, errs.NewPreconditionFailedError(batch.Label(),
			fmt.Errorf("%w: %d of %d rows done", ErrBatchIncomplete, batch.DoneCount, batch.TotalCount))
	}

	if note == "" {
		note = run.DefaultNote(batch.Number, start, end)
	}
	r, err := run.NewRun(kernel.NewUUID(), o.ID(), nextSeq, vehicleID, start, end, batch.Volume, note, at)
	if err != nil {
		return Assignment{}, err
	}
	if err = o.AssignRun(start, end, r.ID()); err != nil {
		return Assignment{}, err
	}

	return Assignment{Run: r, Batch: batch, Created: true}, nil
}

// UnloggedBatches returns the done batches no run covers yet.
func (a RunAssigner) UnloggedBatches(o *order.Order, existing []*run.Run) ([]Batch, error) {
	batches, err := a.Batches(o)
	if err != nil {
		return nil, err
	}

	out := make([]Batch, 0)
	for _, b := range batches {
		if b.Status != BatchDone {
			continue
		}
		covered := false
		for _, r := range existing {
			if r.Overlaps(b.StartSeq, b.EndSeq) {
				covered = true
				break
			}
		}
		if !covered {
			out = append(out, b)
		}
	}
	return out, nil
}

func findBoundary(batches []Batch, start, end int) (Batch, bool) {
	for _, b := range batches {
		if b.StartSeq == start && b.EndSeq == end {
			return b, true
		}
	}
	return Batch{}, false
}
