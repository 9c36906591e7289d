package order

import (
	"errors"
	"fmt"
	"time"

	"batchplant/internal/core/domain/model/kernel"
	"batchplant/internal/pkg/errs"
)

// Rows returns a snapshot of the ledger in sequence order.
func (o *Order) Rows() []Row {
	out := make([]Row, len(o.rows))
	copy(out, o.rows)
	return out
}

// Row returns the row with the given sequence number.
func (o *Order) Row(seq int) (Row, error) {
	idx, err := o.index(seq)
	if err != nil {
		return Row{}, err
	}
	return o.rows[idx], nil
}

// TotalCount returns the number of rows.
func (o *Order) TotalCount() int { return len(o.rows) }

// DoneCount returns the number of done rows.
func (o *Order) DoneCount() int {
	n := 0
	for _, r := range o.rows {
		if r.state == RowDone {
			n++
		}
	}
	return n
}

// AllDone reports whether every row is done.
func (o *Order) AllDone() bool {
	return o.DoneCount() == len(o.rows)
}

// RunningRow returns the row currently being discharged, if any.
func (o *Order) RunningRow() (Row, bool) {
	for _, r := range o.rows {
		if r.state == RowRunning {
			return r, true
		}
	}
	return Row{}, false
}

// NextPending returns the lowest-sequence pending row. The boolean is false
// when no row is pending. More than one running row means the ledger is
// corrupt and yields an InvalidStateError.
func (o *Order) NextPending() (Row, bool, error) {
	running := 0
	var next *Row
	for i := range o.rows {
		switch o.rows[i].state {
		case RowRunning:
			running++
		case RowPending:
			if next == nil {
				next = &o.rows[i]
			}
		}
	}

	if running > 1 {
		return Row{}, false, errs.NewInvalidStateError("order ledger", fmt.Errorf("%d rows running", running))
	}
	if next == nil {
		return Row{}, false, nil
	}
	return *next, true, nil
}

// BeginRow moves a pending row to running. It fails with a ConflictError when
// the row is not pending or another row is already running.
func (o *Order) BeginRow(seq int, at time.Time) error {
	idx, err := o.index(seq)
	if err != nil {
		return err
	}
	if o.rows[idx].state != RowPending {
		return errs.NewConflictErrorWithCause(fmt.Sprintf("row %d", seq), ErrRowNotPending)
	}
	if running, ok := o.RunningRow(); ok {
		return errs.NewConflictErrorWithCause(fmt.Sprintf("row %d", seq),
			fmt.Errorf("%w: row %d", ErrAnotherRowRunning, running.seq))
	}

	o.rows[idx].state = RowRunning
	o.rows[idx].startedAt = at
	return nil
}

// StartNextRow begins the next pending row of a running order.
//
// When nothing is pending it returns ErrNothingPending. If that is because
// every row is done, the order is completed first, so callers observe Done.
// A Done order also answers ErrNothingPending rather than an illegal transition.
func (o *Order) StartNextRow(at time.Time) (Row, error) {
	if o.status == Done {
		return Row{}, ErrNothingPending
	}
	if err := o.status.ValidateBeginRow(); err != nil {
		return Row{}, err
	}

	next, ok, err := o.NextPending()
	if err != nil {
		return Row{}, err
	}
	if !ok {
		o.completeIfFinished()
		return Row{}, ErrNothingPending
	}

	if err = o.BeginRow(next.seq, at); err != nil {
		return Row{}, err
	}
	return o.rows[next.seq-1], nil
}

// CompleteRow records the measured materials of a running row and marks it
// done. A running order whose last row completes becomes Done. Rows may also
// complete while the order is paused or stopped, when an in-flight discharge
// is allowed to drain.
func (o *Order) CompleteRow(seq int, actual kernel.Measurement, at time.Time) error {
	idx, err := o.index(seq)
	if err != nil {
		return err
	}
	if actual == nil {
		return errs.NewValueIsRequiredError("actual measurement")
	}
	if o.rows[idx].state != RowRunning {
		return errs.NewConflictErrorWithCause(fmt.Sprintf("row %d", seq), ErrRowNotRunning)
	}

	o.rows[idx].state = RowDone
	o.rows[idx].actual = actual.Clone()
	o.rows[idx].doneAt = at
	o.completeIfFinished()
	return nil
}

// RequeueRow returns an interrupted running row to pending so that it is
// produced again from scratch.
func (o *Order) RequeueRow(seq int) error {
	idx, err := o.index(seq)
	if err != nil {
		return err
	}
	if o.rows[idx].state != RowRunning {
		return errs.NewConflictErrorWithCause(fmt.Sprintf("row %d", seq), ErrRowNotRunning)
	}

	o.rows[idx].state = RowPending
	o.rows[idx].startedAt = time.Time{}
	return nil
}

// RowsInRange returns the rows start..end inclusive.
func (o *Order) RowsInRange(start, end int) ([]Row, error) {
	if start > end {
		return nil, errs.NewValueIsInvalidErrorWithCause("row range", fmt.Errorf("start %d is after end %d", start, end))
	}
	first, err := o.index(start)
	if err != nil {
		return nil, err
	}
	last, err := o.index(end)
	if err != nil {
		return nil, err
	}

	out := make([]Row, last-first+1)
	copy(out, o.rows[first:last+1])
	return out, nil
}

// AssignRun records runID on every row of start..end. Every row must be done
// and not yet carried by a different run.
func (o *Order) AssignRun(start, end int, runID kernel.UUID) error {
	if err := runID.Validate(); err != nil {
		return err
	}
	rows, err := o.RowsInRange(start, end)
	if err != nil {
		return err
	}
	for _, r := range rows {
		if r.state != RowDone {
			return errs.NewConflictErrorWithCause(fmt.Sprintf("row %d", r.seq), ErrRowNotDone)
		}
		if r.runID != nil && !r.runID.IsEqual(runID) {
			return errs.NewConflictErrorWithCause(fmt.Sprintf("row %d", r.seq), ErrRowAlreadyAssigned)
		}
	}

	for i := start - 1; i < end; i++ {
		id := runID
		o.rows[i].runID = &id
	}
	return nil
}

func (o *Order) index(seq int) (int, error) {
	if seq < 1 || seq > len(o.rows) {
		return 0, errs.NewObjectNotFoundErrorWithCause("rowSeq", seq,
			errors.New("row sequence is outside the order"))
	}
	return seq - 1, nil
}
