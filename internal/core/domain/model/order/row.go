package order

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"batchplant/internal/core/domain/model/kernel"
	"batchplant/internal/pkg/errs"
)

// RowState is the production state of a single row.
// Rows only move forward: Pending -> Running -> Done. The single exception is
// Order.RequeueRow, which returns an interrupted running row to Pending.
type RowState int

const (
	RowStateUnknown RowState = iota
	RowPending
	RowRunning
	RowDone
)

func getRowStateStrings() map[RowState]string {
	return map[RowState]string{
		RowStateUnknown: "unknown",
		RowPending:      "pending",
		RowRunning:      "running",
		RowDone:         "done",
	}
}

func (s RowState) String() string {
	if str, ok := getRowStateStrings()[s]; ok {
		return str
	}
	return "unknown"
}

// Validate rejects RowStateUnknown and out-of-range values.
func (s RowState) Validate() error {
	if s < RowPending || s > RowDone {
		return errs.NewValueIsInvalidErrorWithCause("row state is invalid", fmt.Errorf("%d is not a valid row state", s))
	}
	return nil
}

// ParseRowState is the inverse of RowState.String.
func ParseRowState(s string) (RowState, error) {
	for state, name := range getRowStateStrings() {
		if state != RowStateUnknown && strings.EqualFold(name, s) {
			return state, nil
		}
	}
	return RowStateUnknown, errs.NewValueIsInvalidErrorWithCause("row state is invalid", fmt.Errorf("%q is not a valid row state", s))
}

// Row is one unit-volume work item of an order. Rows are owned by their Order
// and are only changed through the ledger methods of the aggregate; values
// handed out by Order are snapshots.
type Row struct {
	seq       int
	planned   kernel.Volume
	state     RowState
	actual    kernel.Measurement
	startedAt time.Time
	doneAt    time.Time
	runID     *kernel.UUID
}

// NewRow creates a pending row. seq is 1-based.
func NewRow(seq int, planned kernel.Volume) (Row, error) {
	if seq < 1 {
		return Row{}, errs.NewValueIsInvalidErrorWithCause("seq", fmt.Errorf("%d is less than 1", seq))
	}
	if !planned.IsPositive() {
		return Row{}, errs.NewValueIsInvalidErrorWithCause("planned volume", fmt.Errorf("%s is not positive", planned))
	}
	return Row{seq: seq, planned: planned, state: RowPending}, nil
}

// RestoreRow rebuilds a row read from storage. Zero times mean "not set".
func RestoreRow(
	seq int,
	planned kernel.Volume,
	state RowState,
	actual kernel.Measurement,
	startedAt, doneAt time.Time,
	runID *kernel.UUID,
) (Row, error) {
	row, err := NewRow(seq, planned)
	if err != nil {
		return Row{}, err
	}
	if err = state.Validate(); err != nil {
		return Row{}, err
	}
	if actual != nil && state != RowDone {
		return Row{}, errs.NewInvalidStateError(fmt.Sprintf("row %d", seq), errors.New("only done rows carry a measurement"))
	}
	if runID != nil {
		if err = runID.Validate(); err != nil {
			return Row{}, err
		}
		if state != RowDone {
			return Row{}, errs.NewInvalidStateError(fmt.Sprintf("row %d", seq), errors.New("only done rows belong to a run"))
		}
		id := *runID
		row.runID = &id
	}

	row.state = state
	row.actual = actual.Clone()
	row.startedAt = startedAt
	row.doneAt = doneAt
	return row, nil
}

// Seq returns the 1-based position of the row within its order.
func (r Row) Seq() int { return r.seq }

// PlannedVolume returns the volume the row is planned to produce.
func (r Row) PlannedVolume() kernel.Volume { return r.planned }

func (r Row) State() RowState { return r.state }

func (r Row) IsPending() bool { return r.state == RowPending }

func (r Row) IsRunning() bool { return r.state == RowRunning }

func (r Row) IsDone() bool { return r.state == RowDone }

// Actual returns a copy of the measured materials, nil until the row is done.
func (r Row) Actual() kernel.Measurement { return r.actual.Clone() }

// StartedAt returns the start of the current or last discharge, zero if none.
func (r Row) StartedAt() time.Time { return r.startedAt }

// DoneAt returns the completion time, zero while not done.
func (r Row) DoneAt() time.Time { return r.doneAt }

// RunID returns the run that carried this row away, nil if not yet assigned.
func (r Row) RunID() *kernel.UUID {
	if r.runID == nil {
		return nil
	}
	id := *r.runID
	return &id
}

// PlanRows splits total into 1 m³ rows. The last row takes the remainder, so
// 2.5 m³ becomes rows of 1, 1 and 0.5 m³.
func PlanRows(total kernel.Volume) ([]Row, error) {
	if !total.IsPositive() {
		return nil, errs.NewValueIsInvalidErrorWithCause("total volume", fmt.Errorf("%s is not positive", total))
	}

	rows := make([]Row, 0, int((total+kernel.CubicMetre-1)/kernel.CubicMetre))
	for seq, remaining := 1, total; remaining > 0; seq++ {
		take := min(kernel.CubicMetre, remaining)
		row, err := NewRow(seq, take)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
		remaining -= take
	}
	return rows, nil
}
