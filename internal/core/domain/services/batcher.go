package services

import (
	"fmt"

	"batchplant/internal/core/domain/model/kernel"
	"batchplant/internal/core/domain/model/order"
	"batchplant/internal/pkg/errs"
)

// DefaultCapacityUnits is the number of rows a truck mixer carries.
const DefaultCapacityUnits = 15

// BatchStatus is derived from the rows of a batch and never stored.
type BatchStatus int

const (
	BatchStatusUnknown BatchStatus = iota
	// BatchQueued batches have no row started yet.
	BatchQueued
	// BatchRunning batches have at least one row running or done.
	BatchRunning
	// BatchDone batches have every row done.
	BatchDone
)

func (s BatchStatus) String() string {
	switch s {
	case BatchQueued:
		return "queued"
	case BatchRunning:
		return "running"
	case BatchDone:
		return "done"
	default:
		return "unknown"
	}
}

// Batch is a contiguous slice of an order's rows that fills one vehicle.
// Batches are numbered from 1 and recomputed from the ledger on every read.
type Batch struct {
	Number       int
	StartSeq     int
	EndSeq       int
	DoneCount    int
	RunningCount int
	TotalCount   int
	Volume       kernel.Volume
	Status       BatchStatus
}

// Contains reports whether row seq falls inside the batch.
func (b Batch) Contains(seq int) bool {
	return seq >= b.StartSeq && seq <= b.EndSeq
}

// PendingCount is the number of rows not yet started.
func (b Batch) PendingCount() int {
	return b.TotalCount - b.DoneCount - b.RunningCount
}

// Label is the operator-facing name, e.g. "Batch-2 (16..30)".
func (b Batch) Label() string {
	return fmt.Sprintf("Batch-%d (%d..%d)", b.Number, b.StartSeq, b.EndSeq)
}

// ComputeBatches walks rows in order and cuts a new batch every capacityUnits
// rows; the last batch may be shorter. The result is deterministic, covers
// every row exactly once and has ceil(len(rows)/capacityUnits) entries.
//
// Example:
//
//	batches, _ := services.ComputeBatches(o.Rows(), 15) // 32 rows -> 15, 15, 2
func ComputeBatches(rows []order.Row, capacityUnits int) ([]Batch, error) {
	if capacityUnits <= 0 {
		return nil, errs.NewValueIsInvalidErrorWithCause("capacityUnits",
			fmt.Errorf("%d is not greater than 0", capacityUnits))
	}

	batches := make([]Batch, 0, (len(rows)+capacityUnits-1)/capacityUnits)
	for start := 0; start < len(rows); start += capacityUnits {
		end := min(start+capacityUnits, len(rows))
		b := Batch{
			Number:     len(batches) + 1,
			StartSeq:   rows[start].Seq(),
			EndSeq:     rows[end-1].Seq(),
			TotalCount: end - start,
		}
		for _, r := range rows[start:end] {
			b.Volume += r.PlannedVolume()
			switch {
			case r.IsDone():
				b.DoneCount++
			case r.IsRunning():
				b.RunningCount++
			}
		}
		b.Status = batchStatus(b)
		batches = append(batches, b)
	}
	return batches, nil
}

func batchStatus(b Batch) BatchStatus {
	switch {
	case b.DoneCount == b.TotalCount:
		return BatchDone
	case b.DoneCount > 0 || b.RunningCount > 0:
		return BatchRunning
	default:
		return BatchQueued
	}
}

// CurrentBatch returns the first batch that is not done, or the last batch
// when all are done. The boolean is false for an empty input.
func CurrentBatch(batches []Batch) (Batch, bool) {
	if len(batches) == 0 {
		return Batch{}, false
	}
	for _, b := range batches {
		if b.Status != BatchDone {
			return b, true
		}
	}
	return batches[len(batches)-1], true
}

// FindBatch returns the batch with the given number.
func FindBatch(batches []Batch, number int) (Batch, error) {
	if number < 1 || number > len(batches) {
		return Batch{}, errs.NewObjectNotFoundError("batchNo", number)
	}
	return batches[number-1], nil
}

// BatchOfRow returns the batch containing row seq.
func BatchOfRow(batches []Batch, seq int) (Batch, bool) {
	for _, b := range batches {
		if b.Contains(seq) {
			return b, true
		}
	}
	return Batch{}, false
}
