package production

import (
	"context"
	"errors"
	"sync"
	"time"

	"batchplant/internal/core/domain/model/kernel"
)

var (
	// ErrDischargeCancelled is the result of a discharge stopped before its
	// timer expired.
	ErrDischargeCancelled = errors.New("discharge cancelled")
	// ErrBatchNotCurrent is returned by RunBatch when an earlier batch still
	// has rows to produce.
	ErrBatchNotCurrent = errors.New("batch is not the current batch")
	// ErrControllerClosed is returned once Shutdown has been called.
	ErrControllerClosed = errors.New("controller is shut down")
)

// Discharge is the handle of one row being produced. The row completes when
// the timer expires; Done is closed once the outcome is known.
type Discharge struct {
	orderID   kernel.UUID
	seq       int
	startedAt time.Time

	// timer and cancelled are guarded by the owning line's lock.
	timer     *time.Timer
	cancelled bool

	done   chan struct{}
	once   sync.Once
	err    error
	cancel func(ctx context.Context, d *Discharge) error
}

func newDischarge(orderID kernel.UUID, seq int, startedAt time.Time) *Discharge {
	return &Discharge{
		orderID:   orderID,
		seq:       seq,
		startedAt: startedAt,
		done:      make(chan struct{}),
	}
}

func (d *Discharge) OrderID() kernel.UUID { return d.orderID }

// Seq is the row being discharged.
func (d *Discharge) Seq() int { return d.seq }

func (d *Discharge) StartedAt() time.Time { return d.startedAt }

// Done is closed when the discharge has completed, failed or was cancelled.
func (d *Discharge) Done() <-chan struct{} { return d.done }

// Err reports the outcome after Done is closed: nil when the row completed.
func (d *Discharge) Err() error {
	select {
	case <-d.done:
		return d.err
	default:
		return nil
	}
}

// Wait blocks until the discharge is over or ctx ends.
func (d *Discharge) Wait(ctx context.Context) error {
	select {
	case <-d.done:
		return d.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Cancel stops the timer and returns the row to pending. It fails with a
// ConflictError when the timer has already fired.
func (d *Discharge) Cancel(ctx context.Context) error {
	return d.cancel(ctx, d)
}

func (d *Discharge) resolve(err error) {
	d.once.Do(func() {
		d.err = err
		close(d.done)
	})
}

// stop prevents the completion callback from running. It reports false when
// the timer already fired; the callback then applies the completion.
func (d *Discharge) stop() bool {
	if d.cancelled || !d.timer.Stop() {
		return false
	}
	d.cancelled = true
	return true
}
