package commands

import (
	"errors"
	"fmt"
	"time"

	"batchplant/internal/core/domain/model/kernel"
	"batchplant/internal/pkg/errs"
	"batchplant/internal/pkg/guard"
)

var ErrCompleteRowCommandIsNotConstructed = errors.New(
	"CompleteRowCommand must be created via NewCompleteRowCommand constructor",
)

// CompleteRowCommand finishes the discharge of a running row. It serves both
// the timer expiry and the operator's manual mark-done.
type CompleteRowCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	seq     int
	at      time.Time

	guard guard.ConstructorGuard
}

func NewCompleteRowCommand(orderID kernel.UUID, seq int, at time.Time) (CompleteRowCommand, error) {
	cmd := CompleteRowCommand{at: at, guard: guard.NewConstructorGuard()}

	var idErr, seqErr, atErr error
	if err := orderID.Validate(); err != nil {
		idErr = errs.NewValueIsRequiredErrorWithCause("orderID", err)
	}
	if seq < 1 {
		seqErr = errs.NewValueIsInvalidErrorWithCause("rowSeq", fmt.Errorf("%d is less than 1", seq))
	}
	if at.IsZero() {
		atErr = errs.NewValueIsRequiredError("at")
	}
	if err := errors.Join(idErr, seqErr, atErr); err != nil {
		return CompleteRowCommand{}, err
	}

	cmd.orderID = orderID
	cmd.seq = seq
	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c CompleteRowCommand) Validate() error {
	return c.guard.Validate(ErrCompleteRowCommandIsNotConstructed)
}

func (c CompleteRowCommand) OrderID() kernel.UUID { return c.orderID }

func (c CompleteRowCommand) Seq() int { return c.seq }

func (c CompleteRowCommand) At() time.Time { return c.at }
