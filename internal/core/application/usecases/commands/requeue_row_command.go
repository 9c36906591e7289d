package commands

import (
	"errors"
	"fmt"

	"batchplant/internal/core/domain/model/kernel"
	"batchplant/internal/pkg/errs"
	"batchplant/internal/pkg/guard"
)

var ErrRequeueRowCommandIsNotConstructed = errors.New(
	"RequeueRowCommand must be created via NewRequeueRowCommand constructor",
)

// RequeueRowCommand returns an interrupted running row to pending.
type RequeueRowCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	seq     int

	guard guard.ConstructorGuard
}

func NewRequeueRowCommand(orderID kernel.UUID, seq int) (RequeueRowCommand, error) {
	if err := orderID.Validate(); err != nil {
		return RequeueRowCommand{}, errs.NewValueIsRequiredErrorWithCause("orderID", err)
	}
	if seq < 1 {
		return RequeueRowCommand{}, errs.NewValueIsInvalidErrorWithCause("seq", fmt.Errorf("%d is less than 1", seq))
	}

	return RequeueRowCommand{orderID: orderID, seq: seq, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the command was created through the constructor.
func (c RequeueRowCommand) Validate() error {
	return c.guard.Validate(ErrRequeueRowCommandIsNotConstructed)
}

func (c RequeueRowCommand) OrderID() kernel.UUID { return c.orderID }

func (c RequeueRowCommand) Seq() int { return c.seq }
