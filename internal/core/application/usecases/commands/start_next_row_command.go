package commands

import (
	"errors"
	"time"

	"batchplant/internal/core/domain/model/kernel"
	"batchplant/internal/pkg/errs"
	"batchplant/internal/pkg/guard"
)

var ErrStartNextRowCommandIsNotConstructed = errors.New(
	"StartNextRowCommand must be created via NewStartNextRowCommand constructor",
)

// StartNextRowCommand begins the lowest pending row of a running order at the
// given instant.
type StartNextRowCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	at      time.Time

	guard guard.ConstructorGuard
}

func NewStartNextRowCommand(orderID kernel.UUID, at time.Time) (StartNextRowCommand, error) {
	if err := orderID.Validate(); err != nil {
		return StartNextRowCommand{}, errs.NewValueIsRequiredErrorWithCause("orderID", err)
	}
	if at.IsZero() {
		return StartNextRowCommand{}, errs.NewValueIsRequiredError("at")
	}

	return StartNextRowCommand{orderID: orderID, at: at, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the command was created through the constructor.
func (c StartNextRowCommand) Validate() error {
	return c.guard.Validate(ErrStartNextRowCommandIsNotConstructed)
}

func (c StartNextRowCommand) OrderID() kernel.UUID { return c.orderID }

func (c StartNextRowCommand) At() time.Time { return c.at }
