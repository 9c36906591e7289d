package commands

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"batchplant/internal/core/domain/model/kernel"
	"batchplant/internal/pkg/errs"
	"batchplant/internal/pkg/guard"
)

var ErrLogRunCommandIsNotConstructed = errors.New(
	"LogRunCommand must be created via NewLogRunCommand constructor",
)

// LogRunCommand records that a vehicle left with rows startSeq..endSeq.
// Without a vehicle the batch's round-robin vehicle is used; an empty note
// becomes the default auto-log note.
type LogRunCommand struct { //nolint:recvcheck //using for validation
	orderID   kernel.UUID
	startSeq  int
	endSeq    int
	vehicleID *kernel.UUID
	note      string
	at        time.Time

	guard guard.ConstructorGuard
}

func NewLogRunCommand(
	orderID kernel.UUID,
	startSeq, endSeq int,
	vehicleID *kernel.UUID,
	note string,
	at time.Time,
) (LogRunCommand, error) {
	var errList []error
	if err := orderID.Validate(); err != nil {
		errList = append(errList, errs.NewValueIsRequiredErrorWithCause("orderID", err))
	}
	if startSeq < 1 || endSeq < startSeq {
		errList = append(errList, errs.NewValueIsInvalidErrorWithCause("row range",
			fmt.Errorf("%d..%d is not a valid range", startSeq, endSeq)))
	}
	if vehicleID != nil {
		if err := vehicleID.Validate(); err != nil {
			errList = append(errList, errs.NewValueIsInvalidErrorWithCause("vehicleID", err))
		}
	}
	if at.IsZero() {
		errList = append(errList, errs.NewValueIsRequiredError("at"))
	}
	if err := errors.Join(errList...); err != nil {
		return LogRunCommand{}, err
	}

	var v *kernel.UUID
	if vehicleID != nil {
		id := *vehicleID
		v = &id
	}
	return LogRunCommand{
		orderID:   orderID,
		startSeq:  startSeq,
		endSeq:    endSeq,
		vehicleID: v,
		note:      strings.TrimSpace(note),
		at:        at,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c LogRunCommand) Validate() error {
	return c.guard.Validate(ErrLogRunCommandIsNotConstructed)
}

func (c LogRunCommand) OrderID() kernel.UUID { return c.orderID }

func (c LogRunCommand) StartSeq() int { return c.startSeq }

func (c LogRunCommand) EndSeq() int { return c.endSeq }

// VehicleID returns the explicitly chosen vehicle or nil.
func (c LogRunCommand) VehicleID() *kernel.UUID {
	if c.vehicleID == nil {
		return nil
	}
	id := *c.vehicleID
	return &id
}

func (c LogRunCommand) Note() string { return c.note }

func (c LogRunCommand) At() time.Time { return c.at }
