package commands

import (
	"errors"
	"fmt"
	"strings"

	"batchplant/internal/core/domain/model/kernel"
	"batchplant/internal/core/domain/model/order"
	"batchplant/internal/pkg/errs"
	"batchplant/internal/pkg/guard"
)

var ErrChangeOrderStatusCommandIsNotConstructed = errors.New(
	"ChangeOrderStatusCommand must be created via NewChangeOrderStatusCommand constructor",
)

// StatusAction is an operator action on the order state machine.
type StatusAction string

const (
	ActionPause  StatusAction = "pause"
	ActionResume StatusAction = "resume"
	ActionStop   StatusAction = "stop"
)

// ParseStatusAction accepts pause, resume and stop in any case.
func ParseStatusAction(s string) (StatusAction, error) {
	a := StatusAction(strings.ToLower(strings.TrimSpace(s)))
	switch a {
	case ActionPause, ActionResume, ActionStop:
		return a, nil
	default:
		return "", errs.NewValueIsInvalidErrorWithCause("action", fmt.Errorf("unknown action %q", s))
	}
}

// Apply runs the action's transition on o.
func (a StatusAction) Apply(o *order.Order) error {
	switch a {
	case ActionPause:
		return o.Pause()
	case ActionResume:
		return o.Resume()
	case ActionStop:
		return o.Stop()
	default:
		return errs.NewValueIsInvalidErrorWithCause("action", fmt.Errorf("unknown action %q", string(a)))
	}
}

// Check reports whether the action is legal from status s without changing anything.
func (a StatusAction) Check(s order.Status) error {
	var err error
	switch a {
	case ActionPause:
		_, err = s.Pause()
	case ActionResume:
		_, err = s.Resume()
	case ActionStop:
		_, err = s.Stop()
	default:
		err = errs.NewValueIsInvalidErrorWithCause("action", fmt.Errorf("unknown action %q", string(a)))
	}
	return err
}

// ChangeOrderStatusCommand pauses, resumes or stops an order. With
// requeueRunning set, a pause or stop also returns the running row to pending
// in the same transaction.
type ChangeOrderStatusCommand struct { //nolint:recvcheck //using for validation
	orderID        kernel.UUID
	action         StatusAction
	requeueRunning bool

	guard guard.ConstructorGuard
}

// NewChangeOrderStatusCommand creates a status change command.
// requeueRunning is ignored for resume.
func NewChangeOrderStatusCommand(
	orderID kernel.UUID,
	action StatusAction,
	requeueRunning bool,
) (ChangeOrderStatusCommand, error) {
	if err := orderID.Validate(); err != nil {
		return ChangeOrderStatusCommand{}, errs.NewValueIsRequiredErrorWithCause("orderID", err)
	}
	if _, err := ParseStatusAction(string(action)); err != nil {
		return ChangeOrderStatusCommand{}, err
	}

	return ChangeOrderStatusCommand{
		orderID:        orderID,
		action:         action,
		requeueRunning: requeueRunning && action != ActionResume,
		guard:          guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c ChangeOrderStatusCommand) Validate() error {
	return c.guard.Validate(ErrChangeOrderStatusCommandIsNotConstructed)
}

func (c ChangeOrderStatusCommand) OrderID() kernel.UUID { return c.orderID }

func (c ChangeOrderStatusCommand) Action() StatusAction { return c.action }

func (c ChangeOrderStatusCommand) RequeueRunning() bool { return c.requeueRunning }
