package commands

import (
	"context"

	"batchplant/internal/core/domain/model/order"
)

// ChangeOrderStatusResult describes the applied transition.
// RequeuedSeq is the row returned to pending, or zero.
type ChangeOrderStatusResult struct {
	From        order.Status
	To          order.Status
	RequeuedSeq int
}

// ChangeOrderStatusCommandHandler applies operator actions to the order state
// machine. Illegal transitions fail with errs.IllegalTransitionError and
// leave the stored order untouched.
//
// Example:
//
//	handler := NewChangeOrderStatusCommandHandler(uowFactory)
//	cmd, _ := NewChangeOrderStatusCommand(orderID, ActionPause, false)
//	res, err := handler.Handle(ctx, cmd)
//	switch {
//	case errors.Is(err, errs.ErrIllegalTransition):
//	    log.Println("order cannot be paused now")
//	case err != nil:
//	    log.Printf("pause failed: %v", err)
//	default:
//	    log.Printf("order is %s", res.To)
//	}
type ChangeOrderStatusCommandHandler struct {
	uowFactory OrderUoWFactory
}

// NewChangeOrderStatusCommandHandler creates a handler for status changes.
func NewChangeOrderStatusCommandHandler(uowFactory OrderUoWFactory) ChangeOrderStatusCommandHandler {
	return ChangeOrderStatusCommandHandler{uowFactory: uowFactory}
}

// Handle loads the order, applies the action and persists the result.
func (h ChangeOrderStatusCommandHandler) Handle(
	ctx context.Context,
	cmd ChangeOrderStatusCommand,
) (ChangeOrderStatusResult, error) {
	if err := cmd.Validate(); err != nil {
		return ChangeOrderStatusResult{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return ChangeOrderStatusResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()
	o, err := orderRepo.Get(ctx, cmd.OrderID())
	if err != nil {
		return ChangeOrderStatusResult{}, err
	}

	res := ChangeOrderStatusResult{From: o.Status()}
	if err = cmd.Action().Apply(o); err != nil {
		return ChangeOrderStatusResult{}, err
	}

	if cmd.RequeueRunning() {
		if row, ok := o.RunningRow(); ok {
			if err = o.RequeueRow(row.Seq()); err != nil {
				return ChangeOrderStatusResult{}, err
			}
			res.RequeuedSeq = row.Seq()
		}
	}

	if err = orderRepo.Update(ctx, o); err != nil {
		return ChangeOrderStatusResult{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return ChangeOrderStatusResult{}, err
	}

	res.To = o.Status()
	return res, nil
}
