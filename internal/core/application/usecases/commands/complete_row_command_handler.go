package commands

import (
	"context"

	"batchplant/internal/core/domain/model/order"
	"batchplant/internal/core/ports"
)

// CompleteRowResult is the ledger after the row completed. From and To let
// callers notice the automatic completion of the order.
type CompleteRowResult struct {
	Order *order.Order
	Row   order.Row
	From  order.Status
	To    order.Status
}

// CompleteRowCommandHandler weighs the row through the material meter using
// the order's recipe and records the measurement.
//
// Example:
//
//	handler := NewCompleteRowCommandHandler(uowFactory, recipes, meter)
//	cmd, _ := NewCompleteRowCommand(orderID, 3, time.Now())
//	res, err := handler.Handle(ctx, cmd)
//	if errors.Is(err, order.ErrRowNotRunning) {
//	    return nil // row was completed or requeued by someone else
//	}
type CompleteRowCommandHandler struct {
	uowFactory OrderUoWFactory
	recipes    ports.RecipeDirectory
	meter      ports.MaterialMeter
}

func NewCompleteRowCommandHandler(
	uowFactory OrderUoWFactory,
	recipes ports.RecipeDirectory,
	meter ports.MaterialMeter,
) CompleteRowCommandHandler {
	return CompleteRowCommandHandler{
		uowFactory: uowFactory,
		recipes:    recipes,
		meter:      meter,
	}
}

// Handle measures and completes the row in one transaction.
func (h CompleteRowCommandHandler) Handle(ctx context.Context, cmd CompleteRowCommand) (CompleteRowResult, error) {
	if err := cmd.Validate(); err != nil {
		return CompleteRowResult{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return CompleteRowResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()
	o, err := orderRepo.Get(ctx, cmd.OrderID())
	if err != nil {
		return CompleteRowResult{}, err
	}

	row, err := o.Row(cmd.Seq())
	if err != nil {
		return CompleteRowResult{}, err
	}

	rec, err := h.recipes.Get(ctx, o.RecipeID())
	if err != nil {
		return CompleteRowResult{}, err
	}

	actual, err := h.meter.Measure(ctx, rec.Setpoints(), row.PlannedVolume())
	if err != nil {
		return CompleteRowResult{}, err
	}

	from := o.Status()
	if err = o.CompleteRow(cmd.Seq(), actual, cmd.At()); err != nil {
		return CompleteRowResult{}, err
	}

	if err = orderRepo.Update(ctx, o); err != nil {
		return CompleteRowResult{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return CompleteRowResult{}, err
	}

	done, err := o.Row(cmd.Seq())
	if err != nil {
		return CompleteRowResult{}, err
	}
	return CompleteRowResult{Order: o, Row: done, From: from, To: o.Status()}, nil
}
