package commands

import (
	"context"
	"errors"

	"batchplant/internal/core/domain/model/order"
)

// StartNextRowResult carries the row that began and the order status after
// the command. Row is the zero value when nothing was started.
type StartNextRowResult struct {
	Row    order.Row
	From   order.Status
	Status order.Status
}

// StartNextRowCommandHandler moves the next pending row to running.
//
// When every row is already done the order is completed and stored before
// order.ErrNothingPending is returned, so the caller sees a done order.
type StartNextRowCommandHandler struct {
	uowFactory OrderUoWFactory
}

func NewStartNextRowCommandHandler(uowFactory OrderUoWFactory) StartNextRowCommandHandler {
	return StartNextRowCommandHandler{uowFactory: uowFactory}
}

// Handle begins the row in a single transaction.
func (h StartNextRowCommandHandler) Handle(ctx context.Context, cmd StartNextRowCommand) (StartNextRowResult, error) {
	if err := cmd.Validate(); err != nil {
		return StartNextRowResult{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return StartNextRowResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()
	o, err := orderRepo.Get(ctx, cmd.OrderID())
	if err != nil {
		return StartNextRowResult{}, err
	}

	from := o.Status()
	row, startErr := o.StartNextRow(cmd.At())
	if startErr != nil {
		if !errors.Is(startErr, order.ErrNothingPending) || o.Status() == from {
			return StartNextRowResult{From: from, Status: from}, startErr
		}
		if err = orderRepo.Update(ctx, o); err != nil {
			return StartNextRowResult{}, err
		}
		if err = uow.Commit(ctx); err != nil {
			return StartNextRowResult{}, err
		}
		return StartNextRowResult{From: from, Status: o.Status()}, startErr
	}

	if err = orderRepo.Update(ctx, o); err != nil {
		return StartNextRowResult{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return StartNextRowResult{}, err
	}

	return StartNextRowResult{Row: row, From: from, Status: o.Status()}, nil
}
