package commands

import (
	"context"
)

// RequeueRowCommandHandler puts a cancelled discharge back in the queue so
// the row is produced again from scratch.
type RequeueRowCommandHandler struct {
	uowFactory OrderUoWFactory
}

func NewRequeueRowCommandHandler(uowFactory OrderUoWFactory) RequeueRowCommandHandler {
	return RequeueRowCommandHandler{uowFactory: uowFactory}
}

func (h RequeueRowCommandHandler) Handle(ctx context.Context, cmd RequeueRowCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()
	o, err := orderRepo.Get(ctx, cmd.OrderID())
	if err != nil {
		return err
	}

	if err = o.RequeueRow(cmd.Seq()); err != nil {
		return err
	}

	if err = orderRepo.Update(ctx, o); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
