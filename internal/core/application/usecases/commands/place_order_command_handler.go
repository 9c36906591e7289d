package commands

import (
	"context"

	"batchplant/internal/core/domain/model/order"
	"batchplant/internal/core/ports"
)

// PlaceOrderCommandHandler registers new production orders.
// The client and recipe must exist in master data before any row is planned.
//
// Example:
//
//	handler := NewPlaceOrderCommandHandler(uowFactory, clients, recipes)
//	cmd, _ := NewPlaceOrderCommand(kernel.NewUUID(), clientID, recipeID, 8*kernel.CubicMetre, time.Now())
//
//	if err := handler.Handle(ctx, cmd); err != nil {
//	    return fmt.Errorf("order placement failed: %w", err)
//	}
//	// Order is now a draft waiting to be resumed
type PlaceOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	clients    ports.ClientDirectory
	recipes    ports.RecipeDirectory
}

// NewPlaceOrderCommandHandler creates a handler for order placement.
func NewPlaceOrderCommandHandler(
	uowFactory OrderUoWFactory,
	clients ports.ClientDirectory,
	recipes ports.RecipeDirectory,
) PlaceOrderCommandHandler {
	return PlaceOrderCommandHandler{
		uowFactory: uowFactory,
		clients:    clients,
		recipes:    recipes,
	}
}

// Handle validates the references and stores the planned order.
func (h PlaceOrderCommandHandler) Handle(ctx context.Context, cmd PlaceOrderCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	if _, err := h.clients.Get(ctx, cmd.ClientID()); err != nil {
		return err
	}
	if _, err := h.recipes.Get(ctx, cmd.RecipeID()); err != nil {
		return err
	}

	o, err := order.NewOrder(cmd.OrderID(), cmd.ClientID(), cmd.RecipeID(), cmd.Volume(), cmd.CreatedAt())
	if err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.OrderRepository().Add(ctx, o); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
