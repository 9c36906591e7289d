package commands

import (
	"errors"
	"time"

	"batchplant/internal/core/domain/model/kernel"
	"batchplant/internal/pkg/errs"
	"batchplant/internal/pkg/guard"
)

var (
	ErrPlaceOrderCommandIsNotConstructed = errors.New(
		"PlaceOrderCommand must be created via NewPlaceOrderCommand constructor",
	)
	ErrVolumeIsInvalid = errors.New("volume must be greater than 0")
)

// PlaceOrderCommand represents a request to register a production order.
// The order is planned into 1 m³ rows and starts in draft status.
//
// Example:
//
//	orderID := kernel.NewUUID()
//	cmd, err := NewPlaceOrderCommand(orderID, clientID, recipeID, 32*kernel.CubicMetre, time.Now())
//	if err != nil {
//	    return fmt.Errorf("invalid order data: %w", err)
//	}
//
//	handler := NewPlaceOrderCommandHandler(uowFactory, clients, recipes)
//	if err := handler.Handle(ctx, cmd); err != nil {
//	    return fmt.Errorf("failed to place order: %w", err)
//	}
type PlaceOrderCommand struct { //nolint:recvcheck //using for validation
	orderID   kernel.UUID
	clientID  kernel.UUID
	recipeID  kernel.UUID
	volume    kernel.Volume
	createdAt time.Time

	guard guard.ConstructorGuard
}

// NewPlaceOrderCommand creates a command to place a new order.
// Validates the identifiers and that volume is positive.
func NewPlaceOrderCommand(
	orderID, clientID, recipeID kernel.UUID,
	volume kernel.Volume,
	createdAt time.Time,
) (PlaceOrderCommand, error) {
	cmd := PlaceOrderCommand{
		createdAt: createdAt,
		guard:     guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setID("orderID", &cmd.orderID, orderID),
		cmd.setID("clientID", &cmd.clientID, clientID),
		cmd.setID("recipeID", &cmd.recipeID, recipeID),
		cmd.setVolume(volume),
	); err != nil {
		return PlaceOrderCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c PlaceOrderCommand) Validate() error {
	return c.guard.Validate(ErrPlaceOrderCommandIsNotConstructed)
}

func (c PlaceOrderCommand) OrderID() kernel.UUID { return c.orderID }

func (c PlaceOrderCommand) ClientID() kernel.UUID { return c.clientID }

func (c PlaceOrderCommand) RecipeID() kernel.UUID { return c.recipeID }

// Volume returns the total planned volume of the order.
func (c PlaceOrderCommand) Volume() kernel.Volume { return c.volume }

func (c PlaceOrderCommand) CreatedAt() time.Time { return c.createdAt }

func (c *PlaceOrderCommand) setID(param string, dst *kernel.UUID, id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause(param, err)
	}

	*dst = id
	return nil
}

func (c *PlaceOrderCommand) setVolume(volume kernel.Volume) error {
	if !volume.IsPositive() {
		return errs.NewValueIsInvalidErrorWithCause("volume", ErrVolumeIsInvalid)
	}

	c.volume = volume
	return nil
}
