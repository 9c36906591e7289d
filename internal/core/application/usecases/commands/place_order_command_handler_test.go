package commands_test

import (
	"errors"
	"testing"

	"batchplant/internal/core/application/usecases/commands"
	"batchplant/internal/core/domain/model/client"
	"batchplant/internal/core/domain/model/kernel"
	"batchplant/internal/core/domain/model/order"
	"batchplant/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newPlaceOrderCommand(t *testing.T) commands.PlaceOrderCommand {
	t.Helper()
	cmd, err := commands.NewPlaceOrderCommand(kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(),
		kernel.Volume(2500), testNow)
	require.NoError(t, err)
	return cmd
}

func TestPlaceOrderCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()
	cmd := newPlaceOrderCommand(t)
	c, err := client.NewClient(cmd.ClientID(), "ABC Builders")
	require.NoError(t, err)

	clients := new(MockClientDirectory)
	clients.On("Get", ctx, cmd.ClientID()).Return(c, nil).Once()
	recipes := new(MockRecipeDirectory)
	recipes.On("Get", ctx, cmd.RecipeID()).Return(newRecipe(t), nil).Once()

	var stored *order.Order
	repo := new(MockOrderRepository)
	uow := new(MockOrderUoW)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(repo).Once(),
		repo.On("Add", ctx, mock.AnythingOfType("*order.Order")).
			Run(func(args mock.Arguments) { stored = args.Get(1).(*order.Order) }).
			Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)
	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := commands.NewPlaceOrderCommandHandler(factory, clients, recipes)
	err = h.Handle(ctx, cmd)

	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, order.Draft, stored.Status())
	assert.Equal(t, 3, stored.TotalCount())
	assert.Equal(t, kernel.Volume(500), stored.Rows()[2].PlannedVolume())
	repo.AssertExpectations(t)
	uow.AssertExpectations(t)
	factory.AssertExpectations(t)
}

func TestPlaceOrderCommandHandler_Handle_ValidationError(t *testing.T) {
	h := commands.NewPlaceOrderCommandHandler(new(MockOrderUoWFactory), new(MockClientDirectory), new(MockRecipeDirectory))

	err := h.Handle(t.Context(), commands.PlaceOrderCommand{})

	require.ErrorIs(t, err, commands.ErrPlaceOrderCommandIsNotConstructed)
}

func TestPlaceOrderCommandHandler_Handle_UnknownRecipe(t *testing.T) {
	ctx := t.Context()
	cmd := newPlaceOrderCommand(t)
	c, err := client.NewClient(cmd.ClientID(), "ABC Builders")
	require.NoError(t, err)

	clients := new(MockClientDirectory)
	clients.On("Get", ctx, cmd.ClientID()).Return(c, nil).Once()
	recipes := new(MockRecipeDirectory)
	recipes.On("Get", ctx, cmd.RecipeID()).Return(nil, errs.NewObjectNotFoundError("recipeID", cmd.RecipeID())).Once()
	factory := new(MockOrderUoWFactory)

	h := commands.NewPlaceOrderCommandHandler(factory, clients, recipes)
	err = h.Handle(ctx, cmd)

	require.ErrorIs(t, err, errs.ErrObjectNotFound)
	factory.AssertNotCalled(t, "Create")
}

func TestPlaceOrderCommandHandler_Handle_AddError(t *testing.T) {
	ctx := t.Context()
	cmd := newPlaceOrderCommand(t)
	c, err := client.NewClient(cmd.ClientID(), "ABC Builders")
	require.NoError(t, err)

	clients := new(MockClientDirectory)
	clients.On("Get", ctx, cmd.ClientID()).Return(c, nil).Once()
	recipes := new(MockRecipeDirectory)
	recipes.On("Get", ctx, cmd.RecipeID()).Return(newRecipe(t), nil).Once()

	repo := new(MockOrderRepository)
	uow := new(MockOrderUoW)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(repo).Once(),
		repo.On("Add", ctx, mock.AnythingOfType("*order.Order")).Return(errors.New("add error")).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)
	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := commands.NewPlaceOrderCommandHandler(factory, clients, recipes)
	err = h.Handle(ctx, cmd)

	require.EqualError(t, err, "add error")
	uow.AssertExpectations(t)
	uow.AssertNotCalled(t, "Commit", ctx)
}
