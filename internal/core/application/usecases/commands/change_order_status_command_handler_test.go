package commands_test

import (
	"testing"

	"batchplant/internal/core/application/usecases/commands"
	"batchplant/internal/core/domain/model/order"
	"batchplant/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestChangeOrderStatusCommandHandler_Handle_Pause(t *testing.T) {
	ctx := t.Context()
	o := newOrder(t, 5, true)
	_, err := o.StartNextRow(testNow)
	require.NoError(t, err)
	cmd, err := commands.NewChangeOrderStatusCommand(o.ID(), commands.ActionPause, false)
	require.NoError(t, err)

	repo := new(MockOrderRepository)
	uow := new(MockOrderUoW)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(repo).Once(),
		repo.On("Get", ctx, o.ID()).Return(o, nil).Once(),
		repo.On("Update", ctx, o).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)
	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow).Once()

	res, err := commands.NewChangeOrderStatusCommandHandler(factory).Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, commands.ChangeOrderStatusResult{From: order.Running, To: order.Paused}, res)
	row, ok := o.RunningRow()
	require.True(t, ok, "pause without requeue keeps the row running")
	assert.Equal(t, 1, row.Seq())
	repo.AssertExpectations(t)
	uow.AssertExpectations(t)
}

func TestChangeOrderStatusCommandHandler_Handle_StopAndRequeue(t *testing.T) {
	ctx := t.Context()
	o := newOrder(t, 5, true)
	produce(t, o, 2)
	_, err := o.StartNextRow(testNow)
	require.NoError(t, err)
	cmd, err := commands.NewChangeOrderStatusCommand(o.ID(), commands.ActionStop, true)
	require.NoError(t, err)

	repo := new(MockOrderRepository)
	uow := new(MockOrderUoW)
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("OrderRepository").Return(repo).Once()
	repo.On("Get", ctx, o.ID()).Return(o, nil).Once()
	repo.On("Update", ctx, o).Return(nil).Once()
	uow.On("Commit", ctx).Return(nil).Once()
	uow.On("Rollback", ctx).Return(nil).Once()
	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow).Once()

	res, err := commands.NewChangeOrderStatusCommandHandler(factory).Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, order.Stopped, res.To)
	assert.Equal(t, 3, res.RequeuedSeq)
	_, running := o.RunningRow()
	assert.False(t, running)
	next, ok, err := o.NextPending()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 3, next.Seq())
}

func TestChangeOrderStatusCommandHandler_Handle_IllegalTransition(t *testing.T) {
	ctx := t.Context()
	o := newOrder(t, 5, false)
	cmd, err := commands.NewChangeOrderStatusCommand(o.ID(), commands.ActionPause, false)
	require.NoError(t, err)

	repo := new(MockOrderRepository)
	uow := new(MockOrderUoW)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(repo).Once(),
		repo.On("Get", ctx, o.ID()).Return(o, nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)
	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow).Once()

	_, err = commands.NewChangeOrderStatusCommandHandler(factory).Handle(ctx, cmd)

	require.ErrorIs(t, err, errs.ErrIllegalTransition)
	assert.Equal(t, order.Draft, o.Status())
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	uow.AssertExpectations(t)
}

func TestChangeOrderStatusCommandHandler_Handle_NotFound(t *testing.T) {
	ctx := t.Context()
	o := newOrder(t, 1, false)
	cmd, err := commands.NewChangeOrderStatusCommand(o.ID(), commands.ActionResume, false)
	require.NoError(t, err)

	repo := new(MockOrderRepository)
	uow := new(MockOrderUoW)
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("OrderRepository").Return(repo).Once()
	repo.On("Get", ctx, o.ID()).Return(nil, errs.NewObjectNotFoundError("orderID", o.ID())).Once()
	uow.On("Rollback", ctx).Return(nil).Once()
	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow).Once()

	_, err = commands.NewChangeOrderStatusCommandHandler(factory).Handle(ctx, cmd)

	require.ErrorIs(t, err, errs.ErrObjectNotFound)
}
