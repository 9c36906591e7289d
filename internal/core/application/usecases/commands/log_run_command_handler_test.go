package commands_test

import (
	"testing"
	"time"

	"batchplant/internal/core/application/usecases/commands"
	"batchplant/internal/core/domain/model/kernel"
	"batchplant/internal/core/domain/model/run"
	"batchplant/internal/core/domain/model/vehicle"
	"batchplant/internal/core/domain/services"
	"batchplant/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newFleet(t *testing.T) []*vehicle.Vehicle {
	t.Helper()
	fleet := make([]*vehicle.Vehicle, 0, 3)
	for _, name := range []string{"TM-01", "TM-02", "TM-03"} {
		v, err := vehicle.NewVehicle(kernel.NewUUID(), name, 15*kernel.CubicMetre, "", "")
		require.NoError(t, err)
		fleet = append(fleet, v)
	}
	return fleet
}

func newAssigner(t *testing.T) services.RunAssigner {
	t.Helper()
	a, err := services.NewRunAssigner(15)
	require.NoError(t, err)
	return a
}

func TestNewLogRunCommand(t *testing.T) {
	id := kernel.NewUUID()
	vehicleID := kernel.NewUUID()

	cmd, err := commands.NewLogRunCommand(id, 16, 30, &vehicleID, "  left early ", testNow)
	require.NoError(t, err)
	assert.Equal(t, 16, cmd.StartSeq())
	assert.Equal(t, 30, cmd.EndSeq())
	assert.Equal(t, vehicleID, *cmd.VehicleID())
	assert.Equal(t, "left early", cmd.Note())

	_, err = commands.NewLogRunCommand(id, 5, 4, nil, "", time.Time{})
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	require.ErrorIs(t, err, errs.ErrValueIsRequired)
}

func TestLogRunCommandHandler_Handle_RoundRobin(t *testing.T) {
	ctx := t.Context()
	o := newOrder(t, 32, true)
	produce(t, o, 30)
	fleet := newFleet(t)
	cmd, err := commands.NewLogRunCommand(o.ID(), 16, 30, nil, "", testNow)
	require.NoError(t, err)

	vehicles := new(MockVehicleDirectory)
	vehicles.On("List", ctx).Return(fleet, nil).Once()

	var added *run.Run
	orderRepo := new(MockOrderRepository)
	runRepo := new(MockRunRepository)
	uow := new(MockUoW)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(orderRepo).Once(),
		uow.On("RunRepository").Return(runRepo).Once(),
		orderRepo.On("Get", ctx, o.ID()).Return(o, nil).Once(),
		runRepo.On("ListByOrder", ctx, o.ID()).Return([]*run.Run{}, nil).Once(),
		runRepo.On("Add", ctx, mock.AnythingOfType("*run.Run")).
			Run(func(args mock.Arguments) { added = args.Get(1).(*run.Run) }).
			Return(nil).Once(),
		orderRepo.On("Update", ctx, o).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)
	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	a, err := commands.NewLogRunCommandHandler(factory, vehicles, newAssigner(t)).Handle(ctx, cmd)

	require.NoError(t, err)
	require.True(t, a.Created)
	assert.Same(t, added, a.Run)
	assert.True(t, a.Run.VehicleID().IsEqual(fleet[1].ID()), "batch 2 goes to the second vehicle")
	assert.Equal(t, "Auto-log: Batch-2 (16..30)", a.Run.Note())
	assert.Equal(t, 1, a.Run.Seq())
	uow.AssertExpectations(t)
	runRepo.AssertExpectations(t)
}

func TestLogRunCommandHandler_Handle_Idempotent(t *testing.T) {
	ctx := t.Context()
	o := newOrder(t, 15, true)
	produce(t, o, 15)
	fleet := newFleet(t)
	selected := fleet[2].ID()
	existing, err := run.NewRun(kernel.NewUUID(), o.ID(), 1, selected, 1, 15, 15*kernel.CubicMetre, "first", testNow)
	require.NoError(t, err)
	require.NoError(t, o.AssignRun(1, 15, existing.ID()))
	cmd, err := commands.NewLogRunCommand(o.ID(), 1, 15, &selected, "", testNow)
	require.NoError(t, err)

	vehicles := new(MockVehicleDirectory)
	vehicles.On("Get", ctx, selected).Return(fleet[2], nil).Once()
	vehicles.On("List", ctx).Return(fleet, nil).Once()

	orderRepo := new(MockOrderRepository)
	runRepo := new(MockRunRepository)
	uow := new(MockUoW)
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("OrderRepository").Return(orderRepo).Once()
	uow.On("RunRepository").Return(runRepo).Once()
	orderRepo.On("Get", ctx, o.ID()).Return(o, nil).Once()
	runRepo.On("ListByOrder", ctx, o.ID()).Return([]*run.Run{existing}, nil).Once()
	uow.On("Rollback", ctx).Return(nil).Once()
	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	a, err := commands.NewLogRunCommandHandler(factory, vehicles, newAssigner(t)).Handle(ctx, cmd)

	require.NoError(t, err)
	assert.False(t, a.Created)
	assert.Same(t, existing, a.Run)
	runRepo.AssertNotCalled(t, "Add", mock.Anything, mock.Anything)
	uow.AssertNotCalled(t, "Commit", mock.Anything)
}

func TestLogRunCommandHandler_Handle_BatchIncomplete(t *testing.T) {
	ctx := t.Context()
	o := newOrder(t, 32, true)
	produce(t, o, 10)
	cmd, err := commands.NewLogRunCommand(o.ID(), 1, 15, nil, "", testNow)
	require.NoError(t, err)

	vehicles := new(MockVehicleDirectory)
	vehicles.On("List", ctx).Return(newFleet(t), nil).Once()
	orderRepo := new(MockOrderRepository)
	runRepo := new(MockRunRepository)
	uow := new(MockUoW)
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("OrderRepository").Return(orderRepo).Once()
	uow.On("RunRepository").Return(runRepo).Once()
	orderRepo.On("Get", ctx, o.ID()).Return(o, nil).Once()
	runRepo.On("ListByOrder", ctx, o.ID()).Return([]*run.Run{}, nil).Once()
	uow.On("Rollback", ctx).Return(nil).Once()
	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	_, err = commands.NewLogRunCommandHandler(factory, vehicles, newAssigner(t)).Handle(ctx, cmd)

	require.ErrorIs(t, err, services.ErrBatchIncomplete)
	require.ErrorIs(t, err, errs.ErrPreconditionFailed)
}

func TestLogRunCommandHandler_Handle_NoVehicles(t *testing.T) {
	ctx := t.Context()
	o := newOrder(t, 15, true)
	produce(t, o, 15)
	cmd, err := commands.NewLogRunCommand(o.ID(), 1, 15, nil, "", testNow)
	require.NoError(t, err)

	vehicles := new(MockVehicleDirectory)
	vehicles.On("List", ctx).Return([]*vehicle.Vehicle{}, nil).Once()
	orderRepo := new(MockOrderRepository)
	runRepo := new(MockRunRepository)
	uow := new(MockUoW)
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("OrderRepository").Return(orderRepo).Once()
	uow.On("RunRepository").Return(runRepo).Once()
	orderRepo.On("Get", ctx, o.ID()).Return(o, nil).Once()
	uow.On("Rollback", ctx).Return(nil).Once()
	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	_, err = commands.NewLogRunCommandHandler(factory, vehicles, newAssigner(t)).Handle(ctx, cmd)

	require.ErrorIs(t, err, services.ErrNoVehicleAvailable)
}

func TestLogRunCommandHandler_Handle_UnknownVehicle(t *testing.T) {
	ctx := t.Context()
	o := newOrder(t, 15, true)
	produce(t, o, 15)
	unknown := kernel.NewUUID()
	cmd, err := commands.NewLogRunCommand(o.ID(), 1, 15, &unknown, "", testNow)
	require.NoError(t, err)

	vehicles := new(MockVehicleDirectory)
	vehicles.On("Get", ctx, unknown).Return(nil, errs.NewObjectNotFoundError("vehicleID", unknown)).Once()
	orderRepo := new(MockOrderRepository)
	uow := new(MockUoW)
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("OrderRepository").Return(orderRepo).Once()
	uow.On("RunRepository").Return(new(MockRunRepository)).Once()
	orderRepo.On("Get", ctx, o.ID()).Return(o, nil).Once()
	uow.On("Rollback", ctx).Return(nil).Once()
	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	_, err = commands.NewLogRunCommandHandler(factory, vehicles, newAssigner(t)).Handle(ctx, cmd)

	require.ErrorIs(t, err, errs.ErrObjectNotFound)
}
