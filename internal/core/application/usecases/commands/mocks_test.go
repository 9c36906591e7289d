package commands_test

import (
	"context"
	"testing"
	"time"

	"batchplant/internal/core/application/usecases/commands"
	"batchplant/internal/core/domain/model/client"
	"batchplant/internal/core/domain/model/kernel"
	"batchplant/internal/core/domain/model/order"
	"batchplant/internal/core/domain/model/recipe"
	"batchplant/internal/core/domain/model/run"
	"batchplant/internal/core/domain/model/vehicle"
	"batchplant/internal/core/ports"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Add(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Update(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) List(ctx context.Context, limit int) ([]*order.Order, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]*order.Order), args.Error(1)
}

func (m *MockOrderRepository) ListByStatus(ctx context.Context, statuses ...order.Status) ([]*order.Order, error) {
	args := m.Called(ctx, statuses)
	return args.Get(0).([]*order.Order), args.Error(1)
}

type MockRunRepository struct{ mock.Mock }

func (m *MockRunRepository) Add(ctx context.Context, r *run.Run) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockRunRepository) ListByOrder(ctx context.Context, orderID kernel.UUID) ([]*run.Run, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).([]*run.Run), args.Error(1)
}

type MockOrderUoW struct{ mock.Mock }

func (m *MockOrderUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockOrderUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockOrderUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockOrderUoW) OrderRepository() ports.OrderRepository {
	args := m.Called()
	return args.Get(0).(ports.OrderRepository)
}

type MockOrderUoWFactory struct{ mock.Mock }

func (m *MockOrderUoWFactory) Create() commands.OrderUoW {
	args := m.Called()
	return args.Get(0).(commands.OrderUoW)
}

type MockUoW struct {
	MockOrderUoW
}

func (m *MockUoW) RunRepository() ports.RunRepository {
	args := m.Called()
	return args.Get(0).(ports.RunRepository)
}

type MockUoWFactory struct{ mock.Mock }

func (m *MockUoWFactory) Create() commands.UoW {
	args := m.Called()
	return args.Get(0).(commands.UoW)
}

type MockClientDirectory struct{ mock.Mock }

func (m *MockClientDirectory) Get(ctx context.Context, id kernel.UUID) (*client.Client, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.Client), args.Error(1)
}

func (m *MockClientDirectory) List(ctx context.Context) ([]*client.Client, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*client.Client), args.Error(1)
}

type MockRecipeDirectory struct{ mock.Mock }

func (m *MockRecipeDirectory) Get(ctx context.Context, id kernel.UUID) (*recipe.Recipe, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*recipe.Recipe), args.Error(1)
}

func (m *MockRecipeDirectory) List(ctx context.Context) ([]*recipe.Recipe, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*recipe.Recipe), args.Error(1)
}

type MockVehicleDirectory struct{ mock.Mock }

func (m *MockVehicleDirectory) Get(ctx context.Context, id kernel.UUID) (*vehicle.Vehicle, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*vehicle.Vehicle), args.Error(1)
}

func (m *MockVehicleDirectory) List(ctx context.Context) ([]*vehicle.Vehicle, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*vehicle.Vehicle), args.Error(1)
}

type MockMaterialMeter struct{ mock.Mock }

func (m *MockMaterialMeter) Measure(
	ctx context.Context,
	setpoints kernel.Measurement,
	planned kernel.Volume,
) (kernel.Measurement, error) {
	args := m.Called(ctx, setpoints, planned)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(kernel.Measurement), args.Error(1)
}

func newOrder(t *testing.T, m3 float64, running bool) *order.Order {
	t.Helper()
	total, err := kernel.VolumeFromCubicMetres(m3)
	require.NoError(t, err)
	o, err := order.NewOrder(kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(), total, testNow)
	require.NoError(t, err)
	if running {
		require.NoError(t, o.Resume())
	}
	return o
}

func newRecipe(t *testing.T) *recipe.Recipe {
	t.Helper()
	r, err := recipe.NewRecipe(kernel.NewUUID(), "M25 DEFAULT", map[kernel.Material]float64{
		kernel.Cement: 350, kernel.Sand: 650, kernel.Water: 180,
	})
	require.NoError(t, err)
	return r
}

func measurement(t *testing.T) kernel.Measurement {
	t.Helper()
	m, err := kernel.NewMeasurement(map[kernel.Material]float64{kernel.Cement: 351.5, kernel.Sand: 649, kernel.Water: 181})
	require.NoError(t, err)
	return m
}

// produce starts and completes the next n rows directly on the aggregate.
func produce(t *testing.T, o *order.Order, n int) {
	t.Helper()
	for range n {
		row, err := o.StartNextRow(testNow)
		require.NoError(t, err)
		require.NoError(t, o.CompleteRow(row.Seq(), measurement(t), testNow))
	}
}
