package vehicle_test

import (
	"testing"

	"batchplant/internal/core/domain/model/kernel"
	"batchplant/internal/core/domain/model/vehicle"
	"batchplant/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVehicle(t *testing.T) {
	id := kernel.NewUUID()

	t.Run("should create a vehicle", func(t *testing.T) {
		v, err := vehicle.NewVehicle(id, " Truck 1 ", 15*kernel.CubicMetre, "KA-01-1234", "Ravi")

		require.NoError(t, err)
		require.NoError(t, v.Validate())
		assert.True(t, v.ID().IsEqual(id))
		assert.Equal(t, "Truck 1", v.Name())
		assert.Equal(t, 15*kernel.CubicMetre, v.Capacity())
		assert.Equal(t, "KA-01-1234", v.Plate())
		assert.Equal(t, "Ravi", v.Driver())
	})

	t.Run("should require a name and positive capacity", func(t *testing.T) {
		v, err := vehicle.NewVehicle(id, "  ", 0, "", "")

		require.Error(t, err)
		assert.Nil(t, v)
		require.ErrorIs(t, err, errs.ErrValueIsRequired)
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("should reject zero values", func(t *testing.T) {
		require.ErrorIs(t, (&vehicle.Vehicle{}).Validate(), vehicle.ErrVehicleIsNotConstructed)
		var nilVehicle *vehicle.Vehicle
		require.ErrorIs(t, nilVehicle.Validate(), vehicle.ErrVehicleIsNotConstructed)
	})
}
