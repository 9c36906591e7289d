// Package vehicle models the truck mixers that carry batches away from the plant.
// Vehicles are master data: the production engine only reads them.
package vehicle

import (
	"errors"
	"fmt"
	"strings"

	"batchplant/internal/core/domain/model/kernel"
	"batchplant/internal/pkg/errs"
	"batchplant/internal/pkg/guard"
)

// ErrVehicleIsNotConstructed is returned when a Vehicle was not created through NewVehicle.
var ErrVehicleIsNotConstructed = errors.New("Vehicle must be created via NewVehicle constructor")

// Vehicle is a truck mixer with its drum capacity, plate and usual driver.
type Vehicle struct {
	id       kernel.UUID
	name     string
	capacity kernel.Volume
	plate    string
	driver   string

	guard guard.ConstructorGuard
}

// NewVehicle validates and creates a vehicle. Plate and driver are optional.
//
// Example:
//
//	truck, err := vehicle.NewVehicle(kernel.NewUUID(), "Truck 1", 15*kernel.CubicMetre, "KA-01-1234", "Ravi")
func NewVehicle(id kernel.UUID, name string, capacity kernel.Volume, plate, driver string) (*Vehicle, error) {
	v := &Vehicle{
		plate:  strings.TrimSpace(plate),
		driver: strings.TrimSpace(driver),
		guard:  guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		v.setID(id),
		v.setName(name),
		v.setCapacity(capacity),
	); err != nil {
		return nil, err
	}

	return v, nil
}

// Validate ensures the Vehicle was properly constructed.
func (v *Vehicle) Validate() error {
	if v == nil {
		return ErrVehicleIsNotConstructed
	}
	return v.guard.Validate(ErrVehicleIsNotConstructed)
}

func (v *Vehicle) ID() kernel.UUID { return v.id }

func (v *Vehicle) Name() string { return v.name }

// Capacity returns the drum capacity of the vehicle.
func (v *Vehicle) Capacity() kernel.Volume { return v.capacity }

func (v *Vehicle) Plate() string { return v.plate }

func (v *Vehicle) Driver() string { return v.driver }

func (v *Vehicle) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	v.id = id
	return nil
}

func (v *Vehicle) setName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errs.NewValueIsRequiredError("name")
	}
	v.name = name
	return nil
}

func (v *Vehicle) setCapacity(capacity kernel.Volume) error {
	if !capacity.IsPositive() {
		return errs.NewValueIsInvalidErrorWithCause("capacity", fmt.Errorf("%s is not positive", capacity))
	}
	v.capacity = capacity
	return nil
}
