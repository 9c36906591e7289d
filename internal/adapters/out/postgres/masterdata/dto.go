// Package masterdata reads the plant's reference data: vehicles, recipes and
// clients. The plant never writes these tables except when seeding.
package masterdata

import (
	"batchplant/internal/core/domain/model/client"
	"batchplant/internal/core/domain/model/kernel"
	"batchplant/internal/core/domain/model/recipe"
	"batchplant/internal/core/domain/model/vehicle"

	"github.com/google/uuid"
)

type VehicleDTO struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name           string    `gorm:"type:varchar(255);not null;uniqueIndex"`
	CapacityLitres int64     `gorm:"not null"`
	Plate          string    `gorm:"type:varchar(32)"`
	Driver         string    `gorm:"type:varchar(255)"`
}

func (VehicleDTO) TableName() string {
	return "vehicles"
}

// RecipeDTO stores setpoints as a JSON object of kilograms per cubic metre.
type RecipeDTO struct {
	ID        uuid.UUID          `gorm:"type:uuid;primaryKey"`
	Name      string             `gorm:"type:varchar(255);not null;uniqueIndex"`
	Setpoints map[string]float64 `gorm:"type:jsonb;serializer:json;not null"`
}

func (RecipeDTO) TableName() string {
	return "recipes"
}

type ClientDTO struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name string    `gorm:"type:varchar(255);not null;uniqueIndex"`
}

func (ClientDTO) TableName() string {
	return "clients"
}

func VehicleFromDomain(v *vehicle.Vehicle) VehicleDTO {
	return VehicleDTO{
		ID:             v.ID().Bytes(),
		Name:           v.Name(),
		CapacityLitres: v.Capacity().Litres(),
		Plate:          v.Plate(),
		Driver:         v.Driver(),
	}
}

func vehicleToDomain(dto VehicleDTO) (*vehicle.Vehicle, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	capacity, err := kernel.VolumeFromLitres(dto.CapacityLitres)
	if err != nil {
		return nil, err
	}
	return vehicle.NewVehicle(id, dto.Name, capacity, dto.Plate, dto.Driver)
}

func RecipeFromDomain(r *recipe.Recipe) RecipeDTO {
	setpoints := make(map[string]float64)
	for m, q := range r.Setpoints() {
		setpoints[string(m)] = q
	}
	return RecipeDTO{ID: r.ID().Bytes(), Name: r.Name(), Setpoints: setpoints}
}

func recipeToDomain(dto RecipeDTO) (*recipe.Recipe, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	setpoints := make(map[kernel.Material]float64, len(dto.Setpoints))
	for m, q := range dto.Setpoints {
		setpoints[kernel.Material(m)] = q
	}
	return recipe.NewRecipe(id, dto.Name, setpoints)
}

func ClientFromDomain(c *client.Client) ClientDTO {
	return ClientDTO{ID: c.ID().Bytes(), Name: c.Name()}
}

func clientToDomain(dto ClientDTO) (*client.Client, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	return client.NewClient(id, dto.Name)
}
