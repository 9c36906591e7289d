package masterdata

import (
	"context"
	"errors"

	"batchplant/internal/core/domain/model/client"
	"batchplant/internal/core/domain/model/kernel"
	"batchplant/internal/core/domain/model/recipe"
	"batchplant/internal/core/domain/model/vehicle"
	"batchplant/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormVehicleDirectory implements ports.VehicleDirectory.
type GormVehicleDirectory struct {
	db *gorm.DB
}

func NewGormVehicleDirectory(db *gorm.DB) *GormVehicleDirectory {
	return &GormVehicleDirectory{db: db}
}

func (d *GormVehicleDirectory) Get(ctx context.Context, id kernel.UUID) (*vehicle.Vehicle, error) {
	var dto VehicleDTO
	if err := first(ctx, d.db, &dto, "vehicleID", id); err != nil {
		return nil, err
	}
	return vehicleToDomain(dto)
}

// List returns the fleet ordered by name, which fixes the round-robin order.
func (d *GormVehicleDirectory) List(ctx context.Context) ([]*vehicle.Vehicle, error) {
	var dtos []VehicleDTO
	if err := d.db.WithContext(ctx).Order("name").Find(&dtos).Error; err != nil {
		return nil, err
	}
	return mapAll(dtos, vehicleToDomain)
}

// GormRecipeDirectory implements ports.RecipeDirectory.
type GormRecipeDirectory struct {
	db *gorm.DB
}

func NewGormRecipeDirectory(db *gorm.DB) *GormRecipeDirectory {
	return &GormRecipeDirectory{db: db}
}

func (d *GormRecipeDirectory) Get(ctx context.Context, id kernel.UUID) (*recipe.Recipe, error) {
	var dto RecipeDTO
	if err := first(ctx, d.db, &dto, "recipeID", id); err != nil {
		return nil, err
	}
	return recipeToDomain(dto)
}

func (d *GormRecipeDirectory) List(ctx context.Context) ([]*recipe.Recipe, error) {
	var dtos []RecipeDTO
	if err := d.db.WithContext(ctx).Order("name").Find(&dtos).Error; err != nil {
		return nil, err
	}
	return mapAll(dtos, recipeToDomain)
}

// GormClientDirectory implements ports.ClientDirectory.
type GormClientDirectory struct {
	db *gorm.DB
}

func NewGormClientDirectory(db *gorm.DB) *GormClientDirectory {
	return &GormClientDirectory{db: db}
}

func (d *GormClientDirectory) Get(ctx context.Context, id kernel.UUID) (*client.Client, error) {
	var dto ClientDTO
	if err := first(ctx, d.db, &dto, "clientID", id); err != nil {
		return nil, err
	}
	return clientToDomain(dto)
}

func (d *GormClientDirectory) List(ctx context.Context) ([]*client.Client, error) {
	var dtos []ClientDTO
	if err := d.db.WithContext(ctx).Order("name").Find(&dtos).Error; err != nil {
		return nil, err
	}
	return mapAll(dtos, clientToDomain)
}

func first(ctx context.Context, db *gorm.DB, dst any, param string, id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause(param, err)
	}
	if err := db.WithContext(ctx).First(dst, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.NewObjectNotFoundError(param, id.String())
		}
		return err
	}
	return nil
}

func mapAll[D any, T any](dtos []D, conv func(D) (T, error)) ([]T, error) {
	out := make([]T, 0, len(dtos))
	for _, dto := range dtos {
		v, err := conv(dto)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
