package ports

import (
	"context"

	"batchplant/internal/core/domain/model/client"
	"batchplant/internal/core/domain/model/kernel"
	"batchplant/internal/core/domain/model/recipe"
	"batchplant/internal/core/domain/model/vehicle"
)

// Master data is maintained outside the plant and only read here. Get returns
// errs.ObjectNotFoundError for an unknown id and List returns records ordered by name.
type (
	VehicleDirectory interface {
		Get(ctx context.Context, id kernel.UUID) (*vehicle.Vehicle, error)
		List(ctx context.Context) ([]*vehicle.Vehicle, error)
	}

	RecipeDirectory interface {
		Get(ctx context.Context, id kernel.UUID) (*recipe.Recipe, error)
		List(ctx context.Context) ([]*recipe.Recipe, error)
	}

	ClientDirectory interface {
		Get(ctx context.Context, id kernel.UUID) (*client.Client, error)
		List(ctx context.Context) ([]*client.Client, error)
	}
)
