package postgres

import (
	"context"

	"batchplant/internal/adapters/out/postgres/masterdata"
	"batchplant/internal/adapters/out/postgres/orderrepo"
	"batchplant/internal/adapters/out/postgres/runrepo"
	"batchplant/internal/adapters/out/seed"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Models lists every table the plant owns, in creation order.
func Models() []any {
	return []any{
		&masterdata.VehicleDTO{},
		&masterdata.RecipeDTO{},
		&masterdata.ClientDTO{},
		&orderrepo.OrderDTO{},
		&orderrepo.RowDTO{},
		&runrepo.RunDTO{},
	}
}

// Migrate creates or updates the schema.
func Migrate(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).AutoMigrate(Models()...)
}

// Seed inserts the default master data. Records whose id or name already
// exists are left alone, so Seed can run on every start.
func Seed(ctx context.Context, db *gorm.DB) error {
	data, err := seed.Default()
	if err != nil {
		return err
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		skip := tx.Clauses(clause.OnConflict{DoNothing: true})
		for _, v := range data.Vehicles {
			dto := masterdata.VehicleFromDomain(v)
			if err := skip.Create(&dto).Error; err != nil {
				return err
			}
		}
		for _, r := range data.Recipes {
			dto := masterdata.RecipeFromDomain(r)
			if err := skip.Create(&dto).Error; err != nil {
				return err
			}
		}
		for _, c := range data.Clients {
			dto := masterdata.ClientFromDomain(c)
			if err := skip.Create(&dto).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
