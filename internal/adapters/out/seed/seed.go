// Package seed holds the master data a fresh plant starts with: three 15 m³
// truck mixers, one client and the M25 recipe. Identifiers are fixed so that
// every store seeded from here agrees on them.
package seed

import (
	"fmt"

	"batchplant/internal/core/domain/model/client"
	"batchplant/internal/core/domain/model/kernel"
	"batchplant/internal/core/domain/model/recipe"
	"batchplant/internal/core/domain/model/vehicle"
)

var (
	ClientID = kernel.MustUUIDFromString("6a1f3c2e-0b7d-4c59-9e1a-5d2f8b3c4a01")
	RecipeID = kernel.MustUUIDFromString("6a1f3c2e-0b7d-4c59-9e1a-5d2f8b3c4a02")
	truckIDs = []string{
		"6a1f3c2e-0b7d-4c59-9e1a-5d2f8b3c4a11",
		"6a1f3c2e-0b7d-4c59-9e1a-5d2f8b3c4a12",
		"6a1f3c2e-0b7d-4c59-9e1a-5d2f8b3c4a13",
	}
)

// Data is a complete master data set.
type Data struct {
	Vehicles []*vehicle.Vehicle
	Recipes  []*recipe.Recipe
	Clients  []*client.Client
}

// Default builds the initial master data.
func Default() (Data, error) {
	var d Data

	for i, raw := range truckIDs {
		v, err := vehicle.NewVehicle(kernel.MustUUIDFromString(raw),
			fmt.Sprintf("Truck-%02d", i+1), 15*kernel.CubicMetre, "", "")
		if err != nil {
			return Data{}, err
		}
		d.Vehicles = append(d.Vehicles, v)
	}

	r, err := recipe.NewRecipe(RecipeID, "M25 DEFAULT", map[kernel.Material]float64{
		kernel.Cement: 350,
		kernel.Sand:   650,
		kernel.Agg1:   600,
		kernel.Agg2:   400,
		kernel.Water:  180,
		kernel.Admix:  2.5,
	})
	if err != nil {
		return Data{}, err
	}
	d.Recipes = append(d.Recipes, r)

	c, err := client.NewClient(ClientID, "ABC Builders")
	if err != nil {
		return Data{}, err
	}
	d.Clients = append(d.Clients, c)

	return d, nil
}
