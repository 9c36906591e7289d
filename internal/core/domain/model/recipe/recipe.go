// Package recipe models concrete mix designs. A recipe gives the quantity of
// every material, in kilograms, needed for one cubic metre.
package recipe

import (
	"errors"
	"strings"

	"batchplant/internal/core/domain/model/kernel"
	"batchplant/internal/pkg/errs"
	"batchplant/internal/pkg/guard"
)

// ErrRecipeIsNotConstructed is returned when a Recipe was not created through NewRecipe.
var ErrRecipeIsNotConstructed = errors.New("Recipe must be created via NewRecipe constructor")

// Recipe is read-only master data.
type Recipe struct {
	id        kernel.UUID
	name      string
	setpoints kernel.Measurement

	guard guard.ConstructorGuard
}

// NewRecipe validates and creates a recipe.
func NewRecipe(id kernel.UUID, name string, setpoints map[kernel.Material]float64) (*Recipe, error) {
	r := &Recipe{guard: guard.NewConstructorGuard()}

	if err := id.Validate(); err != nil {
		return nil, err
	}
	r.id = id

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errs.NewValueIsRequiredError("name")
	}
	r.name = name

	m, err := kernel.NewMeasurement(setpoints)
	if err != nil {
		return nil, err
	}
	r.setpoints = m

	return r, nil
}

// Validate ensures the Recipe was properly constructed.
func (r *Recipe) Validate() error {
	if r == nil {
		return ErrRecipeIsNotConstructed
	}
	return r.guard.Validate(ErrRecipeIsNotConstructed)
}

func (r *Recipe) ID() kernel.UUID { return r.id }

func (r *Recipe) Name() string { return r.name }

// Setpoints returns a copy of the per-m³ quantities.
func (r *Recipe) Setpoints() kernel.Measurement { return r.setpoints.Clone() }
