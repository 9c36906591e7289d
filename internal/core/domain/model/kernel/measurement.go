package kernel

import (
	"fmt"
	"math"

	"batchplant/internal/pkg/errs"
)

// Material is one of the components dosed into every cubic metre of concrete.
type Material string

const (
	Cement Material = "cement"
	Sand   Material = "sand"
	Agg1   Material = "agg1"
	Agg2   Material = "agg2"
	Water  Material = "water"
	Admix  Material = "admix"
)

// Materials lists every material in reporting order.
func Materials() []Material {
	return []Material{Cement, Sand, Agg1, Agg2, Water, Admix}
}

// Validate rejects names outside Materials.
func (m Material) Validate() error {
	for _, known := range Materials() {
		if m == known {
			return nil
		}
	}
	return errs.NewValueIsInvalidErrorWithCause("material", fmt.Errorf("%q is not a known material", string(m)))
}

// Measurement maps every material to a quantity in kilograms. It is used both
// for recipe setpoints (per m³) and for the actual quantities dosed into a row.
type Measurement map[Material]float64

// NewMeasurement validates values and fills the materials that are missing
// with zero. Negative or non-finite quantities are rejected.
func NewMeasurement(values map[Material]float64) (Measurement, error) {
	out := make(Measurement, len(Materials()))
	for _, m := range Materials() {
		out[m] = 0
	}
	for m, q := range values {
		if err := m.Validate(); err != nil {
			return nil, err
		}
		if q < 0 || math.IsNaN(q) || math.IsInf(q, 0) {
			return nil, errs.NewValueIsInvalidErrorWithCause(string(m), fmt.Errorf("%v is not a valid quantity", q))
		}
		out[m] = q
	}
	return out, nil
}

// Get returns the quantity of a material, zero when absent.
func (m Measurement) Get(material Material) float64 {
	return m[material]
}

// Clone returns an independent copy; nil stays nil.
func (m Measurement) Clone() Measurement {
	if m == nil {
		return nil
	}
	out := make(Measurement, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Scale multiplies every quantity by factor and rounds to grams.
func (m Measurement) Scale(factor float64) Measurement {
	out := make(Measurement, len(Materials()))
	for _, mat := range Materials() {
		out[mat] = Round3(m[mat] * factor)
	}
	return out
}

// Add returns the per-material sum rounded to grams.
func (m Measurement) Add(other Measurement) Measurement {
	out := make(Measurement, len(Materials()))
	for _, mat := range Materials() {
		out[mat] = Round3(m[mat] + other[mat])
	}
	return out
}

// Sub returns m minus other per material, rounded to grams.
func (m Measurement) Sub(other Measurement) Measurement {
	out := make(Measurement, len(Materials()))
	for _, mat := range Materials() {
		out[mat] = Round3(m[mat] - other[mat])
	}
	return out
}

// Round3 rounds x to three decimal places.
func Round3(x float64) float64 {
	return math.Round(x*1000) / 1000
}
