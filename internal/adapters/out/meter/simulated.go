// Package meter provides the material meter used when the plant has no real
// load cells attached. Every dosed quantity is the recipe setpoint scaled to
// the row volume and perturbed by a uniform error within the tolerance.
package meter

import (
	"context"
	"math"
	"math/rand/v2"
	"sync"

	"batchplant/internal/core/domain/model/kernel"
	"batchplant/internal/pkg/errs"

	"gonum.org/v1/gonum/stat/distuv"
)

// DefaultTolerancePct is the dosing error of the simulated scales.
const DefaultTolerancePct = 2.5

// Simulated is safe for concurrent use.
type Simulated struct {
	mu        sync.Mutex
	tolerance float64
	deviation distuv.Uniform
}

// NewSimulated creates a meter with errors drawn from [-tolerancePct, +tolerancePct].
// A nil src seeds from the runtime's random source.
func NewSimulated(tolerancePct float64, src rand.Source) (*Simulated, error) {
	if math.IsNaN(tolerancePct) || tolerancePct < 0 || tolerancePct >= 100 {
		return nil, errs.NewValueIsOutOfRangeError("tolerancePct", tolerancePct, 0, 100)
	}
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &Simulated{
		tolerance: tolerancePct,
		deviation: distuv.Uniform{Min: -tolerancePct, Max: tolerancePct, Src: src},
	}, nil
}

// TolerancePct returns the configured tolerance.
func (m *Simulated) TolerancePct() float64 {
	return m.tolerance
}

// Measure returns the quantities dosed into a row of the planned volume.
func (m *Simulated) Measure(ctx context.Context, setpoints kernel.Measurement, planned kernel.Volume) (kernel.Measurement, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !planned.IsPositive() {
		return nil, errs.NewValueIsInvalidError("planned volume")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	values := make(map[kernel.Material]float64, len(kernel.Materials()))
	for _, mat := range kernel.Materials() {
		pct := 0.0
		if m.tolerance > 0 {
			pct = m.deviation.Rand()
		}
		values[mat] = kernel.Round3(setpoints.Get(mat) * (1 + pct/100) * planned.CubicMetres())
	}
	return kernel.NewMeasurement(values)
}
