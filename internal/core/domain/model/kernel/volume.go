package kernel

import (
	"fmt"
	"math"

	"batchplant/internal/pkg/errs"
)

// Volume is an amount of concrete in whole litres. Storing litres keeps row
// planning and run totals exact while still printing as cubic metres.
type Volume int64

const (
	// Litre is the smallest representable volume.
	Litre Volume = 1
	// CubicMetre is the nominal size of a single production row.
	CubicMetre Volume = 1000
)

// VolumeFromLitres returns a Volume after rejecting negative input.
func VolumeFromLitres(litres int64) (Volume, error) {
	v := Volume(litres)
	if err := v.Validate(); err != nil {
		return 0, err
	}
	return v, nil
}

// VolumeFromCubicMetres converts m³ to a Volume rounded to the nearest litre.
//
// Example:
//
//	total, err := kernel.VolumeFromCubicMetres(32.5) // 32500 L
func VolumeFromCubicMetres(m3 float64) (Volume, error) {
	if math.IsNaN(m3) || math.IsInf(m3, 0) {
		return 0, errs.NewValueIsInvalidErrorWithCause("volume", fmt.Errorf("%v is not a finite number", m3))
	}
	return VolumeFromLitres(int64(math.Round(m3 * float64(CubicMetre))))
}

// Validate rejects negative volumes.
func (v Volume) Validate() error {
	if v < 0 {
		return errs.NewValueIsInvalidErrorWithCause("volume", fmt.Errorf("%d L is negative", int64(v)))
	}
	return nil
}

// Litres returns the volume in litres.
func (v Volume) Litres() int64 {
	return int64(v)
}

// CubicMetres returns the volume in m³.
func (v Volume) CubicMetres() float64 {
	return float64(v) / float64(CubicMetre)
}

// IsPositive reports whether the volume is greater than zero.
func (v Volume) IsPositive() bool {
	return v > 0
}

func (v Volume) String() string {
	return fmt.Sprintf("%.3f m³", v.CubicMetres())
}
