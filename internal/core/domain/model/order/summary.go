package order

import "batchplant/internal/core/domain/model/kernel"

// Summary is the production report of an order: how much was produced and
// how far the dosed materials drifted from the recipe.
type Summary struct {
	OrderID         kernel.UUID
	Status          Status
	ProducedVolume  kernel.Volume
	RemainingVolume kernel.Volume
	SetTotals       kernel.Measurement
	ActualTotals    kernel.Measurement
	DeltaTotals     kernel.Measurement
}

// Summarize totals the done rows. setpoints are the recipe quantities per m³.
// Totals are rounded once, at the end.
func (o *Order) Summarize(setpoints kernel.Measurement) Summary {
	set := make(map[kernel.Material]float64, len(kernel.Materials()))
	act := make(map[kernel.Material]float64, len(kernel.Materials()))

	var produced kernel.Volume
	for _, r := range o.rows {
		if r.state != RowDone {
			continue
		}
		produced += r.planned
		for _, m := range kernel.Materials() {
			set[m] += setpoints.Get(m) * r.planned.CubicMetres()
			act[m] += r.actual.Get(m)
		}
	}

	s := Summary{
		OrderID:         o.id,
		Status:          o.status,
		ProducedVolume:  produced,
		RemainingVolume: o.totalVolume - produced,
		SetTotals:       make(kernel.Measurement, len(set)),
		ActualTotals:    make(kernel.Measurement, len(act)),
	}
	for _, m := range kernel.Materials() {
		s.SetTotals[m] = kernel.Round3(set[m])
		s.ActualTotals[m] = kernel.Round3(act[m])
	}
	s.DeltaTotals = s.ActualTotals.Sub(s.SetTotals)
	return s
}
