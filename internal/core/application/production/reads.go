package production

import (
	"context"

	"batchplant/internal/core/domain/model/kernel"
	"batchplant/internal/core/domain/model/order"
	"batchplant/internal/core/domain/services"
)

// Progress is the live view of an order on the plant floor.
type Progress struct {
	OrderID         kernel.UUID
	Status          order.Status
	DoneCount       int
	TotalCount      int
	CurrentBatch    services.Batch
	HasCurrentBatch bool
	Batches         []services.Batch
	// RunningSeq is the row being discharged, zero when none.
	RunningSeq int
	// SelectedVehicle is the operator's choice for the current batch.
	SelectedVehicle *kernel.UUID
}

// Order loads an order with its ledger.
func (c *Controller) Order(ctx context.Context, orderID kernel.UUID) (*order.Order, error) {
	return c.uow.Create().OrderRepository().Get(ctx, orderID)
}

// Progress recomputes the batches from the stored ledger.
func (c *Controller) Progress(ctx context.Context, orderID kernel.UUID) (Progress, error) {
	o, err := c.Order(ctx, orderID)
	if err != nil {
		return Progress{}, err
	}
	batches, err := c.assigner.Batches(o)
	if err != nil {
		return Progress{}, err
	}

	p := Progress{
		OrderID:    o.ID(),
		Status:     o.Status(),
		DoneCount:  o.DoneCount(),
		TotalCount: o.TotalCount(),
		Batches:    batches,
	}
	p.CurrentBatch, p.HasCurrentBatch = services.CurrentBatch(batches)
	if row, ok := o.RunningRow(); ok {
		p.RunningSeq = row.Seq()
	}
	if p.HasCurrentBatch {
		if id, ok := c.SelectedVehicle(orderID, p.CurrentBatch.Number); ok {
			p.SelectedVehicle = &id
		}
	}
	return p, nil
}

// Summary reports produced volume and material totals against the recipe.
func (c *Controller) Summary(ctx context.Context, orderID kernel.UUID) (order.Summary, error) {
	o, err := c.Order(ctx, orderID)
	if err != nil {
		return order.Summary{}, err
	}
	rec, err := c.recipes.Get(ctx, o.RecipeID())
	if err != nil {
		return order.Summary{}, err
	}
	return o.Summarize(rec.Setpoints()), nil
}
