package queries

import (
	"errors"
	"time"

	"batchplant/internal/core/domain/model/kernel"
	"batchplant/internal/pkg/errs"
	"batchplant/internal/pkg/guard"
)

var ErrGetRunsByOrderQueryIsNotConstructed = errors.New(
	"GetRunsByOrderQuery must be created via NewGetRunsByOrderQuery constructor",
)

// GetRunsByOrderQuery retrieves the load log of one order.
type GetRunsByOrderQuery struct {
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

func NewGetRunsByOrderQuery(orderID kernel.UUID) (GetRunsByOrderQuery, error) {
	if err := orderID.Validate(); err != nil {
		return GetRunsByOrderQuery{}, errs.NewValueIsRequiredErrorWithCause("orderID", err)
	}
	return GetRunsByOrderQuery{orderID: orderID, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetRunsByOrderQuery) Validate() error {
	return q.guard.Validate(ErrGetRunsByOrderQueryIsNotConstructed)
}

func (q GetRunsByOrderQuery) OrderID() kernel.UUID {
	return q.orderID
}

// GetRunsByOrderQueryResponse is one run, joined with its vehicle.
type GetRunsByOrderQueryResponse struct {
	ID          kernel.UUID
	Seq         int
	VehicleID   kernel.UUID
	VehicleName string
	StartSeq    int
	EndSeq      int
	Volume      kernel.Volume
	Note        string
	CreatedAt   time.Time
}
