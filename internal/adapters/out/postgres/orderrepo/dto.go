// Package orderrepo provides data transfer objects and mapping functions for order persistence.
// An order is stored in "orders" and its ledger in "order_rows", one record per row keyed
// by (order_id, seq).
package orderrepo

import (
	"time"

	"batchplant/internal/core/domain/model/kernel"
	"batchplant/internal/core/domain/model/order"

	"github.com/google/uuid"
)

// OrderDTO represents the database structure for persisting order aggregates.
type OrderDTO struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	ClientID    uuid.UUID `gorm:"type:uuid;not null;index"`
	RecipeID    uuid.UUID `gorm:"type:uuid;not null"`
	TotalLitres int64     `gorm:"not null"`
	Status      int       `gorm:"type:smallint;not null;index"`
	CreatedAt   time.Time `gorm:"not null;index"`
	Rows        []RowDTO  `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the database table name for order entities.
func (OrderDTO) TableName() string {
	return "orders"
}

// RowDTO is one ledger row. Actual holds the measured kilograms per material
// as JSON and is null until the row is done.
type RowDTO struct {
	OrderID       uuid.UUID          `gorm:"type:uuid;primaryKey"`
	Seq           int                `gorm:"primaryKey;autoIncrement:false"`
	PlannedLitres int64              `gorm:"not null"`
	State         int                `gorm:"type:smallint;not null"`
	Actual        map[string]float64 `gorm:"type:jsonb;serializer:json"`
	StartedAt     *time.Time
	DoneAt        *time.Time
	RunID         *uuid.UUID `gorm:"type:uuid;index"`
}

// TableName specifies the database table name for ledger rows.
func (RowDTO) TableName() string {
	return "order_rows"
}

// fromDomain converts an order domain aggregate to its database representation.
func fromDomain(o *order.Order) OrderDTO {
	id := o.ID().Bytes()
	rows := make([]RowDTO, 0, o.TotalCount())
	for _, r := range o.Rows() {
		rows = append(rows, rowFromDomain(id, r))
	}

	return OrderDTO{
		ID:          id,
		ClientID:    o.ClientID().Bytes(),
		RecipeID:    o.RecipeID().Bytes(),
		TotalLitres: o.TotalVolume().Litres(),
		Status:      int(o.Status()),
		CreatedAt:   o.CreatedAt(),
		Rows:        rows,
	}
}

func rowFromDomain(orderID uuid.UUID, r order.Row) RowDTO {
	dto := RowDTO{
		OrderID:       orderID,
		Seq:           r.Seq(),
		PlannedLitres: r.PlannedVolume().Litres(),
		State:         int(r.State()),
		StartedAt:     timePtr(r.StartedAt()),
		DoneAt:        timePtr(r.DoneAt()),
	}
	if actual := r.Actual(); actual != nil {
		dto.Actual = make(map[string]float64, len(actual))
		for m, q := range actual {
			dto.Actual[string(m)] = q
		}
	}
	if runID := r.RunID(); runID != nil {
		raw := runID.Bytes()
		dto.RunID = &raw
	}
	return dto
}

// toDomain converts a database DTO to an order domain aggregate.
// Rows must be ordered by sequence.
func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	clientID, err := kernel.UUIDFromBytes(dto.ClientID[:])
	if err != nil {
		return nil, err
	}
	recipeID, err := kernel.UUIDFromBytes(dto.RecipeID[:])
	if err != nil {
		return nil, err
	}
	total, err := kernel.VolumeFromLitres(dto.TotalLitres)
	if err != nil {
		return nil, err
	}

	rows := make([]order.Row, 0, len(dto.Rows))
	for _, rd := range dto.Rows {
		r, rowErr := rowToDomain(rd)
		if rowErr != nil {
			return nil, rowErr
		}
		rows = append(rows, r)
	}

	return order.RestoreOrder(id, clientID, recipeID, total, order.Status(dto.Status), dto.CreatedAt.UTC(), rows)
}

func rowToDomain(dto RowDTO) (order.Row, error) {
	planned, err := kernel.VolumeFromLitres(dto.PlannedLitres)
	if err != nil {
		return order.Row{}, err
	}

	var actual kernel.Measurement
	if dto.Actual != nil {
		values := make(map[kernel.Material]float64, len(dto.Actual))
		for m, q := range dto.Actual {
			values[kernel.Material(m)] = q
		}
		if actual, err = kernel.NewMeasurement(values); err != nil {
			return order.Row{}, err
		}
	}

	var runID *kernel.UUID
	if dto.RunID != nil {
		id, idErr := kernel.UUIDFromBytes((*dto.RunID)[:])
		if idErr != nil {
			return order.Row{}, idErr
		}
		runID = &id
	}

	return order.RestoreRow(dto.Seq, planned, order.RowState(dto.State), actual,
		timeValue(dto.StartedAt), timeValue(dto.DoneAt), runID)
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func timeValue(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return t.UTC()
}
