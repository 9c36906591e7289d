package queries

import (
	"context"

	"batchplant/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetRunsByOrderQueryHandler reads runs ordered by run sequence.
type GetRunsByOrderQueryHandler struct {
	db *gorm.DB
}

func NewGetRunsByOrderQueryHandler(db *gorm.DB) GetRunsByOrderQueryHandler {
	return GetRunsByOrderQueryHandler{db: db}
}

// Handle executes the query. An order without runs, or an unknown order,
// yields an empty slice.
func (h GetRunsByOrderQueryHandler) Handle(
	ctx context.Context,
	query GetRunsByOrderQuery,
) ([]GetRunsByOrderQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	runs := make([]GetRunsByOrderQueryResponse, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			r.id,
			r.seq,
			r.vehicle_id,
			COALESCE(v.name, ''),
			r.start_seq,
			r.end_seq,
			r.volume_litres,
			r.note,
			r.created_at
		FROM runs r
		LEFT JOIN vehicles v ON v.id = r.vehicle_id
		WHERE r.order_id = ?
		ORDER BY r.seq
	`, query.OrderID().Bytes()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var resp GetRunsByOrderQueryResponse
		var id, vehicleID uuid.UUID
		var litres int64

		if err = rows.Scan(
			&id,
			&resp.Seq,
			&vehicleID,
			&resp.VehicleName,
			&resp.StartSeq,
			&resp.EndSeq,
			&litres,
			&resp.Note,
			&resp.CreatedAt,
		); err != nil {
			return nil, err
		}

		if resp.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
			return nil, err
		}
		if resp.VehicleID, err = kernel.UUIDFromBytes(vehicleID[:]); err != nil {
			return nil, err
		}
		if resp.Volume, err = kernel.VolumeFromLitres(litres); err != nil {
			return nil, err
		}
		resp.CreatedAt = resp.CreatedAt.UTC()
		runs = append(runs, resp)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return runs, nil
}
