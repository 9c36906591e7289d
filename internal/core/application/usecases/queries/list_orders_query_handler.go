package queries

import (
	"context"

	"batchplant/internal/core/domain/model/kernel"
	"batchplant/internal/core/domain/model/order"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ListOrdersQueryHandler lists orders with client and recipe names and row
// progress in a single statement.
type ListOrdersQueryHandler struct {
	db *gorm.DB
}

// NewListOrdersQueryHandler creates a handler for order listing.
func NewListOrdersQueryHandler(db *gorm.DB) ListOrdersQueryHandler {
	return ListOrdersQueryHandler{db: db}
}

// Handle executes the query. Orders whose client or recipe is missing from
// master data are still listed with an empty name.
func (h ListOrdersQueryHandler) Handle(ctx context.Context, query ListOrdersQuery) ([]ListOrdersQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	orders := make([]ListOrdersQueryResponse, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			o.id,
			COALESCE(c.name, ''),
			COALESCE(r.name, ''),
			o.total_litres,
			o.status,
			COUNT(w.seq) FILTER (WHERE w.state = ?),
			COUNT(w.seq),
			o.created_at
		FROM orders o
		LEFT JOIN clients c ON c.id = o.client_id
		LEFT JOIN recipes r ON r.id = o.recipe_id
		LEFT JOIN order_rows w ON w.order_id = o.id
		GROUP BY o.id, c.name, r.name
		ORDER BY o.created_at DESC
		LIMIT ?
	`, int(order.RowDone), query.Limit()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var resp ListOrdersQueryResponse
		var id uuid.UUID
		var litres int64
		var status int

		if err = rows.Scan(
			&id,
			&resp.ClientName,
			&resp.RecipeName,
			&litres,
			&status,
			&resp.DoneCount,
			&resp.TotalCount,
			&resp.CreatedAt,
		); err != nil {
			return nil, err
		}

		if resp.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
			return nil, err
		}
		if resp.TotalVolume, err = kernel.VolumeFromLitres(litres); err != nil {
			return nil, err
		}
		resp.Status = order.Status(status)
		resp.CreatedAt = resp.CreatedAt.UTC()
		orders = append(orders, resp)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}
