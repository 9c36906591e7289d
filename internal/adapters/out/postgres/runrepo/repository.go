package runrepo

import (
	"context"
	"errors"
	"fmt"

	"batchplant/internal/core/domain/model/kernel"
	"batchplant/internal/core/domain/model/run"
	"batchplant/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormRunRepository implements ports.RunRepository using GORM.
type GormRunRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormRunRepository creates a new GORM run repository.
func NewGormRunRepository(db *gorm.DB, tracker aggregateTracker) *GormRunRepository {
	return &GormRunRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add inserts a run. A second run with the same order and sequence fails with
// errs.ConflictError when the connection translates driver errors.
func (r *GormRunRepository) Add(ctx context.Context, aggregate *run.Run) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return errs.NewConflictErrorWithCause(fmt.Sprintf("run %d", aggregate.Seq()), err)
		}
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// ListByOrder returns the runs of an order by run sequence.
func (r *GormRunRepository) ListByOrder(ctx context.Context, orderID kernel.UUID) ([]*run.Run, error) {
	if err := orderID.Validate(); err != nil {
		return nil, err
	}

	var dtos []RunDTO
	if err := r.db.WithContext(ctx).Where("order_id = ?", orderID.Bytes()).Order("seq").Find(&dtos).Error; err != nil {
		return nil, err
	}

	runs := make([]*run.Run, 0, len(dtos))
	for _, dto := range dtos {
		rn, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		runs = append(runs, rn)
	}
	return runs, nil
}
