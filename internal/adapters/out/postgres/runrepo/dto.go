// Package runrepo persists runs, the immutable records of a vehicle leaving
// the plant with one batch.
package runrepo

import (
	"time"

	"batchplant/internal/core/domain/model/kernel"
	"batchplant/internal/core/domain/model/run"

	"github.com/google/uuid"
)

// RunDTO represents the database structure for runs. (order_id, seq) is unique.
type RunDTO struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_runs_order_seq"`
	Seq          int       `gorm:"not null;uniqueIndex:idx_runs_order_seq"`
	VehicleID    uuid.UUID `gorm:"type:uuid;not null;index"`
	StartSeq     int       `gorm:"not null"`
	EndSeq       int       `gorm:"not null"`
	VolumeLitres int64     `gorm:"not null"`
	Note         string    `gorm:"type:text"`
	CreatedAt    time.Time `gorm:"not null"`
}

// TableName specifies the database table name for runs.
func (RunDTO) TableName() string {
	return "runs"
}

func fromDomain(r *run.Run) RunDTO {
	return RunDTO{
		ID:           r.ID().Bytes(),
		OrderID:      r.OrderID().Bytes(),
		Seq:          r.Seq(),
		VehicleID:    r.VehicleID().Bytes(),
		StartSeq:     r.StartSeq(),
		EndSeq:       r.EndSeq(),
		VolumeLitres: r.Volume().Litres(),
		Note:         r.Note(),
		CreatedAt:    r.CreatedAt(),
	}
}

func toDomain(dto RunDTO) (*run.Run, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	orderID, err := kernel.UUIDFromBytes(dto.OrderID[:])
	if err != nil {
		return nil, err
	}
	vehicleID, err := kernel.UUIDFromBytes(dto.VehicleID[:])
	if err != nil {
		return nil, err
	}
	volume, err := kernel.VolumeFromLitres(dto.VolumeLitres)
	if err != nil {
		return nil, err
	}

	return run.RestoreRun(id, orderID, dto.Seq, vehicleID, dto.StartSeq, dto.EndSeq, volume, dto.Note, dto.CreatedAt.UTC())
}
