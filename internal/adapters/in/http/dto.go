package http

import (
	"time"

	"batchplant/internal/core/application/production"
	"batchplant/internal/core/domain/model/kernel"
	"batchplant/internal/core/domain/model/order"
	"batchplant/internal/core/domain/model/run"
	"batchplant/internal/core/domain/services"

	"github.com/google/uuid"
)

// Error is the body of every failed request.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type PlaceOrderRequest struct {
	ClientID uuid.UUID `json:"client_id"`
	RecipeID uuid.UUID `json:"recipe_id"`
	VolumeM3 float64   `json:"volume_m3"`
}

type AutoRunRequest struct {
	MaxRows int `json:"max_rows"`
}

type RunBatchRequest struct {
	VehicleID *uuid.UUID `json:"vehicle_id,omitempty"`
}

type SelectVehicleRequest struct {
	VehicleID uuid.UUID `json:"vehicle_id"`
}

type LogRunRequest struct {
	StartSeq  int        `json:"start_seq"`
	EndSeq    int        `json:"end_seq"`
	VehicleID *uuid.UUID `json:"vehicle_id,omitempty"`
	Note      string     `json:"note"`
}

type Row struct {
	Seq       int                `json:"seq"`
	PlannedM3 float64            `json:"planned_m3"`
	State     string             `json:"state"`
	Actual    map[string]float64 `json:"actual,omitempty"`
	StartedAt *time.Time         `json:"started_at,omitempty"`
	DoneAt    *time.Time         `json:"done_at,omitempty"`
	RunID     *uuid.UUID         `json:"run_id,omitempty"`
}

type Order struct {
	ID         uuid.UUID `json:"id"`
	ClientID   uuid.UUID `json:"client_id"`
	RecipeID   uuid.UUID `json:"recipe_id"`
	TotalM3    float64   `json:"total_m3"`
	Status     string    `json:"status"`
	DoneCount  int       `json:"done_count"`
	TotalCount int       `json:"total_count"`
	CreatedAt  time.Time `json:"created_at"`
	Rows       []Row     `json:"rows"`
}

type OrderListItem struct {
	ID         uuid.UUID `json:"id"`
	ClientName string    `json:"client_name"`
	RecipeName string    `json:"recipe_name"`
	TotalM3    float64   `json:"total_m3"`
	Status     string    `json:"status"`
	DoneCount  int       `json:"done_count"`
	TotalCount int       `json:"total_count"`
	CreatedAt  time.Time `json:"created_at"`
}

type StatusChange struct {
	From        string `json:"from"`
	To          string `json:"to"`
	RequeuedSeq int    `json:"requeued_seq,omitempty"`
}

type Discharge struct {
	OrderID   uuid.UUID `json:"order_id"`
	Seq       int       `json:"seq"`
	StartedAt time.Time `json:"started_at"`
}

type Batch struct {
	Number       int     `json:"number"`
	StartSeq     int     `json:"start_seq"`
	EndSeq       int     `json:"end_seq"`
	DoneCount    int     `json:"done_count"`
	RunningCount int     `json:"running_count"`
	TotalCount   int     `json:"total_count"`
	VolumeM3     float64 `json:"volume_m3"`
	Status       string  `json:"status"`
}

type Progress struct {
	OrderID         uuid.UUID  `json:"order_id"`
	Status          string     `json:"status"`
	DoneCount       int        `json:"done_count"`
	TotalCount      int        `json:"total_count"`
	CurrentBatch    *Batch     `json:"current_batch,omitempty"`
	Batches         []Batch    `json:"batches"`
	RunningSeq      int        `json:"running_seq,omitempty"`
	SelectedVehicle *uuid.UUID `json:"selected_vehicle,omitempty"`
}

type Summary struct {
	OrderID     uuid.UUID          `json:"order_id"`
	Status      string             `json:"status"`
	ProducedM3  float64            `json:"produced_m3"`
	RemainingM3 float64            `json:"remaining_m3"`
	SetTotals   map[string]float64 `json:"set_totals"`
	ActTotals   map[string]float64 `json:"actual_totals"`
	DeltaTotals map[string]float64 `json:"delta_totals"`
}

type Run struct {
	ID          uuid.UUID `json:"id"`
	Seq         int       `json:"seq"`
	VehicleID   uuid.UUID `json:"vehicle_id"`
	VehicleName string    `json:"vehicle_name,omitempty"`
	StartSeq    int       `json:"start_seq"`
	EndSeq      int       `json:"end_seq"`
	VolumeM3    float64   `json:"volume_m3"`
	Note        string    `json:"note"`
	CreatedAt   time.Time `json:"created_at"`
}

type LoopResult struct {
	Completed []int  `json:"completed"`
	Reason    string `json:"reason"`
	Run       *Run   `json:"run,omitempty"`
}

type MasterRecord struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

func toOrder(o *order.Order) Order {
	rows := make([]Row, 0, o.TotalCount())
	for _, r := range o.Rows() {
		rows = append(rows, toRow(r))
	}
	return Order{
		ID:         o.ID().Bytes(),
		ClientID:   o.ClientID().Bytes(),
		RecipeID:   o.RecipeID().Bytes(),
		TotalM3:    o.TotalVolume().CubicMetres(),
		Status:     o.Status().String(),
		DoneCount:  o.DoneCount(),
		TotalCount: o.TotalCount(),
		CreatedAt:  o.CreatedAt(),
		Rows:       rows,
	}
}

func toRow(r order.Row) Row {
	out := Row{
		Seq:       r.Seq(),
		PlannedM3: r.PlannedVolume().CubicMetres(),
		State:     r.State().String(),
		Actual:    toMaterials(r.Actual()),
		StartedAt: optionalTime(r.StartedAt()),
		DoneAt:    optionalTime(r.DoneAt()),
	}
	if id := r.RunID(); id != nil {
		runID := id.Bytes()
		out.RunID = &runID
	}
	return out
}

func toBatch(b services.Batch) Batch {
	return Batch{
		Number:       b.Number,
		StartSeq:     b.StartSeq,
		EndSeq:       b.EndSeq,
		DoneCount:    b.DoneCount,
		RunningCount: b.RunningCount,
		TotalCount:   b.TotalCount,
		VolumeM3:     b.Volume.CubicMetres(),
		Status:       b.Status.String(),
	}
}

func toProgress(p production.Progress) Progress {
	out := Progress{
		OrderID:    p.OrderID.Bytes(),
		Status:     p.Status.String(),
		DoneCount:  p.DoneCount,
		TotalCount: p.TotalCount,
		Batches:    make([]Batch, 0, len(p.Batches)),
		RunningSeq: p.RunningSeq,
	}
	for _, b := range p.Batches {
		out.Batches = append(out.Batches, toBatch(b))
	}
	if p.HasCurrentBatch {
		current := toBatch(p.CurrentBatch)
		out.CurrentBatch = &current
	}
	if p.SelectedVehicle != nil {
		id := p.SelectedVehicle.Bytes()
		out.SelectedVehicle = &id
	}
	return out
}

func toSummary(s order.Summary) Summary {
	return Summary{
		OrderID:     s.OrderID.Bytes(),
		Status:      s.Status.String(),
		ProducedM3:  s.ProducedVolume.CubicMetres(),
		RemainingM3: s.RemainingVolume.CubicMetres(),
		SetTotals:   toMaterials(s.SetTotals),
		ActTotals:   toMaterials(s.ActualTotals),
		DeltaTotals: toMaterials(s.DeltaTotals),
	}
}

func toRun(r *run.Run) *Run {
	return &Run{
		ID:        r.ID().Bytes(),
		Seq:       r.Seq(),
		VehicleID: r.VehicleID().Bytes(),
		StartSeq:  r.StartSeq(),
		EndSeq:    r.EndSeq(),
		VolumeM3:  r.Volume().CubicMetres(),
		Note:      r.Note(),
		CreatedAt: r.CreatedAt(),
	}
}

func toLoopResult(res production.LoopResult) LoopResult {
	out := LoopResult{Completed: res.Completed, Reason: string(res.Reason)}
	if out.Completed == nil {
		out.Completed = []int{}
	}
	if res.Run != nil {
		out.Run = toRun(res.Run)
	}
	return out
}

func toMaterials(m kernel.Measurement) map[string]float64 {
	if m == nil {
		return nil
	}
	out := make(map[string]float64, len(m))
	for _, mat := range kernel.Materials() {
		out[string(mat)] = m.Get(mat)
	}
	return out
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func optionalUUID(id *uuid.UUID) (*kernel.UUID, error) {
	if id == nil {
		return nil, nil
	}
	out, err := kernel.UUIDFromBytes(id[:])
	if err != nil {
		return nil, err
	}
	return &out, nil
}
