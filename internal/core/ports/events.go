package ports

import (
	"context"
	"time"

	"batchplant/internal/core/domain/model/kernel"
)

// EventType names a production event on the outbound stream.
type EventType string

const (
	EventRowStarted    EventType = "row_started"
	EventRowCompleted  EventType = "row_completed"
	EventRowRequeued   EventType = "row_requeued"
	EventRunLogged     EventType = "run_logged"
	EventStatusChanged EventType = "status_changed"
)

// ProductionEvent is published after the change it describes has committed.
// RowSeq is zero and RunID nil when not applicable.
type ProductionEvent struct {
	Type    EventType
	OrderID kernel.UUID
	RowSeq  int
	RunID   *kernel.UUID
	Status  string
	At      time.Time
}

// EventPublisher delivers production events to observers. Delivery is best
// effort: a failure is reported but never undoes the committed change.
type EventPublisher interface {
	Publish(ctx context.Context, event ProductionEvent) error
}

// ProductionMetrics records production counters.
type ProductionMetrics interface {
	RowStarted()
	RowCompleted(discharge time.Duration)
	RowRequeued()
	RunLogged()
	StatusChanged(to string)
}
