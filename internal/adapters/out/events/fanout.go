package events

import (
	"context"
	"errors"

	"batchplant/internal/core/ports"
)

// Fanout publishes every event to all publishers, even when some fail.
type Fanout []ports.EventPublisher

func (f Fanout) Publish(ctx context.Context, event ports.ProductionEvent) error {
	var errList []error
	for _, p := range f {
		if err := p.Publish(ctx, event); err != nil {
			errList = append(errList, err)
		}
	}
	return errors.Join(errList...)
}

// Discard drops every event.
type Discard struct{}

func (Discard) Publish(context.Context, ports.ProductionEvent) error { return nil }
