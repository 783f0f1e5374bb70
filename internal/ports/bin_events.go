package ports

import (
	"context"
	"waste-route-service/internal/domain"
)

// Port: fan-out of bin state changes to interested listeners.
type BinEventBroker interface {
	Publish(ctx context.Context, evt domain.BinEvent) error
	// Receive events for one city until ctx is done, then the channel is closed.
	Subscribe(ctx context.Context, city domain.City) (<-chan domain.BinEvent, error)
}

// Port: durable history of fill level readings.
type FillLevelRecorder interface {
	Record(ctx context.Context, evt domain.BinEvent) error
}
