package events

import (
	"context"
	"sync"
	"waste-route-service/internal/domain"
)

const subscriberBuffer = 16

// Broker is an in-process BinEventBroker keyed by city. Publishing never
// blocks: events for a subscriber whose buffer is full are dropped.
type Broker struct {
	mu   sync.Mutex
	subs map[domain.City]map[chan domain.BinEvent]struct{}
}

func NewBroker() *Broker {
	return &Broker{subs: map[domain.City]map[chan domain.BinEvent]struct{}{}}
}

func (b *Broker) Subscribe(ctx context.Context, city domain.City) (<-chan domain.BinEvent, error) {
	ch := make(chan domain.BinEvent, subscriberBuffer)

	b.mu.Lock()
	if b.subs[city] == nil {
		b.subs[city] = map[chan domain.BinEvent]struct{}{}
	}
	b.subs[city][ch] = struct{}{}
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.unsubscribe(city, ch)
	}()

	return ch, nil
}

func (b *Broker) unsubscribe(city domain.City, ch chan domain.BinEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if m := b.subs[city]; m != nil {
		delete(m, ch)
		if len(m) == 0 {
			delete(b.subs, city)
		}
	}
	close(ch)
}

func (b *Broker) Publish(ctx context.Context, evt domain.BinEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for ch := range b.subs[evt.City] {
		select {
		case ch <- evt:
		default:
		}
	}
	return nil
}

// Subscribers reports the number of live subscriptions for city.
func (b *Broker) Subscribers(city domain.City) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[city])
}
