package events

import (
	"context"
	"encoding/json"
	"fmt"
	"waste-route-service/internal/domain"
	"waste-route-service/internal/platform/logger"

	redis "github.com/redis/go-redis/v9"
)

// RedisBroker implements BinEventBroker over Redis Pub/Sub so every server
// instance sees events published by any other.
type RedisBroker struct {
	rdb *redis.Client
	log logger.Logger
}

// NewRedisBroker parses url (redis://...) and verifies the connection.
func NewRedisBroker(ctx context.Context, url string) (*RedisBroker, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis broker: parse url: %w", err)
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis broker: ping: %w", err)
	}
	return &RedisBroker{rdb: rdb, log: logger.New("redis_broker")}, nil
}

func (b *RedisBroker) chanName(city domain.City) string { return "bins:" + string(city) }

func (b *RedisBroker) Publish(ctx context.Context, evt domain.BinEvent) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("redis broker: encode event: %w", err)
	}
	if err := b.rdb.Publish(ctx, b.chanName(evt.City), data).Err(); err != nil {
		return fmt.Errorf("redis broker: publish: %w", err)
	}
	return nil
}

func (b *RedisBroker) Subscribe(ctx context.Context, city domain.City) (<-chan domain.BinEvent, error) {
	ps := b.rdb.Subscribe(ctx, b.chanName(city))
	// The first reply confirms the subscription.
	if _, err := ps.Receive(ctx); err != nil {
		ps.Close()
		return nil, fmt.Errorf("redis broker: subscribe %s: %w", city, err)
	}

	ch := make(chan domain.BinEvent, subscriberBuffer)
	msgs := ps.Channel()

	go func() {
		defer close(ch)
		defer ps.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var evt domain.BinEvent
				if err := json.Unmarshal([]byte(msg.Payload), &evt); err != nil {
					b.log.Warnf("drop malformed event on %s: %v", msg.Channel, err)
					continue
				}
				select {
				case ch <- evt:
				default:
				}
			}
		}
	}()

	return ch, nil
}

func (b *RedisBroker) Close() error {
	return b.rdb.Close()
}
