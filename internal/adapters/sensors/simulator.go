package sensors

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"time"
	"waste-route-service/internal/domain"
	"waste-route-service/internal/platform/logger"
	"waste-route-service/internal/ports"
	"waste-route-service/internal/services"
)

// Publisher sends a raw payload to a topic.
type Publisher interface {
	Publish(topic string, payload []byte, qos byte) error
}

// LocalPublisher applies simulated readings in process, for running the
// simulator without a broker.
type LocalPublisher struct {
	Prefix  string
	Updater FillLevelUpdater
}

func (p LocalPublisher) Publish(topic string, payload []byte, _ byte) error {
	upd, err := decodeReading(p.Prefix, topic, payload, services.SourceSimulator)
	if err != nil {
		return err
	}
	_, err = p.Updater.UpdateFillLevel(context.Background(), upd)
	return err
}

// Simulator plays the part of the bin sensors: every tick each bin reports
// that it filled up by a random amount.
type Simulator struct {
	Bins      ports.BinRepository
	Publisher Publisher
	Prefix    string
	QoS       byte
	City      *domain.City
	MaxDelta  int
	Rand      *rand.Rand
	Log       logger.Logger
}

// Tick publishes one reading per bin and returns how many were sent.
func (s *Simulator) Tick(ctx context.Context) (int, error) {
	var (
		bins []domain.Bin
		err  error
	)
	if s.City != nil {
		bins, err = s.Bins.FindByCity(ctx, *s.City)
	} else {
		bins, err = s.Bins.List(ctx)
	}
	if err != nil {
		return 0, fmt.Errorf("simulate: list bins: %w", err)
	}

	sent := 0
	for _, b := range bins {
		if err := ctx.Err(); err != nil {
			return sent, err
		}
		payload, _ := json.Marshal(fillPayload{Delta: ptr(s.delta())})
		if err := s.Publisher.Publish(FillTopic(s.Prefix, b.BinID), payload, s.QoS); err != nil {
			return sent, fmt.Errorf("simulate: publish %s: %w", b.BinID, err)
		}
		sent++
	}
	return sent, nil
}

// Run ticks every interval until ctx is done or count ticks have run.
// count <= 0 means no limit.
func (s *Simulator) Run(ctx context.Context, interval time.Duration, count int) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for i := 0; count <= 0 || i < count; i++ {
		n, err := s.Tick(ctx)
		if err != nil {
			return err
		}
		s.log().Infof("tick %d: published %d readings", i+1, n)

		if count > 0 && i+1 == count {
			return nil
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
	return nil
}

func (s *Simulator) delta() int {
	limit := s.MaxDelta
	if limit <= 0 {
		limit = 10
	}
	if s.Rand != nil {
		return s.Rand.IntN(limit + 1)
	}
	return rand.IntN(limit + 1)
}

func (s *Simulator) log() logger.Logger {
	if s.Log == nil {
		return logger.NopLogger{}
	}
	return s.Log
}

func ptr[T any](v T) *T { return &v }
