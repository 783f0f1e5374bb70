package events

import (
	"context"
	"testing"
	"time"
	"waste-route-service/internal/domain"
	"waste-route-service/internal/ports"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ ports.BinEventBroker = (*Broker)(nil)
	_ ports.BinEventBroker = (*RedisBroker)(nil)
)

func sampleEvent(city domain.City) domain.BinEvent {
	return domain.BinEvent{
		ID:               "evt-1",
		Type:             domain.EventFillLevelUpdated,
		BinID:            "INDORE-CZ-001",
		City:             city,
		FillLevel:        91,
		Priority:         domain.PriorityCritical,
		PreviousPriority: domain.PriorityHigh,
		OccurredAt:       time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC),
	}
}

func receive(t *testing.T, ch <-chan domain.BinEvent) domain.BinEvent {
	t.Helper()
	select {
	case evt, ok := <-ch:
		require.True(t, ok, "channel closed")
		return evt
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for event")
		return domain.BinEvent{}
	}
}

func TestBrokerPublishSubscribe(t *testing.T) {
	b := NewBroker()
	ctx, cancel := context.WithCancel(context.Background())

	ch, err := b.Subscribe(ctx, domain.CityIndore)
	require.NoError(t, err)
	other, err := b.Subscribe(ctx, domain.CitySurat)
	require.NoError(t, err)

	require.NoError(t, b.Publish(context.Background(), sampleEvent(domain.CityIndore)))

	got := receive(t, ch)
	assert.Equal(t, "INDORE-CZ-001", got.BinID)
	assert.True(t, got.PriorityChanged())

	select {
	case evt := <-other:
		t.Fatalf("surat subscriber got indore event %+v", evt)
	default:
	}

	cancel()
	assert.Eventually(t, func() bool { return b.Subscribers(domain.CityIndore) == 0 }, time.Second, 10*time.Millisecond)

	_, ok := <-ch
	assert.False(t, ok, "channel should be closed after cancel")
}

func TestBrokerDropsWhenSubscriberIsSlow(t *testing.T) {
	b := NewBroker()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := b.Subscribe(ctx, domain.CityIndore)
	require.NoError(t, err)

	for i := 0; i < subscriberBuffer*2; i++ {
		require.NoError(t, b.Publish(context.Background(), sampleEvent(domain.CityIndore)))
	}
	assert.Len(t, ch, subscriberBuffer)
}

func TestRedisBrokerPublishSubscribe(t *testing.T) {
	mr := miniredis.RunT(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b, err := NewRedisBroker(ctx, "redis://"+mr.Addr())
	require.NoError(t, err)
	defer b.Close()

	ch, err := b.Subscribe(ctx, domain.CityIndore)
	require.NoError(t, err)

	want := sampleEvent(domain.CityIndore)
	require.NoError(t, b.Publish(ctx, want))

	got := receive(t, ch)
	assert.Equal(t, want.BinID, got.BinID)
	assert.Equal(t, want.Priority, got.Priority)
	assert.True(t, want.OccurredAt.Equal(got.OccurredAt))

	cancel()
	select {
	case _, ok := <-ch:
		assert.False(t, ok, "channel should be closed after cancel")
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed after cancel")
	}
}

func TestNewRedisBrokerRejectsBadURL(t *testing.T) {
	_, err := NewRedisBroker(context.Background(), "not-a-url")
	require.Error(t, err)
}
