package services

import (
	"context"
	"errors"
	"testing"
	"time"
	"waste-route-service/internal/adapters/events"
	"waste-route-service/internal/adapters/repositories"
	"waste-route-service/internal/domain"
	"waste-route-service/internal/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRecorder struct {
	got []domain.BinEvent
	err error
}

func (s *stubRecorder) Record(_ context.Context, evt domain.BinEvent) error {
	s.got = append(s.got, evt)
	return s.err
}

type failingBroker struct{}

func (failingBroker) Publish(context.Context, domain.BinEvent) error {
	return errors.New("broker down")
}

func (failingBroker) Subscribe(context.Context, domain.City) (<-chan domain.BinEvent, error) {
	return nil, errors.New("broker down")
}

var fixedNow = time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

func newFillLevelService(t *testing.T) (*FillLevelService, *repositories.MemoryStore, *stubRecorder) {
	t.Helper()
	mem := repositories.NewMemoryStore()
	saveBins(t, mem, indoreBins())
	rec := &stubRecorder{}
	return &FillLevelService{
		Bins:    mem.Bins(),
		Events:  events.NewBroker(),
		History: rec,
		Now:     func() time.Time { return fixedNow },
	}, mem, rec
}

func TestUpdateFillLevelDeltaReclassifiesAndPublishes(t *testing.T) {
	svc, mem, rec := newFillLevelService(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sub, err := svc.Events.Subscribe(ctx, domain.CityIndore)
	require.NoError(t, err)

	got, err := svc.UpdateFillLevel(context.Background(), FillLevelUpdate{BinID: "INDORE-CZ-002", Delta: 6})
	require.NoError(t, err)
	assert.Equal(t, 92, got.FillLevel)
	assert.Equal(t, domain.PriorityCritical, got.Priority)
	assert.True(t, fixedNow.Equal(got.UpdatedAt))

	stored, err := mem.Bins().FindByBinID(context.Background(), "INDORE-CZ-002")
	require.NoError(t, err)
	assert.Equal(t, 92, stored.FillLevel)

	select {
	case evt := <-sub:
		assert.Equal(t, domain.EventFillLevelUpdated, evt.Type)
		assert.Equal(t, 86, evt.PreviousFillLevel)
		assert.Equal(t, domain.PriorityHigh, evt.PreviousPriority)
		assert.Equal(t, domain.PriorityCritical, evt.Priority)
		assert.Equal(t, SourceAPI, evt.Source)
		assert.NotEmpty(t, evt.ID)
	case <-time.After(time.Second):
		t.Fatal("no event published")
	}

	require.Len(t, rec.got, 1)
	assert.Equal(t, "INDORE-CZ-002", rec.got[0].BinID)
}

func TestUpdateFillLevelAbsoluteAndClamp(t *testing.T) {
	svc, _, _ := newFillLevelService(t)
	ctx := context.Background()

	level := 10
	got, err := svc.UpdateFillLevel(ctx, FillLevelUpdate{BinID: "INDORE-CZ-001", Level: &level, Source: SourceMQTT})
	require.NoError(t, err)
	assert.Equal(t, 10, got.FillLevel)
	assert.Equal(t, domain.PriorityLow, got.Priority)

	got, err = svc.UpdateFillLevel(ctx, FillLevelUpdate{BinID: "INDORE-CZ-001", Delta: -50})
	require.NoError(t, err)
	assert.Equal(t, 0, got.FillLevel)

	got, err = svc.UpdateFillLevel(ctx, FillLevelUpdate{BinID: "INDORE-CZ-001", Delta: 250})
	require.NoError(t, err)
	assert.Equal(t, 100, got.FillLevel)

	bad := 101
	_, err = svc.UpdateFillLevel(ctx, FillLevelUpdate{BinID: "INDORE-CZ-001", Level: &bad})
	assert.ErrorIs(t, err, domain.ErrInvalidFillLevel)
}

func TestUpdateFillLevelErrors(t *testing.T) {
	svc, _, _ := newFillLevelService(t)

	_, err := svc.UpdateFillLevel(context.Background(), FillLevelUpdate{BinID: "NOPE", Delta: 1})
	assert.ErrorIs(t, err, ports.ErrNotFound)

	_, err = svc.UpdateFillLevel(context.Background(), FillLevelUpdate{BinID: "  "})
	assert.Error(t, err)
}

func TestUpdateFillLevelHistoryFailureIsNotFatal(t *testing.T) {
	svc, _, rec := newFillLevelService(t)
	rec.err = errors.New("influx down")

	got, err := svc.UpdateFillLevel(context.Background(), FillLevelUpdate{BinID: "INDORE-IZ-003", Delta: 3})
	require.NoError(t, err)
	assert.Equal(t, 65, got.FillLevel)
}

func TestUpdateFillLevelPublishFailureStillSaves(t *testing.T) {
	svc, mem, _ := newFillLevelService(t)
	svc.Events = failingBroker{}

	got, err := svc.UpdateFillLevel(context.Background(), FillLevelUpdate{BinID: "INDORE-IZ-003", Delta: 3})
	require.Error(t, err)
	require.NotNil(t, got)

	stored, err := mem.Bins().FindByBinID(context.Background(), "INDORE-IZ-003")
	require.NoError(t, err)
	assert.Equal(t, 65, stored.FillLevel)
}
