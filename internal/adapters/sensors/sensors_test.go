package sensors

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"sync"
	"testing"
	"time"
	"waste-route-service/internal/adapters/repositories"
	"waste-route-service/internal/domain"
	"waste-route-service/internal/services"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockClient struct {
	Disconnected bool
}

func (m *mockClient) IsConnected() bool       { return true }
func (m *mockClient) Disconnect(quiesce uint) { m.Disconnected = true }
func (m *mockClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	return &mockToken{}
}
func (m *mockClient) Subscribe(topic string, qos byte, callback mqtt.MessageHandler) mqtt.Token {
	return &mockToken{}
}

type mockToken struct{}

func (t *mockToken) Wait() bool                       { return true }
func (t *mockToken) WaitTimeout(_ time.Duration) bool { return true }
func (t *mockToken) Error() error                     { return nil }
func (t *mockToken) Done() <-chan struct{}            { return make(chan struct{}) }

func TestCloseDisconnectsClient(t *testing.T) {
	mc := &mockClient{}
	client := &MQTTClient{client: mc}
	client.Close()
	assert.True(t, mc.Disconnected)
}

func TestDecodeReading(t *testing.T) {
	upd, err := decodeReading("wastewise/bins", "wastewise/bins/INDORE-CZ-001/fill", []byte(`{"delta":7}`), services.SourceMQTT)
	require.NoError(t, err)
	assert.Equal(t, "INDORE-CZ-001", upd.BinID)
	assert.Equal(t, 7, upd.Delta)
	assert.Nil(t, upd.Level)
	assert.Equal(t, services.SourceMQTT, upd.Source)

	upd, err = decodeReading("wastewise/bins/", "wastewise/bins/SURAT-TD-002/fill", []byte(`{"fillLevel":64}`), services.SourceMQTT)
	require.NoError(t, err)
	require.NotNil(t, upd.Level)
	assert.Equal(t, 64, *upd.Level)
}

func TestDecodeReadingRejects(t *testing.T) {
	tests := []struct {
		name    string
		topic   string
		payload string
	}{
		{"other prefix", "other/INDORE-CZ-001/fill", `{"delta":1}`},
		{"wrong suffix", "wastewise/bins/INDORE-CZ-001/temp", `{"delta":1}`},
		{"missing bin", "wastewise/bins//fill", `{"delta":1}`},
		{"extra level", "wastewise/bins/A/fill/x", `{"delta":1}`},
		{"bad json", "wastewise/bins/A/fill", `{`},
		{"empty body", "wastewise/bins/A/fill", `{}`},
		{"both fields", "wastewise/bins/A/fill", `{"delta":5,"fillLevel":80}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeReading("wastewise/bins", tt.topic, []byte(tt.payload), services.SourceMQTT)
			assert.Error(t, err)
		})
	}
}

type recordingUpdater struct {
	mu   sync.Mutex
	got  []services.FillLevelUpdate
	fail error
}

func (r *recordingUpdater) UpdateFillLevel(_ context.Context, upd services.FillLevelUpdate) (*domain.Bin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, upd)
	if r.fail != nil {
		return nil, r.fail
	}
	return &domain.Bin{BinID: upd.BinID, FillLevel: upd.Delta}, nil
}

type fakeSubscriber struct {
	topic string
	cb    mqtt.MessageHandler
}

func (f *fakeSubscriber) Subscribe(topic string, _ byte, cb mqtt.MessageHandler) error {
	f.topic, f.cb = topic, cb
	return nil
}

func TestListenerHandlesReadings(t *testing.T) {
	up := &recordingUpdater{}
	l := NewListener("wastewise/bins", 1, up)

	sub := &fakeSubscriber{}
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, l.Start(ctx, sub))
	assert.Equal(t, "wastewise/bins/+/fill", sub.topic)

	l.handle(ctx, "wastewise/bins/INDORE-CZ-001/fill", []byte(`{"delta":4}`))
	l.handle(ctx, "wastewise/bins/INDORE-CZ-001/fill", []byte(`not json`))

	up.fail = errors.New("boom")
	l.handle(ctx, "wastewise/bins/INDORE-CZ-002/fill", []byte(`{"delta":1}`))

	cancel()
	l.handle(ctx, "wastewise/bins/INDORE-CZ-003/fill", []byte(`{"delta":1}`))

	require.Len(t, up.got, 2)
	assert.Equal(t, "INDORE-CZ-001", up.got[0].BinID)
	assert.Equal(t, 4, up.got[0].Delta)
	assert.Equal(t, services.SourceMQTT, up.got[0].Source)
}

type capturePublisher struct {
	topics   []string
	payloads [][]byte
}

func (c *capturePublisher) Publish(topic string, payload []byte, _ byte) error {
	c.topics = append(c.topics, topic)
	c.payloads = append(c.payloads, payload)
	return nil
}

func seedBins(t *testing.T) *repositories.MemoryStore {
	t.Helper()
	mem := repositories.NewMemoryStore()
	for _, b := range []domain.Bin{
		{BinID: "INDORE-CZ-001", City: domain.CityIndore, Zone: "Commercial", FillLevel: 50},
		{BinID: "INDORE-CZ-002", City: domain.CityIndore, Zone: "Commercial", FillLevel: 95},
		{BinID: "SURAT-TD-001", City: domain.CitySurat, Zone: "Textile", FillLevel: 20},
	} {
		require.NoError(t, mem.Bins().Save(context.Background(), &b))
	}
	return mem
}

func TestSimulatorTick(t *testing.T) {
	mem := seedBins(t)
	pub := &capturePublisher{}
	city := domain.CityIndore

	sim := &Simulator{
		Bins:      mem.Bins(),
		Publisher: pub,
		Prefix:    "wastewise/bins",
		City:      &city,
		MaxDelta:  5,
		Rand:      rand.New(rand.NewPCG(1, 2)),
	}

	n, err := sim.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"wastewise/bins/INDORE-CZ-001/fill", "wastewise/bins/INDORE-CZ-002/fill"}, pub.topics)

	for _, raw := range pub.payloads {
		var p fillPayload
		require.NoError(t, json.Unmarshal(raw, &p))
		require.NotNil(t, p.Delta)
		assert.GreaterOrEqual(t, *p.Delta, 0)
		assert.LessOrEqual(t, *p.Delta, 5)
	}
}

func TestSimulatorRunThroughLocalPublisher(t *testing.T) {
	mem := seedBins(t)
	svc := &services.FillLevelService{Bins: mem.Bins()}

	sim := &Simulator{
		Bins:      mem.Bins(),
		Publisher: LocalPublisher{Prefix: "wastewise/bins", Updater: svc},
		Prefix:    "wastewise/bins",
		MaxDelta:  10,
	}
	require.NoError(t, sim.Run(context.Background(), time.Millisecond, 3))

	got, err := mem.Bins().FindByBinID(context.Background(), "INDORE-CZ-002")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, got.FillLevel, 95)
	assert.LessOrEqual(t, got.FillLevel, 100)
	assert.Equal(t, domain.PriorityCritical, got.Priority)

	low, err := mem.Bins().FindByBinID(context.Background(), "SURAT-TD-001")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, low.FillLevel, 20)
	assert.Equal(t, domain.Classify(low.FillLevel), low.Priority)
}
