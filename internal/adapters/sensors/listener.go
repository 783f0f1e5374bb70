package sensors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"waste-route-service/internal/domain"
	"waste-route-service/internal/platform/logger"
	"waste-route-service/internal/services"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const fillSuffix = "fill"

// FillLevelUpdater applies one decoded reading.
type FillLevelUpdater interface {
	UpdateFillLevel(ctx context.Context, upd services.FillLevelUpdate) (*domain.Bin, error)
}

type Subscriber interface {
	Subscribe(topic string, qos byte, cb mqtt.MessageHandler) error
}

type fillPayload struct {
	Delta     *int `json:"delta"`
	FillLevel *int `json:"fillLevel"`
}

// FillTopic is the topic a sensor for binID publishes to.
func FillTopic(prefix, binID string) string {
	return strings.TrimSuffix(prefix, "/") + "/" + binID + "/" + fillSuffix
}

// decodeReading turns {prefix}/{binId}/fill and a JSON body carrying either
// delta or fillLevel, never both, into an update.
func decodeReading(prefix, topic string, payload []byte, source string) (services.FillLevelUpdate, error) {
	prefix = strings.TrimSuffix(prefix, "/") + "/"
	rest, ok := strings.CutPrefix(topic, prefix)
	if !ok {
		return services.FillLevelUpdate{}, fmt.Errorf("topic %q outside %q", topic, prefix)
	}
	binID, suffix, ok := strings.Cut(rest, "/")
	if !ok || suffix != fillSuffix || binID == "" {
		return services.FillLevelUpdate{}, fmt.Errorf("topic %q is not a fill topic", topic)
	}

	var p fillPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return services.FillLevelUpdate{}, fmt.Errorf("decode payload on %s: %w", topic, err)
	}

	upd := services.FillLevelUpdate{BinID: binID, Source: source}
	switch {
	case p.FillLevel != nil && p.Delta != nil:
		return services.FillLevelUpdate{}, errors.New("payload has both delta and fillLevel")
	case p.FillLevel != nil:
		upd.Level = p.FillLevel
	case p.Delta != nil:
		upd.Delta = *p.Delta
	default:
		return services.FillLevelUpdate{}, errors.New("payload needs delta or fillLevel")
	}
	return upd, nil
}

// Listener feeds sensor readings from MQTT into the fill level service.
type Listener struct {
	prefix  string
	qos     byte
	updater FillLevelUpdater
	timeout time.Duration
	log     logger.Logger
}

func NewListener(prefix string, qos byte, updater FillLevelUpdater) *Listener {
	return &Listener{
		prefix:  prefix,
		qos:     qos,
		updater: updater,
		timeout: 5 * time.Second,
		log:     logger.New("mqtt_listener"),
	}
}

// Start subscribes to every bin's fill topic. Messages arriving after ctx is
// cancelled are ignored.
func (l *Listener) Start(ctx context.Context, sub Subscriber) error {
	topic := FillTopic(l.prefix, "+")
	if err := sub.Subscribe(topic, l.qos, l.handler(ctx)); err != nil {
		return fmt.Errorf("mqtt subscribe %s: %w", topic, err)
	}
	l.log.Infof("listening for fill levels on %s", topic)
	return nil
}

func (l *Listener) handler(ctx context.Context) mqtt.MessageHandler {
	return func(_ mqtt.Client, msg mqtt.Message) {
		l.handle(ctx, msg.Topic(), msg.Payload())
	}
}

func (l *Listener) handle(ctx context.Context, topic string, payload []byte) {
	if ctx.Err() != nil {
		return
	}
	upd, err := decodeReading(l.prefix, topic, payload, services.SourceMQTT)
	if err != nil {
		l.log.Warnf("invalid reading: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	bin, err := l.updater.UpdateFillLevel(ctx, upd)
	if err != nil {
		l.log.Errorf("apply reading for %s: %v", upd.BinID, err)
		return
	}
	l.log.Debugf("bin=%s fill=%d priority=%s", bin.BinID, bin.FillLevel, bin.Priority)
}
