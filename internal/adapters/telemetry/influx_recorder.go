package telemetry

import (
	"context"
	"net/http"
	"strings"
	"time"
	"waste-route-service/internal/domain"
	"waste-route-service/internal/platform/logger"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

const measurementFillLevel = "bin_fill_level"

// InfluxRecorder keeps a time series of fill level readings.
type InfluxRecorder struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

func NewInfluxRecorder(url, token, org, bucket string) *InfluxRecorder {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxRecorder{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx_recorder"),
	}
}

// Record writes one point per event.
func (r *InfluxRecorder) Record(ctx context.Context, evt domain.BinEvent) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return r.writeAPI.WritePoint(ctx, fillLevelPoint(evt))
}

func fillLevelPoint(evt domain.BinEvent) *write.Point {
	return write.NewPointWithMeasurement(measurementFillLevel).
		AddTag("bin_id", evt.BinID).
		AddTag("city", string(evt.City)).
		AddTag("zone", evt.Zone).
		AddTag("priority", string(evt.Priority)).
		AddTag("source", evt.Source).
		AddField("fill_level", evt.FillLevel).
		AddField("previous_fill_level", evt.PreviousFillLevel).
		SetTime(evt.OccurredAt)
}

// Healthy pings the server's health endpoint.
func (r *InfluxRecorder) Healthy(ctx context.Context) bool {
	health, err := r.client.Health(ctx)
	if err != nil {
		r.log.Warnf("influx health check error: %v", err)
		return false
	}
	if health.Status != "pass" {
		r.log.Warnf("influx health status: %s", health.Status)
		return false
	}
	return true
}

func (r *InfluxRecorder) Close() {
	r.client.Close()
}

// NopRecorder discards every event.
type NopRecorder struct{}

func (NopRecorder) Record(context.Context, domain.BinEvent) error { return nil }
