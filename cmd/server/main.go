package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	"waste-route-service/internal/adapters/completion"
	"waste-route-service/internal/adapters/events"
	"waste-route-service/internal/adapters/repositories"
	"waste-route-service/internal/adapters/sensors"
	"waste-route-service/internal/adapters/telemetry"
	"waste-route-service/internal/api"
	"waste-route-service/internal/config"
	"waste-route-service/internal/platform/logger"
	"waste-route-service/internal/platform/metrics"
	"waste-route-service/internal/ports"
	"waste-route-service/internal/services"
)

var log = logger.New("main")

// main is the application composition root.
// It wires concrete adapters behind ports and starts the HTTP server.
func main() {
	if err := run(); err != nil {
		log.Errorf("server stopped: %v", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(config.Get("CONFIG_PATH", ""))
	if err != nil {
		return err
	}
	logger.SetLevel(cfg.Logging.Level)
	metrics.RegisterDefault()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stores, err := repositories.Open(ctx, cfg.Database, cfg.Mongo)
	if err != nil {
		return err
	}
	defer func() {
		if err := stores.Close(); err != nil {
			log.Warnf("close stores: %v", err)
		}
	}()

	// Initialize schema and optionally seed demo data on startup for local runs.
	if stores.InitSchema != nil {
		if err := stores.InitSchema(ctx); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	if cfg.Seed.OnStart {
		if err := repositories.SeedFromFile(ctx, cfg.Seed.Path, stores.Bins, stores.Trucks); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		log.Infof("seeded stores from %s", cfg.Seed.Path)
	}

	broker, closeBroker, err := openBroker(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer closeBroker()

	recorder, closeRecorder := openRecorder(ctx, cfg.Influx)
	defer closeRecorder()

	fillLevels := &services.FillLevelService{
		Bins:    stores.Bins,
		Events:  broker,
		History: recorder,
		Log:     logger.New("fill_level"),
	}

	assistant, err := newAssistant(cfg.Assistant, stores)
	if err != nil {
		return err
	}

	if cfg.MQTT.Broker != "" {
		client, err := sensors.NewMQTTClient(cfg.MQTT, "-server")
		if err != nil {
			return err
		}
		defer client.Close()

		listener := sensors.NewListener(cfg.MQTT.TopicPrefix, cfg.MQTT.QoS, fillLevels)
		if err := listener.Start(ctx, client); err != nil {
			return err
		}
	}

	router := api.NewRouter(api.Deps{
		Bins:       stores.Bins,
		Fleet:      services.NewFleet(stores.Trucks, logger.New("fleet")),
		FillLevels: fillLevels,
		Events:     broker,
		Assistant:  assistant,
	})

	// WriteTimeout must outlast a streamed assistant answer. WebSocket
	// connections are hijacked and manage their own deadlines.
	srv := &http.Server{
		Addr:              ":" + cfg.HTTP.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("server listening addr=:%s driver=%s", cfg.HTTP.Port, cfg.Database.Driver)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Infof("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func openBroker(ctx context.Context, cfg config.RedisConfig) (ports.BinEventBroker, func(), error) {
	if cfg.URL == "" {
		return events.NewBroker(), func() {}, nil
	}
	b, err := events.NewRedisBroker(ctx, cfg.URL)
	if err != nil {
		return nil, nil, err
	}
	log.Infof("bin events via redis")
	return b, func() { _ = b.Close() }, nil
}

// openRecorder falls back to discarding history when InfluxDB is not
// configured or not healthy.
func openRecorder(ctx context.Context, cfg config.InfluxConfig) (ports.FillLevelRecorder, func()) {
	if cfg.URL == "" {
		return telemetry.NopRecorder{}, func() {}
	}
	rec := telemetry.NewInfluxRecorder(cfg.URL, cfg.Token, cfg.Org, cfg.Bucket)

	healthCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if !rec.Healthy(healthCtx) {
		rec.Close()
		log.Warnf("influx unavailable, fill level history disabled")
		return telemetry.NopRecorder{}, func() {}
	}
	return rec, rec.Close
}

func newAssistant(cfg config.AssistantConfig, stores *repositories.Stores) (*services.Assistant, error) {
	if cfg.APIKey == "" {
		log.Warnf("GEMINI_API_KEY not set, assistant endpoints disabled")
		return nil, nil
	}
	provider, err := completion.NewGeminiProvider(cfg.APIKey, completion.GeminiOptions{
		BaseURL:        cfg.BaseURL,
		Model:          cfg.Model,
		RequestsPerSec: cfg.RequestsPerSec,
		Burst:          cfg.Burst,
		Timeout:        cfg.Timeout,
	})
	if err != nil {
		return nil, err
	}
	return &services.Assistant{
		Bins:     stores.Bins,
		Trucks:   stores.Trucks,
		Provider: provider,
		Log:      logger.New("assistant"),
	}, nil
}
