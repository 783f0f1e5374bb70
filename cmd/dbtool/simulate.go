package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"
	"waste-route-service/internal/adapters/events"
	"waste-route-service/internal/adapters/sensors"
	"waste-route-service/internal/adapters/telemetry"
	"waste-route-service/internal/domain"
	"waste-route-service/internal/platform/logger"
	"waste-route-service/internal/services"

	"github.com/spf13/cobra"
)

var (
	simCity     string
	simInterval time.Duration
	simCount    int
	simMaxDelta int
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Publish random fill level increases for every bin",
	Long: "Publishes one reading per bin on every tick. Readings go to the MQTT broker when\n" +
		"mqtt.broker is configured and are applied to the stores directly otherwise.",
	RunE: runSimulate,
}

func init() {
	simulateCmd.Flags().StringVar(&simCity, "city", "", "only simulate bins of this city")
	simulateCmd.Flags().DurationVar(&simInterval, "interval", 30*time.Second, "time between ticks")
	simulateCmd.Flags().IntVar(&simCount, "count", 0, "number of ticks, 0 runs until interrupted")
	simulateCmd.Flags().IntVar(&simMaxDelta, "max-delta", 10, "largest fill increase per reading")
	rootCmd.AddCommand(simulateCmd)
}

func runSimulate(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, stores, err := openStores(ctx)
	if err != nil {
		return err
	}
	defer stores.Close()

	sim := &sensors.Simulator{
		Bins:     stores.Bins,
		Prefix:   cfg.MQTT.TopicPrefix,
		QoS:      cfg.MQTT.QoS,
		MaxDelta: simMaxDelta,
		Log:      logger.New("simulator"),
	}
	if simCity != "" {
		city, err := domain.ParseCity(simCity)
		if err != nil {
			return err
		}
		sim.City = &city
	}

	if cfg.MQTT.Broker != "" {
		client, err := sensors.NewMQTTClient(cfg.MQTT, "-simulator")
		if err != nil {
			return err
		}
		defer client.Close()
		sim.Publisher = client
	} else {
		log.Warnf("mqtt.broker not set, applying readings to the stores directly")
		sim.Publisher = sensors.LocalPublisher{
			Prefix: cfg.MQTT.TopicPrefix,
			Updater: &services.FillLevelService{
				Bins:    stores.Bins,
				Events:  events.NewBroker(),
				History: telemetry.NopRecorder{},
				Log:     logger.New("fill_level"),
			},
		}
	}

	return sim.Run(ctx, simInterval, simCount)
}
