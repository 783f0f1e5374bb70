package main

import (
	"context"
	"fmt"
	"waste-route-service/internal/adapters/repositories"
	"waste-route-service/internal/config"
	"waste-route-service/internal/platform/logger"

	"github.com/spf13/cobra"
)

var cfgPath string

var log = logger.New("dbtool")

var rootCmd = &cobra.Command{
	Use:          "dbtool",
	Short:        "Maintenance commands for the waste route service stores",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", config.Get("CONFIG_PATH", ""), "configuration file")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

// openStores loads configuration and opens the configured stores with the
// schema in place.
func openStores(ctx context.Context) (*config.Config, *repositories.Stores, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	logger.SetLevel(cfg.Logging.Level)

	stores, err := repositories.Open(ctx, cfg.Database, cfg.Mongo)
	if err != nil {
		return nil, nil, err
	}
	if stores.InitSchema != nil {
		if err := stores.InitSchema(ctx); err != nil {
			_ = stores.Close()
			return nil, nil, fmt.Errorf("init schema: %w", err)
		}
	}
	return cfg, stores, nil
}
