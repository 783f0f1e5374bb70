package main

import (
	"fmt"
	"waste-route-service/internal/adapters/repositories"

	"github.com/spf13/cobra"
)

var seedPath string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load bins and trucks from a YAML seed file",
	RunE:  runSeed,
}

func init() {
	seedCmd.Flags().StringVar(&seedPath, "file", "", "seed file (defaults to seed.path from config)")
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, stores, err := openStores(cmd.Context())
	if err != nil {
		return err
	}
	defer stores.Close()

	path := seedPath
	if path == "" {
		path = cfg.Seed.Path
	}
	if err := repositories.SeedFromFile(cmd.Context(), path, stores.Bins, stores.Trucks); err != nil {
		return err
	}

	bins, err := stores.Bins.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("count bins: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "seeded %s: %d bins stored\n", path, len(bins))
	return nil
}
