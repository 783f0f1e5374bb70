package main

import (
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create tables and indexes",
	RunE:  runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	cfg, stores, err := openStores(cmd.Context())
	if err != nil {
		return err
	}
	defer stores.Close()

	log.Infof("schema ready driver=%s", cfg.Database.Driver)
	return nil
}
