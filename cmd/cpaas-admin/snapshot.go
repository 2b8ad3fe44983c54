package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/adfharrison1/cpaas-admin/pkg/config"
	"github.com/adfharrison1/cpaas-admin/pkg/logging"
	"github.com/adfharrison1/cpaas-admin/pkg/resource"
	"github.com/adfharrison1/cpaas-admin/pkg/seed"
)

func snapshotCmd(loadConfig func() (*config.Config, error)) *cobra.Command {
	var seedValue int64

	cmd := &cobra.Command{
		Use:   "snapshot [file]",
		Short: "Generate the seeded mock data and write it to a snapshot file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("seed") {
				cfg.Seed.Value = seedValue
			}
			logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			registry, err := resource.NewRegistry(resource.Builtins(), cfg.Resources)
			if err != nil {
				return fmt.Errorf("invalid resource configuration: %w", err)
			}
			store := newStore(registry, logger)
			created, err := seed.Populate(cmd.Context(), store, registry.All(), cfg.Seed.Value, logger)
			if err != nil {
				return err
			}
			if err := store.SaveToFile(args[0]); err != nil {
				return err
			}

			total := 0
			for _, n := range created {
				total += n
			}
			logger.Info("snapshot written", zap.String("file", args[0]), zap.Int("records", total))
			return nil
		},
	}

	cmd.Flags().Int64Var(&seedValue, "seed", 42, "random seed for the generated data")
	return cmd
}
