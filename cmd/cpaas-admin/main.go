package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/adfharrison1/cpaas-admin/pkg/config"
	"github.com/adfharrison1/cpaas-admin/pkg/resource"
	"github.com/adfharrison1/cpaas-admin/pkg/storage"
)

var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "cpaas-admin",
		Short:         "cpaas-admin serves the CPaaS admin API over in-memory mock collections",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file (env vars prefixed "+config.EnvPrefix+" override it)")

	loadConfig := func() (*config.Config, error) {
		return config.Load(configPath)
	}

	rootCmd.AddCommand(serveCmd(loadConfig))
	rootCmd.AddCommand(tokenCmd(loadConfig))
	rootCmd.AddCommand(snapshotCmd(loadConfig))
	return rootCmd
}

// newStore builds a store that stamps every resource's timestamp field on create
func newStore(registry *resource.Registry, logger *zap.Logger, options ...storage.StoreOption) *storage.Store {
	opts := []storage.StoreOption{storage.WithLogger(logger)}
	for _, s := range registry.All() {
		opts = append(opts, storage.WithTimestampField(s.Name, s.TimestampField))
	}
	return storage.NewStore(append(opts, options...)...)
}
