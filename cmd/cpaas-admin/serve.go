package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/adfharrison1/cpaas-admin/pkg/api"
	"github.com/adfharrison1/cpaas-admin/pkg/auth"
	"github.com/adfharrison1/cpaas-admin/pkg/config"
	"github.com/adfharrison1/cpaas-admin/pkg/logging"
	"github.com/adfharrison1/cpaas-admin/pkg/resource"
	"github.com/adfharrison1/cpaas-admin/pkg/seed"
	"github.com/adfharrison1/cpaas-admin/pkg/server"
	"github.com/adfharrison1/cpaas-admin/pkg/storage"
)

func serveCmd(loadConfig func() (*config.Config, error)) *cobra.Command {
	var (
		port         int
		logLevel     string
		snapshotFile string
		saveInterval time.Duration
		noSeed       bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the admin API server",
		Long: `Start the admin API server.

Without a snapshot file all data lives in memory and is regenerated from the
seed on every start. With --snapshot-file the store is restored on start and
written back on shutdown; --save-interval adds periodic saves in between.

Examples:
  cpaas-admin serve
  cpaas-admin serve --port 9090 --log-level debug
  cpaas-admin serve --snapshot-file admin.godb --save-interval 5m`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("port") {
				cfg.Server.Port = port
			}
			if flags.Changed("log-level") {
				cfg.Log.Level = logLevel
			}
			if flags.Changed("snapshot-file") {
				cfg.Storage.SnapshotFile = snapshotFile
			}
			if flags.Changed("save-interval") {
				cfg.Storage.SaveInterval = saveInterval
			}
			if noSeed {
				cfg.Seed.Enabled = false
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 8080, "HTTP port")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	cmd.Flags().StringVar(&snapshotFile, "snapshot-file", "", "snapshot file to restore on start and save on shutdown")
	cmd.Flags().DurationVar(&saveInterval, "save-interval", 0, "background save interval, e.g. 30s or 5m (0 disables)")
	cmd.Flags().BoolVar(&noSeed, "no-seed", false, "start with empty collections")
	return cmd
}

func runServe(parent context.Context, cfg *config.Config) error {
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	registry, err := resource.NewRegistry(resource.Builtins(), cfg.Resources)
	if err != nil {
		return fmt.Errorf("invalid resource configuration: %w", err)
	}

	var storeOptions []storage.StoreOption
	if cfg.Storage.SnapshotFile != "" {
		storeOptions = append(storeOptions, storage.WithSnapshotFile(cfg.Storage.SnapshotFile))
		if cfg.Storage.SaveInterval > 0 {
			storeOptions = append(storeOptions, storage.WithBackgroundSave(cfg.Storage.SaveInterval))
		}
	} else {
		logger.Warn("no snapshot file configured, data will not survive a restart")
	}
	store := newStore(registry, logger, storeOptions...)
	defer store.StopBackgroundWorkers()

	if err := store.Load(); err != nil {
		return fmt.Errorf("failed to load snapshot: %w", err)
	}

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Seed.Enabled {
		if _, err := seed.Populate(ctx, store, registry.All(), cfg.Seed.Value, logger); err != nil {
			return fmt.Errorf("failed to seed data: %w", err)
		}
	}
	store.StartBackgroundWorkers()
	logger.Info("store ready", zap.Any("stats", store.GetMemoryStats()))

	tokens, err := auth.NewTokenService(cfg.Auth)
	if err != nil {
		return err
	}

	srv := server.NewServer(cfg.Server, api.NewHandler(store, registry, tokens, logger), logger)
	serveErr := srv.Start(ctx)

	store.StopBackgroundWorkers()
	if err := store.Save(); err != nil {
		logger.Error("failed to save snapshot on shutdown", zap.Error(err))
		if serveErr == nil {
			serveErr = err
		}
	}
	return serveErr
}
