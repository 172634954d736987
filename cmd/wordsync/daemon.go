package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/wordsync/internal/bootstrap"
	"github.com/at-ishikawa/wordsync/internal/channel"
	"github.com/at-ishikawa/wordsync/internal/core"
	"github.com/at-ishikawa/wordsync/internal/kv"
	"github.com/at-ishikawa/wordsync/internal/localstore"
)

func newDaemonCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Run the translation cache and answer the lookup, save, list and delete commands",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemon(cmd.Context())
		},
	}
}

func runDaemon(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	backend, err := kv.Open(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("kv.Open() > %w", err)
	}
	defer closeWithLog("local store", backend.Close)

	remoteClient := newRemoteClient(cfg.Remote)
	var remoteStore core.RemoteStore
	if remoteClient != nil {
		remoteStore = remoteClient
		defer closeWithLog("remote client", remoteClient.Close)
	}

	cascade, closeCache, err := newCascade(ctx, cfg, remoteClient)
	if err != nil {
		return err
	}
	defer closeWithLog("fallback cache", closeCache)

	hub := channel.NewHub(cfg.Channel.Timeout())
	service := core.New(localstore.New(backend), cascade, hub, core.Options{
		Remote:        remoteStore,
		Sync:          cfg.Sync,
		ListenAddress: cfg.Channel.ListenAddress,
	})
	if err := service.Start(ctx); err != nil {
		return fmt.Errorf("service.Start() > %w", err)
	}

	app := bootstrap.New()
	app.AddShutdownHook("core service", func(ctx context.Context) error {
		return service.Close()
	})
	slog.Default().Info("daemon started",
		"remote", remoteClient != nil,
		"scheduler", remoteClient != nil && cfg.Sync.SchedulerEnabled(),
		"address", cfg.Channel.ListenAddress,
	)
	return app.Run(ctx, service.Run)
}

func closeWithLog(name string, closeFn func() error) {
	if err := closeFn(); err != nil {
		slog.Default().Warn("failed to close", "resource", name, "error", err)
	}
}
