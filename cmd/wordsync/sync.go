package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/wordsync/internal/datasync"
)

var errRemoteDisabled = errors.New("the remote store is disabled, set remote.enabled in the config file")

func newSyncCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Push the translations modified since the last sync to the remote store",
		Long:  "Push the translations modified since the last sync to the remote store. It opens the local store directly, so stop the daemon when the file store is used.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			remoteClient := newRemoteClient(cfg.Remote)
			if remoteClient == nil {
				return errRemoteDisabled
			}
			defer func() { _ = remoteClient.Close() }()

			store, backend, err := openLocalStore(ctx, cfg.Store)
			if err != nil {
				return err
			}
			defer func() { _ = backend.Close() }()

			pushed, err := datasync.NewScheduler(store, remoteClient, cfg.Sync.Interval()).Tick(ctx)
			if err != nil {
				return fmt.Errorf("scheduler.Tick() > %w", err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d translations pushed\n", pushed)
			return nil
		},
	}
}

func newPullCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "pull",
		Short: "Merge the translations of the remote store into the local store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			remoteClient := newRemoteClient(cfg.Remote)
			if remoteClient == nil {
				return errRemoteDisabled
			}
			defer func() { _ = remoteClient.Close() }()

			store, backend, err := openLocalStore(ctx, cfg.Store)
			if err != nil {
				return err
			}
			defer func() { _ = backend.Close() }()

			pulled, err := datasync.Pull(ctx, remoteClient, store)
			if err != nil {
				return fmt.Errorf("datasync.Pull() > %w", err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d remote translations merged, %d translations stored\n", pulled, len(store.List()))
			return nil
		},
	}
}
