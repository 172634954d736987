package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/at-ishikawa/wordsync/internal/cache"
	"github.com/at-ishikawa/wordsync/internal/config"
	"github.com/at-ishikawa/wordsync/internal/dictionary"
	"github.com/at-ishikawa/wordsync/internal/fallback"
	"github.com/at-ishikawa/wordsync/internal/kv"
	"github.com/at-ishikawa/wordsync/internal/localstore"
	"github.com/at-ishikawa/wordsync/internal/lookup"
	"github.com/at-ishikawa/wordsync/internal/remote"
)

func loadConfig() (*config.Config, error) {
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to create config loader: %w", err)
	}
	return loader.Load()
}

// openLocalStore opens and loads the local store. The returned kv.Store must be closed by the caller.
func openLocalStore(ctx context.Context, cfg config.StoreConfig) (*localstore.Store, kv.Store, error) {
	backend, err := kv.Open(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("kv.Open() > %w", err)
	}
	store := localstore.New(backend)
	if err := store.Load(ctx); err != nil {
		_ = backend.Close()
		return nil, nil, fmt.Errorf("store.Load() > %w", err)
	}
	return store, backend, nil
}

// newRemoteClient returns nil when the remote store is disabled.
func newRemoteClient(cfg config.RemoteConfig) *remote.Client {
	if !cfg.Enabled {
		return nil
	}
	return remote.NewClient(cfg.BaseURL, cfg.Timeout(), cfg.RetryAttempts)
}

// newCascade wires the three lookup tiers. The returned function releases the fallback cache.
func newCascade(ctx context.Context, cfg *config.Config, remoteClient *remote.Client) (*lookup.Cascade, func() error, error) {
	dict, err := dictionary.LoadFile(cfg.Dictionary.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("dictionary.LoadFile() > %w", err)
	}

	translationCache, err := cache.New(ctx, cfg.Fallback.Cache)
	if err != nil {
		slog.Default().Warn("fallback cache unavailable, using memory", "error", err)
		translationCache = cache.NewInMemoryCache(cfg.Fallback.Cache.TTLSeconds)
	}
	translator := fallback.NewCachedTranslator(
		fallback.NewClient(cfg.Fallback.BaseURL, cfg.Fallback.LangPair, cfg.Fallback.Timeout(), cfg.Fallback.RetryAttempts),
		translationCache,
		cfg.Fallback.LangPair,
	)

	var remoteQuerier lookup.RemoteQuerier
	if remoteClient != nil {
		remoteQuerier = remoteClient
	}

	closeCache := func() error { return nil }
	if c, ok := translationCache.(io.Closer); ok {
		closeCache = c.Close
	}
	return lookup.NewCascade(dict, remoteQuerier, translator), closeCache, nil
}
