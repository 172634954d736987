// Package kv provides the durable key-value facility backing the local store.
package kv

import (
	"context"
	"errors"
	"fmt"

	"github.com/at-ishikawa/wordsync/internal/config"
)

//go:generate mockgen -source=kv.go -destination=../mocks/kv/mock_kv.go -package=mock_kv

// Fixed keys of the persisted local state.
const (
	KeyTranslations = "translations"
	KeyLastSyncTime = "lastSyncTime"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("kv store closed")

// Store is a durable key-value store.
type Store interface {
	// Get returns the value of key and whether it exists.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

// Open opens the store selected by cfg.Driver.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "file":
		return OpenFileStore(cfg.Path)
	case "sqlite":
		return OpenSQLiteStore(ctx, cfg.Path)
	default:
		return nil, fmt.Errorf("unsupported store driver: %s", cfg.Driver)
	}
}
