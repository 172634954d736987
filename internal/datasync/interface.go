// Package datasync moves translation records between the local store, the remote store and export files.
package datasync

import (
	"context"
	"time"

	"github.com/at-ishikawa/wordsync/internal/translation"
)

//go:generate mockgen -source=interface.go -destination=../mocks/datasync/mock_interface.go -package=mock_datasync

// Store is the local side of a synchronization.
type Store interface {
	LastSyncTime() time.Time
	SetLastSyncTime(ctx context.Context, t time.Time) error
	ModifiedSince(t time.Time) []translation.Record
	Merge(ctx context.Context, remote []translation.Record) error
}

// Pusher uploads records to the remote store. It must be idempotent for repeated records.
type Pusher interface {
	BatchUpsert(ctx context.Context, records []translation.Record) error
}

// Lister downloads every record of the remote store.
type Lister interface {
	List(ctx context.Context) ([]translation.Record, error)
}
