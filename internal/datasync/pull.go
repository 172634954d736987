package datasync

import (
	"context"
	"fmt"
)

// Pull merges the remote snapshot into the local store and returns the number of remote records.
func Pull(ctx context.Context, lister Lister, store Store) (int, error) {
	records, err := lister.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list remote translations: %w", err)
	}
	if err := store.Merge(ctx, records); err != nil {
		return len(records), fmt.Errorf("merge remote translations: %w", err)
	}
	return len(records), nil
}
