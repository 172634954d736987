package datasync

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// DefaultInterval is the time between two sync ticks.
const DefaultInterval = 20 * time.Second

// Scheduler periodically pushes the records modified since the last successful push.
type Scheduler struct {
	store    Store
	pusher   Pusher
	interval time.Duration
	now      func() time.Time
}

func NewScheduler(store Store, pusher Pusher, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{
		store:    store,
		pusher:   pusher,
		interval: interval,
		now:      time.Now,
	}
}

// Tick pushes the delta set once and returns the number of pushed records.
//
// The cursor moves to the time captured before the delta was read, and only after the push succeeds.
// A record saved while the push is in flight is newer than that time and goes out on the next tick.
// The push itself is not cancelled with ctx, so an in-flight push still moves the cursor on shutdown.
func (s *Scheduler) Tick(ctx context.Context) (int, error) {
	cursor := s.store.LastSyncTime()
	fence := s.now()
	delta := s.store.ModifiedSince(cursor)
	if len(delta) == 0 {
		return 0, nil
	}

	pushCtx := context.WithoutCancel(ctx)
	if err := s.pusher.BatchUpsert(pushCtx, delta); err != nil {
		return 0, fmt.Errorf("push %d translations: %w", len(delta), err)
	}
	if err := s.store.SetLastSyncTime(pushCtx, fence); err != nil {
		return len(delta), fmt.Errorf("advance sync cursor: %w", err)
	}
	return len(delta), nil
}

// Run ticks every interval until ctx is cancelled. Tick failures are logged and retried on the next tick.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	slog.Default().Info("sync scheduler started", "interval", s.interval)
	for {
		select {
		case <-ctx.Done():
			slog.Default().Info("sync scheduler stopped")
			return nil
		case <-ticker.C:
			pushed, err := s.Tick(ctx)
			if err != nil {
				slog.Default().Warn("sync tick failed", "error", err)
				continue
			}
			if pushed > 0 {
				slog.Default().Info("translations synchronized", "count", pushed)
			}
		}
	}
}
