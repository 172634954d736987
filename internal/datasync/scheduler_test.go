package datasync

import (
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/mock/gomock"

	"github.com/at-ishikawa/wordsync/internal/kv"
	"github.com/at-ishikawa/wordsync/internal/localstore"
	mock_datasync "github.com/at-ishikawa/wordsync/internal/mocks/datasync"
	"github.com/at-ishikawa/wordsync/internal/translation"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestScheduler_Tick(t *testing.T) {
	cursor := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	fence := cursor.Add(time.Hour)
	delta := []translation.Record{
		{ID: "1", Word: "cat", Translation: "猫", Count: 1, LastModified: cursor.Add(time.Minute)},
	}

	tests := []struct {
		name       string
		setupMocks func(store *mock_datasync.MockStore, pusher *mock_datasync.MockPusher)
		wantPushed int
		wantErr    bool
	}{
		{
			name: "pushes the delta and advances the cursor to the fence",
			setupMocks: func(store *mock_datasync.MockStore, pusher *mock_datasync.MockPusher) {
				gomock.InOrder(
					store.EXPECT().LastSyncTime().Return(cursor),
					store.EXPECT().ModifiedSince(cursor).Return(delta),
					pusher.EXPECT().BatchUpsert(gomock.Any(), delta).Return(nil),
					store.EXPECT().SetLastSyncTime(gomock.Any(), fence).Return(nil),
				)
			},
			wantPushed: 1,
		},
		{
			name: "empty delta makes no remote call",
			setupMocks: func(store *mock_datasync.MockStore, pusher *mock_datasync.MockPusher) {
				store.EXPECT().LastSyncTime().Return(cursor)
				store.EXPECT().ModifiedSince(cursor).Return(nil)
			},
		},
		{
			name: "failed push keeps the cursor",
			setupMocks: func(store *mock_datasync.MockStore, pusher *mock_datasync.MockPusher) {
				store.EXPECT().LastSyncTime().Return(cursor)
				store.EXPECT().ModifiedSince(cursor).Return(delta)
				pusher.EXPECT().BatchUpsert(gomock.Any(), delta).Return(errors.New("remote down"))
			},
			wantErr: true,
		},
		{
			name: "cursor persistence failure is reported",
			setupMocks: func(store *mock_datasync.MockStore, pusher *mock_datasync.MockPusher) {
				store.EXPECT().LastSyncTime().Return(cursor)
				store.EXPECT().ModifiedSince(cursor).Return(delta)
				pusher.EXPECT().BatchUpsert(gomock.Any(), delta).Return(nil)
				store.EXPECT().SetLastSyncTime(gomock.Any(), fence).Return(errors.New("disk full"))
			},
			wantPushed: 1,
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			store := mock_datasync.NewMockStore(ctrl)
			pusher := mock_datasync.NewMockPusher(ctrl)
			tt.setupMocks(store, pusher)

			scheduler := NewScheduler(store, pusher, time.Second)
			scheduler.now = func() time.Time { return fence }

			pushed, err := scheduler.Tick(context.Background())
			assert.Equal(t, tt.wantPushed, pushed)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestScheduler_Tick_PushIgnoresCancellation(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mock_datasync.NewMockStore(ctrl)
	pusher := mock_datasync.NewMockPusher(ctrl)

	ctx, cancel := context.WithCancel(context.Background())
	delta := []translation.Record{{ID: "1", Word: "cat"}}
	store.EXPECT().LastSyncTime().Return(time.Time{})
	store.EXPECT().ModifiedSince(time.Time{}).Return(delta)
	pusher.EXPECT().BatchUpsert(gomock.Any(), delta).DoAndReturn(func(pushCtx context.Context, _ []translation.Record) error {
		cancel()
		assert.NoError(t, pushCtx.Err())
		return nil
	})
	store.EXPECT().SetLastSyncTime(gomock.Any(), gomock.Any()).DoAndReturn(func(setCtx context.Context, _ time.Time) error {
		return setCtx.Err()
	})

	_, err := NewScheduler(store, pusher, time.Second).Tick(ctx)
	assert.NoError(t, err)
}

// TestScheduler_Tick_RetriesSameDelta runs against a real local store.
func TestScheduler_Tick_RetriesSameDelta(t *testing.T) {
	backend, err := kv.OpenFileStore(filepath.Join(t.TempDir(), "store.yml"))
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()
	store := localstore.New(backend)
	_, err = store.Upsert(ctx, "cat", "猫")
	require.NoError(t, err)
	_, err = store.Upsert(ctx, "dog", "狗")
	require.NoError(t, err)

	ctrl := gomock.NewController(t)
	pusher := mock_datasync.NewMockPusher(ctrl)
	var pushed [][]translation.Record
	record := func(_ context.Context, records []translation.Record) {
		pushed = append(pushed, records)
	}
	gomock.InOrder(
		pusher.EXPECT().BatchUpsert(gomock.Any(), gomock.Any()).Do(record).Return(errors.New("remote down")),
		pusher.EXPECT().BatchUpsert(gomock.Any(), gomock.Any()).Do(record).Return(nil),
	)

	scheduler := NewScheduler(store, pusher, time.Second)

	_, err = scheduler.Tick(ctx)
	require.Error(t, err)
	assert.True(t, store.LastSyncTime().IsZero())

	n, err := scheduler.Tick(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, pushed, 2)
	assert.Equal(t, pushed[0], pushed[1])
	assert.False(t, store.LastSyncTime().IsZero())

	// Nothing changed since the successful push.
	n, err = scheduler.Tick(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestScheduler_Run(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mock_datasync.NewMockStore(ctrl)
	pusher := mock_datasync.NewMockPusher(ctrl)

	var ticks int32
	ticked := make(chan struct{})
	store.EXPECT().LastSyncTime().Return(time.Time{}).AnyTimes()
	store.EXPECT().ModifiedSince(gomock.Any()).DoAndReturn(func(time.Time) []translation.Record {
		if atomic.AddInt32(&ticks, 1) == 2 {
			close(ticked)
		}
		return []translation.Record{{ID: "1", Word: "cat"}}
	}).MinTimes(2)
	pusher.EXPECT().BatchUpsert(gomock.Any(), gomock.Any()).Return(errors.New("remote down")).MinTimes(2)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() {
		done <- NewScheduler(store, pusher, 5*time.Millisecond).Run(ctx)
	}()

	select {
	case <-ticked:
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not tick")
	}
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestNewScheduler_DefaultInterval(t *testing.T) {
	assert.Equal(t, DefaultInterval, NewScheduler(nil, nil, 0).interval)
}
