package datasync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	mock_datasync "github.com/at-ishikawa/wordsync/internal/mocks/datasync"
	"github.com/at-ishikawa/wordsync/internal/translation"
)

func TestPull(t *testing.T) {
	remote := []translation.Record{
		{ID: "1", Word: "cat", Translation: "猫", Count: 1, LastModified: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
	}

	tests := []struct {
		name       string
		setupMocks func(lister *mock_datasync.MockLister, store *mock_datasync.MockStore)
		want       int
		wantErr    string
	}{
		{
			name: "merges the remote snapshot",
			setupMocks: func(lister *mock_datasync.MockLister, store *mock_datasync.MockStore) {
				lister.EXPECT().List(gomock.Any()).Return(remote, nil)
				store.EXPECT().Merge(gomock.Any(), remote).Return(nil)
			},
			want: 1,
		},
		{
			name: "list error",
			setupMocks: func(lister *mock_datasync.MockLister, store *mock_datasync.MockStore) {
				lister.EXPECT().List(gomock.Any()).Return(nil, errors.New("remote down"))
			},
			wantErr: "list remote translations",
		},
		{
			name: "merge error",
			setupMocks: func(lister *mock_datasync.MockLister, store *mock_datasync.MockStore) {
				lister.EXPECT().List(gomock.Any()).Return(remote, nil)
				store.EXPECT().Merge(gomock.Any(), remote).Return(errors.New("disk full"))
			},
			want:    1,
			wantErr: "merge remote translations",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			lister := mock_datasync.NewMockLister(ctrl)
			store := mock_datasync.NewMockStore(ctrl)
			tt.setupMocks(lister, store)

			got, err := Pull(context.Background(), lister, store)
			assert.Equal(t, tt.want, got)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}
