package channel

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPCaller_Call(t *testing.T) {
	tests := []struct {
		name        string
		handle      func(ch *Channel)
		payload     any
		wantSuccess bool
		wantData    string
		wantErr     error
	}{
		{
			name: "success",
			handle: func(ch *Channel) {
				resp, _ := OK(map[string]string{"translation": "猫"})
				_ = ch.Reply(resp)
			},
			payload:     map[string]string{"word": "cat"},
			wantSuccess: true,
			wantData:    `{"translation":"猫"}`,
		},
		{
			name: "failed lookup carries the raw term",
			handle: func(ch *Channel) {
				_ = ch.Reply(Response{Success: false, Error: "word not found", Data: []byte(`{"word":"cat"}`)})
			},
			payload:  map[string]string{"word": "cat"},
			wantData: `{"word":"cat"}`,
		},
		{
			name:    "core never replies",
			handle:  func(ch *Channel) {},
			wantErr: ErrTimeout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hub := NewHub(50 * time.Millisecond)
			ctx, cancel := context.WithCancel(context.Background())
			stopped := serve(ctx, hub, tt.handle)
			server := httptest.NewServer(NewHTTPHandler(hub))
			defer func() {
				server.Close()
				cancel()
				<-stopped
			}()

			caller := NewHTTPCaller(server.URL, time.Second)
			defer caller.Close()

			resp, err := caller.Call(context.Background(), TypeLookupWord, tt.payload)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSuccess, resp.Success)
			assert.JSONEq(t, tt.wantData, string(resp.Data))
		})
	}
}

func TestHTTPCaller_Call_ClientTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer func() {
		close(release)
		server.Close()
	}()

	caller := NewHTTPCaller(server.URL, 20*time.Millisecond)
	defer caller.Close()

	_, err := caller.Call(context.Background(), TypeGetTranslations, nil)
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestNewHTTPHandler(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{name: "malformed body", body: `{`, wantStatus: http.StatusBadRequest},
		{name: "unknown type", body: `{"id":"1","type":"PING"}`, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHTTPHandler(NewHub(time.Second))
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, Path, strings.NewReader(tt.body))

			handler.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), `"success":false`)
		})
	}

	t.Run("closed hub", func(t *testing.T) {
		hub := NewHub(time.Second)
		hub.Close()
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, Path, strings.NewReader(`{"id":"1","type":"GET_TRANSLATIONS"}`))

		NewHTTPHandler(hub).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, "1", rec.Header().Get("X-Request-Id"))
	})
}
