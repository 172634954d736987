package server

import (
	"database/sql"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/at-ishikawa/wordsync/internal/dictionary"
	mock_translation "github.com/at-ishikawa/wordsync/internal/mocks/translation"
	"github.com/at-ishikawa/wordsync/internal/translation"
)

func TestTranslationHandler(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	dict := dictionary.New([]dictionary.Entry{{Word: "Serendipity", Translation: "n. 机缘巧合"}})

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		setupMock  func(m *mock_translation.MockRepository)
		wantStatus int
		wantBody   string
	}{
		{
			name:   "upsert",
			method: http.MethodPost,
			path:   "/api/translations",
			body:   `{"word":"cat","translation":"猫"}`,
			setupMock: func(m *mock_translation.MockRepository) {
				m.EXPECT().Upsert(gomock.Any(), "cat", "猫").Return(nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   `{"success":true}`,
		},
		{
			name:       "upsert without word",
			method:     http.MethodPost,
			path:       "/api/translations",
			body:       `{"translation":"猫"}`,
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"word is required"}`,
		},
		{
			name:   "upsert failure",
			method: http.MethodPost,
			path:   "/api/translations",
			body:   `{"word":"cat","translation":"猫"}`,
			setupMock: func(m *mock_translation.MockRepository) {
				m.EXPECT().Upsert(gomock.Any(), "cat", "猫").Return(errors.New("deadlock"))
			},
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":"save failed: deadlock"}`,
		},
		{
			name:   "list",
			method: http.MethodGet,
			path:   "/api/translations",
			setupMock: func(m *mock_translation.MockRepository) {
				m.EXPECT().FindAll(gomock.Any()).Return([]translation.Entry{
					{ID: 2, Word: "cat", Translation: "猫", Count: 2, LastModified: now, CreatedAt: now},
				}, nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   `[{"id":"2","word":"cat","translation":"猫","count":2,"lastModified":"2025-01-01T00:00:00Z"}]`,
		},
		{
			name:   "empty list",
			method: http.MethodGet,
			path:   "/api/translations",
			setupMock: func(m *mock_translation.MockRepository) {
				m.EXPECT().FindAll(gomock.Any()).Return(nil, nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   `[]`,
		},
		{
			name:   "delete",
			method: http.MethodDelete,
			path:   "/api/translations/7",
			setupMock: func(m *mock_translation.MockRepository) {
				m.EXPECT().Delete(gomock.Any(), int64(7)).Return(false, nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   `{"success":true}`,
		},
		{
			name:       "delete with invalid id",
			method:     http.MethodDelete,
			path:       "/api/translations/abc",
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"invalid id"}`,
		},
		{
			name:   "delete a local id by word",
			method: http.MethodDelete,
			path:   "/api/translations/0b6f3c1e-uuid?word=Cat",
			setupMock: func(m *mock_translation.MockRepository) {
				m.EXPECT().DeleteByWord(gomock.Any(), "Cat").Return(true, nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   `{"success":true}`,
		},
		{
			name:   "delete falls back to word when the id matches nothing",
			method: http.MethodDelete,
			path:   "/api/translations/7?word=cat",
			setupMock: func(m *mock_translation.MockRepository) {
				m.EXPECT().Delete(gomock.Any(), int64(7)).Return(false, nil)
				m.EXPECT().DeleteByWord(gomock.Any(), "cat").Return(true, nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   `{"success":true}`,
		},
		{
			name:   "delete by id does not touch the word",
			method: http.MethodDelete,
			path:   "/api/translations/7?word=cat",
			setupMock: func(m *mock_translation.MockRepository) {
				m.EXPECT().Delete(gomock.Any(), int64(7)).Return(true, nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   `{"success":true}`,
		},
		{
			name:   "delete failure",
			method: http.MethodDelete,
			path:   "/api/translations/7",
			setupMock: func(m *mock_translation.MockRepository) {
				m.EXPECT().Delete(gomock.Any(), int64(7)).Return(false, errors.New("lost connection"))
			},
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":"delete failed"}`,
		},
		{
			name:   "batch upsert skips records without a word",
			method: http.MethodPost,
			path:   "/api/translations/batch",
			body:   `{"translations":[{"id":"a","word":"cat","translation":"猫","count":2,"lastModified":"2025-01-01T00:00:00Z"},{"id":"b","word":" "}]}`,
			setupMock: func(m *mock_translation.MockRepository) {
				m.EXPECT().BatchUpsert(gomock.Any(), []translation.Record{
					{ID: "a", Word: "cat", Translation: "猫", Count: 2, LastModified: now},
				}).Return(nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   `{"success":true}`,
		},
		{
			name:       "batch upsert with invalid body",
			method:     http.MethodPost,
			path:       "/api/translations/batch",
			body:       `{"translations":`,
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"invalid request body"}`,
		},
		{
			name:       "lookup from the dictionary",
			method:     http.MethodGet,
			path:       "/api/lookup/SERENDIPITY",
			wantStatus: http.StatusOK,
			wantBody:   `{"source":"local","data":{"word":"serendipity","translation":"n. 机缘巧合","source":"local_dict"}}`,
		},
		{
			name:   "lookup from the database",
			method: http.MethodGet,
			path:   "/api/lookup/cat",
			setupMock: func(m *mock_translation.MockRepository) {
				m.EXPECT().FindByWord(gomock.Any(), "cat").Return(&translation.Entry{
					ID: 1, Word: "cat", Translation: "猫", Count: 1,
					Phonetic:     sql.NullString{String: "kæt", Valid: true},
					LastModified: now,
				}, nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   `{"source":"database","data":{"id":"1","word":"cat","translation":"猫","count":1,"phonetic":"kæt","lastModified":"2025-01-01T00:00:00Z"}}`,
		},
		{
			name:   "lookup miss",
			method: http.MethodGet,
			path:   "/api/lookup/cat",
			setupMock: func(m *mock_translation.MockRepository) {
				m.EXPECT().FindByWord(gomock.Any(), "cat").Return(nil, nil)
			},
			wantStatus: http.StatusNotFound,
			wantBody:   `{"error":"Word not found"}`,
		},
		{
			name:   "lookup failure",
			method: http.MethodGet,
			path:   "/api/lookup/cat",
			setupMock: func(m *mock_translation.MockRepository) {
				m.EXPECT().FindByWord(gomock.Any(), "cat").Return(nil, errors.New("timeout"))
			},
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":"lookup failed"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := mock_translation.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}
			handler := NewTranslationHandler(repo, dict).Routes()

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}

func TestCORSMiddleware(t *testing.T) {
	allowed := []string{"http://localhost:3366", "chrome-extension://*"}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	tests := []struct {
		name       string
		method     string
		origin     string
		wantOrigin string
		wantStatus int
	}{
		{name: "exact origin", method: http.MethodGet, origin: "http://localhost:3366", wantOrigin: "http://localhost:3366", wantStatus: http.StatusTeapot},
		{name: "prefix origin", method: http.MethodGet, origin: "chrome-extension://abc", wantOrigin: "chrome-extension://abc", wantStatus: http.StatusTeapot},
		{name: "unknown origin", method: http.MethodGet, origin: "https://evil.example", wantStatus: http.StatusTeapot},
		{name: "preflight", method: http.MethodOptions, origin: "http://localhost:3366", wantOrigin: "http://localhost:3366", wantStatus: http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(tt.method, "/api/translations", nil)
			req.Header.Set("Origin", tt.origin)

			CORSMiddleware(next, allowed).ServeHTTP(rec, req)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, "GET, POST, DELETE, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
		})
	}
}
