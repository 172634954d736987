// Package server serves the HTTP API of the remote translation store.
package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/at-ishikawa/wordsync/internal/dictionary"
	"github.com/at-ishikawa/wordsync/internal/translation"
)

// APIPrefix is the path prefix of every endpoint.
const APIPrefix = "/api"

type upsertRequest struct {
	Word        string `json:"word"`
	Translation string `json:"translation"`
}

type batchRequest struct {
	Translations []translation.Record `json:"translations"`
}

type successResponse struct {
	Success bool `json:"success"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type lookupResponse struct {
	Source string `json:"source"`
	Data   any    `json:"data"`
}

// entryResponse is a stored translation as returned by the lookup endpoint.
type entryResponse struct {
	ID                 string    `json:"id"`
	Word               string    `json:"word"`
	Translation        string    `json:"translation"`
	Count              int       `json:"count"`
	Phonetic           string    `json:"phonetic,omitempty"`
	Example            string    `json:"example,omitempty"`
	ExampleTranslation string    `json:"exampleTranslation,omitempty"`
	LastModified       time.Time `json:"lastModified"`
}

// TranslationHandler implements the translation endpoints over a Repository.
type TranslationHandler struct {
	repo       translation.Repository
	dictionary *dictionary.Dictionary
}

// NewTranslationHandler creates a TranslationHandler. dict may be nil.
func NewTranslationHandler(repo translation.Repository, dict *dictionary.Dictionary) *TranslationHandler {
	return &TranslationHandler{
		repo:       repo,
		dictionary: dict,
	}
}

// Routes registers the endpoints under APIPrefix.
func (h *TranslationHandler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST "+APIPrefix+"/translations", h.Upsert)
	mux.HandleFunc("GET "+APIPrefix+"/translations", h.List)
	mux.HandleFunc("DELETE "+APIPrefix+"/translations/{id}", h.Delete)
	mux.HandleFunc("POST "+APIPrefix+"/translations/batch", h.BatchUpsert)
	mux.HandleFunc("GET "+APIPrefix+"/lookup/{word}", h.Lookup)
	return mux
}

func (h *TranslationHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	var req upsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Word) == "" {
		writeError(w, http.StatusBadRequest, "word is required")
		return
	}

	if err := h.repo.Upsert(r.Context(), req.Word, req.Translation); err != nil {
		slog.Default().Error("failed to upsert translation", "word", req.Word, "error", err)
		writeError(w, http.StatusInternalServerError, "save failed: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

func (h *TranslationHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.repo.FindAll(r.Context())
	if err != nil {
		slog.Default().Error("failed to list translations", "error", err)
		writeError(w, http.StatusInternalServerError, "list failed")
		return
	}

	records := make([]translation.Record, 0, len(entries))
	for _, e := range entries {
		records = append(records, e.Record())
	}
	writeJSON(w, http.StatusOK, records)
}

// Delete removes a translation by its numeric id. The word query parameter is used when the id is not a
// server id or matches nothing, so a client can delete records it created under its own ids.
func (h *TranslationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	word := strings.TrimSpace(r.URL.Query().Get("word"))
	id, parseErr := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if parseErr != nil && word == "" {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := h.delete(r, id, parseErr == nil, word); err != nil {
		slog.Default().Error("failed to delete translation", "id", r.PathValue("id"), "word", word, "error", err)
		writeError(w, http.StatusInternalServerError, "delete failed")
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

func (h *TranslationHandler) delete(r *http.Request, id int64, hasID bool, word string) error {
	if hasID {
		deleted, err := h.repo.Delete(r.Context(), id)
		if err != nil || deleted || word == "" {
			return err
		}
	}
	_, err := h.repo.DeleteByWord(r.Context(), word)
	return err
}

func (h *TranslationHandler) BatchUpsert(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	records := make([]translation.Record, 0, len(req.Translations))
	for _, rec := range req.Translations {
		if strings.TrimSpace(rec.Word) == "" {
			continue
		}
		records = append(records, rec)
	}

	if err := h.repo.BatchUpsert(r.Context(), records); err != nil {
		slog.Default().Error("failed to batch upsert translations", "count", len(records), "error", err)
		writeError(w, http.StatusInternalServerError, "batch save failed")
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

// Lookup answers from the dictionary first, then from the stored translations.
func (h *TranslationHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	word := strings.ToLower(strings.TrimSpace(r.PathValue("word")))
	if word == "" {
		writeError(w, http.StatusBadRequest, "word is required")
		return
	}

	if entry, ok := h.dictionary.Get(word); ok {
		writeJSON(w, http.StatusOK, lookupResponse{Source: "local", Data: entry})
		return
	}

	entry, err := h.repo.FindByWord(r.Context(), word)
	if err != nil {
		slog.Default().Error("failed to look up translation", "word", word, "error", err)
		writeError(w, http.StatusInternalServerError, "lookup failed")
		return
	}
	if entry == nil {
		writeError(w, http.StatusNotFound, "Word not found")
		return
	}
	writeJSON(w, http.StatusOK, lookupResponse{Source: "database", Data: newEntryResponse(*entry)})
}

func newEntryResponse(e translation.Entry) entryResponse {
	record := e.Record()
	return entryResponse{
		ID:                 record.ID,
		Word:               record.Word,
		Translation:        record.Translation,
		Count:              record.Count,
		Phonetic:           e.Phonetic.String,
		Example:            e.Example.String,
		ExampleTranslation: e.ExampleTranslation.String,
		LastModified:       record.LastModified,
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Default().Warn("failed to write response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
