// Package localstore holds the client side list of translation records.
//
// The list is the source of truth for the interactive path. It is kept in memory,
// most recently modified first, and written through to a kv.Store after every mutation.
package localstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/at-ishikawa/wordsync/internal/kv"
	"github.com/at-ishikawa/wordsync/internal/translation"
)

// MaxRecords is the number of records kept. Older records are evicted first.
const MaxRecords = 1000

// Store is the local translation store.
//
// Mutations are serialized by a single mutex. Two concurrent upserts of the same word
// are applied in lock acquisition order, so the last one decides translation and count.
type Store struct {
	kv    kv.Store
	now   func() time.Time
	newID func() string

	mu           sync.Mutex
	records      []translation.Record
	lastSyncTime time.Time
}

func New(store kv.Store) *Store {
	return &Store{
		kv:    store,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Load replaces the in-memory state with the persisted one.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var records []translation.Record
	data, ok, err := s.kv.Get(ctx, kv.KeyTranslations)
	if err != nil {
		return fmt.Errorf("load translations: %w", err)
	}
	if ok && len(data) > 0 {
		if err := json.Unmarshal(data, &records); err != nil {
			return fmt.Errorf("decode translations: %w", err)
		}
	}

	var lastSyncTime time.Time
	data, ok, err = s.kv.Get(ctx, kv.KeyLastSyncTime)
	if err != nil {
		return fmt.Errorf("load last sync time: %w", err)
	}
	if ok && len(data) > 0 {
		if lastSyncTime, err = time.Parse(time.RFC3339Nano, string(data)); err != nil {
			return fmt.Errorf("decode last sync time: %w", err)
		}
	}

	translation.SortByLastModified(records)
	s.records = capRecords(records)
	s.lastSyncTime = lastSyncTime
	return nil
}

// Upsert saves the translation of word.
//
// An existing record with the same case-insensitive word keeps its id and casing,
// gets the new translation and has its count incremented. Otherwise a new record is created.
// The returned error only reports a persistence failure; the in-memory state is always updated.
func (s *Store) Upsert(ctx context.Context, word, text string) (translation.Record, error) {
	word = translation.Truncate(word)
	text = translation.Truncate(text)

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	key := translation.Key(word)

	var record translation.Record
	found := false
	for i := range s.records {
		if s.records[i].Key() != key {
			continue
		}
		s.records[i].Translation = text
		s.records[i].Count++
		if now.After(s.records[i].LastModified) {
			s.records[i].LastModified = now
		}
		record = s.records[i]
		found = true
		break
	}
	if !found {
		record = translation.Record{
			ID:           s.newID(),
			Word:         word,
			Translation:  text,
			Count:        1,
			LastModified: now,
		}
		s.records = append([]translation.Record{record}, s.records...)
	}

	translation.SortByLastModified(s.records)
	s.records = capRecords(s.records)

	return record, s.persistRecordsLocked(ctx)
}

// Delete removes the record with id and returns it. ok reports whether it existed.
func (s *Store) Delete(ctx context.Context, id string) (deleted translation.Record, ok bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.records {
		if s.records[i].ID != id {
			continue
		}
		deleted = s.records[i]
		s.records = append(s.records[:i], s.records[i+1:]...)
		return deleted, true, s.persistRecordsLocked(ctx)
	}
	return translation.Record{}, false, nil
}

// List returns a copy of all records, most recently modified first.
func (s *Store) List() []translation.Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := make([]translation.Record, len(s.records))
	copy(records, s.records)
	return records
}

// Find returns the record of word, compared case-insensitively.
func (s *Store) Find(word string) (translation.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := translation.Key(word)
	for _, r := range s.records {
		if r.Key() == key {
			return r, true
		}
	}
	return translation.Record{}, false
}

// ModifiedSince returns the records modified strictly after t.
func (s *Store) ModifiedSince(t time.Time) []translation.Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	var delta []translation.Record
	for _, r := range s.records {
		if r.LastModified.After(t) {
			delta = append(delta, r)
		}
	}
	return delta
}

func (s *Store) LastSyncTime() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSyncTime
}

// SetLastSyncTime moves the sync cursor to t and persists it.
func (s *Store) SetLastSyncTime(ctx context.Context, t time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastSyncTime = t
	if err := s.kv.Set(ctx, kv.KeyLastSyncTime, []byte(t.UTC().Format(time.RFC3339Nano))); err != nil {
		return fmt.Errorf("persist last sync time: %w", err)
	}
	return nil
}

// Merge reconciles the local records with a remote snapshot using last-write-wins.
func (s *Store) Merge(ctx context.Context, remote []translation.Record) error {
	incoming := make([]translation.Record, 0, len(remote))
	for _, r := range remote {
		if r.Word == "" {
			continue
		}
		r.Word = translation.Truncate(r.Word)
		r.Translation = translation.Truncate(r.Translation)
		if r.Count < 1 {
			r.Count = 1
		}
		incoming = append(incoming, r)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = capRecords(translation.Merge(s.records, incoming))
	return s.persistRecordsLocked(ctx)
}

func (s *Store) persistRecordsLocked(ctx context.Context) error {
	data, err := json.Marshal(s.records)
	if err != nil {
		return fmt.Errorf("encode translations: %w", err)
	}
	if err := s.kv.Set(ctx, kv.KeyTranslations, data); err != nil {
		return fmt.Errorf("persist translations: %w", err)
	}
	return nil
}

// capRecords drops the tail of records sorted most recent first.
func capRecords(records []translation.Record) []translation.Record {
	if len(records) <= MaxRecords {
		return records
	}
	return records[:MaxRecords]
}
