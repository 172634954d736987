// Package dictionary provides the read-only in-memory dictionary used as the first lookup tier.
package dictionary

import (
	"strings"
)

// Source is the source reported by every dictionary entry.
const Source = "local_dict"

// Entry is a canonical translation of a word.
type Entry struct {
	Word        string `json:"word"`
	Translation string `json:"translation"`
	Source      string `json:"source"`
}

// Dictionary maps lowercased words to their entries. It is never mutated after construction.
type Dictionary struct {
	entries map[string]Entry
}

// New builds a dictionary from entries. Later entries replace earlier ones with the same word.
func New(entries []Entry) *Dictionary {
	d := &Dictionary{entries: make(map[string]Entry, len(entries))}
	for _, e := range entries {
		word := strings.ToLower(strings.TrimSpace(e.Word))
		translation := strings.TrimSpace(e.Translation)
		if word == "" || translation == "" {
			continue
		}
		d.entries[word] = Entry{Word: word, Translation: translation, Source: Source}
	}
	return d
}

// Get returns the entry of term, compared case-insensitively.
func (d *Dictionary) Get(term string) (Entry, bool) {
	if d == nil {
		return Entry{}, false
	}
	e, ok := d.entries[strings.ToLower(strings.TrimSpace(term))]
	return e, ok
}

func (d *Dictionary) Len() int {
	if d == nil {
		return 0
	}
	return len(d.entries)
}
