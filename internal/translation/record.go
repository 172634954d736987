// Package translation provides the translation record model, its merge rules and database storage.
package translation

import (
	"strings"
	"time"
	"unicode/utf8"
)

// MaxTextLength is the maximum number of characters kept for a word or a translation.
const MaxTextLength = 255

// Record is a translation entry kept in the local store and mirrored on the remote store.
type Record struct {
	ID           string    `json:"id" yaml:"id"`
	Word         string    `json:"word" yaml:"word"`
	Translation  string    `json:"translation" yaml:"translation"`
	Count        int       `json:"count" yaml:"count"`
	LastModified time.Time `json:"lastModified" yaml:"last_modified"`
}

// Key returns the case-insensitive dedup key of the record.
func (r Record) Key() string {
	return Key(r.Word)
}

// Key normalizes a word into its dedup key.
func Key(word string) string {
	return strings.ToLower(word)
}

// Truncate cuts s down to MaxTextLength characters.
func Truncate(s string) string {
	if utf8.RuneCountInString(s) <= MaxTextLength {
		return s
	}
	runes := []rune(s)
	return string(runes[:MaxTextLength])
}
