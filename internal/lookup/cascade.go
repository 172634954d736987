// Package lookup resolves a term through the dictionary, the remote store and the fallback translator.
package lookup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/at-ishikawa/wordsync/internal/dictionary"
	"github.com/at-ishikawa/wordsync/internal/remote"
)

//go:generate mockgen -source=cascade.go -destination=../mocks/lookup/mock_cascade.go -package=mock_lookup

var (
	// ErrNotFound means no tier knows the term.
	ErrNotFound = errors.New("term not found")
	// ErrLookupFailed means the last tier could not be reached.
	ErrLookupFailed = errors.New("lookup failed")
)

type Dictionary interface {
	Get(term string) (dictionary.Entry, bool)
}

// RemoteQuerier returns nil without an error when the remote store does not know the word.
type RemoteQuerier interface {
	Lookup(ctx context.Context, word string) (*remote.LookupResult, error)
}

type Translator interface {
	Translate(ctx context.Context, text string) (string, error)
}

// Cascade tries the dictionary, then the remote store, then the fallback translator.
type Cascade struct {
	dictionary Dictionary
	remote     RemoteQuerier
	translator Translator
}

// NewCascade creates a Cascade. A nil remote skips the remote store tier.
func NewCascade(d Dictionary, r RemoteQuerier, t Translator) *Cascade {
	return &Cascade{
		dictionary: d,
		remote:     r,
		translator: t,
	}
}

// Normalize returns the form of term every tier is queried with.
func Normalize(term string) string {
	return strings.ToLower(strings.TrimSpace(term))
}

func (c *Cascade) Resolve(ctx context.Context, term string) (Result, error) {
	word := Normalize(term)
	if word == "" {
		return nil, ErrNotFound
	}

	if entry, ok := c.dictionary.Get(word); ok {
		return LocalHit{Word: word, Translation: entry.Translation}, nil
	}

	if c.remote != nil {
		hit, err := c.lookupRemote(ctx, word)
		if err != nil {
			slog.Default().Warn("remote lookup failed, using fallback", "word", word, "error", err)
		} else if hit != nil {
			return *hit, nil
		}
	}

	translated, err := c.translator.Translate(ctx, word)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLookupFailed, err)
	}
	if translated == "" {
		return nil, ErrNotFound
	}
	return FallbackHit{Word: word, Translation: translated}, nil
}

func (c *Cascade) lookupRemote(ctx context.Context, word string) (*DatabaseHit, error) {
	result, err := c.remote.Lookup(ctx, word)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, nil
	}

	data := result.Data
	if data.Translation == "" && data.Phonetic == "" && data.Example == "" {
		return nil, nil
	}
	return &DatabaseHit{
		Word:               word,
		Translation:        data.Translation,
		Phonetic:           data.Phonetic,
		Example:            data.Example,
		ExampleTranslation: data.ExampleTranslation,
		Origin:             result.Source,
	}, nil
}
