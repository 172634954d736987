package fallback

import (
	"context"
	"log/slog"
	"strings"

	"github.com/at-ishikawa/wordsync/internal/cache"
)

// CachedTranslator remembers non-empty translations of another Translator.
type CachedTranslator struct {
	next     Translator
	cache    cache.TranslationCache
	langPair string
}

func NewCachedTranslator(next Translator, c cache.TranslationCache, langPair string) *CachedTranslator {
	return &CachedTranslator{
		next:     next,
		cache:    c,
		langPair: langPair,
	}
}

func (t *CachedTranslator) Translate(ctx context.Context, text string) (string, error) {
	key := t.langPair + ":" + strings.ToLower(strings.TrimSpace(text))
	if translated, ok := t.cache.Get(ctx, key); ok {
		return translated, nil
	}

	translated, err := t.next.Translate(ctx, text)
	if err != nil {
		return "", err
	}
	if translated != "" {
		if err := t.cache.Set(ctx, key, translated); err != nil {
			slog.Warn("failed to cache fallback translation", "text", text, "error", err)
		}
	}
	return translated, nil
}

var _ Translator = (*CachedTranslator)(nil)
