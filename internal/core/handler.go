package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/at-ishikawa/wordsync/internal/channel"
	"github.com/at-ishikawa/wordsync/internal/lookup"
)

type LookupPayload struct {
	Word string `json:"word"`
}

type SavePayload struct {
	Word        string `json:"word"`
	Translation string `json:"translation"`
}

type DeletePayload struct {
	ID string `json:"id"`
}

// LookupData is the data of a LOOKUP_WORD response. A failed lookup only carries Word, the raw term.
type LookupData struct {
	Word        string `json:"word"`
	Translation string `json:"translation,omitempty"`
	Source      string `json:"source,omitempty"`
	Count       int    `json:"count,omitempty"`
}

type DeleteData struct {
	Deleted bool `json:"deleted"`
}

// dispatch answers req. The returned function, if any, runs after the reply has been sent.
func (s *Service) dispatch(ctx context.Context, req channel.Request) (channel.Response, func(ctx context.Context)) {
	switch req.Type {
	case channel.TypeLookupWord:
		return s.lookupWord(ctx, req)
	case channel.TypeSaveTranslation:
		return s.saveTranslation(ctx, req)
	case channel.TypeGetTranslations:
		return reply(s.store.List()), nil
	case channel.TypeDeleteTranslation:
		return s.deleteTranslation(ctx, req)
	}
	return channel.Fail(fmt.Errorf("%w: unknown request type %q", channel.ErrProtocol, req.Type), nil), nil
}

func (s *Service) lookupWord(ctx context.Context, req channel.Request) (channel.Response, func(ctx context.Context)) {
	var payload LookupPayload
	if err := req.Decode(&payload); err != nil {
		return channel.Fail(err, nil), nil
	}

	result, err := s.resolver.Resolve(ctx, payload.Word)
	if err != nil {
		slog.Default().Info("lookup failed", "word", payload.Word, "error", err)
		return channel.Fail(err, LookupData{Word: payload.Word}), nil
	}

	text := savedText(result)
	record, err := s.store.Upsert(ctx, result.Term(), text)
	if err != nil {
		slog.Default().Warn("failed to persist lookup", "word", result.Term(), "error", err)
	}
	data := LookupData{
		Word:        result.Term(),
		Translation: result.DisplayText(),
		Source:      result.Source(),
		Count:       record.Count,
	}
	return reply(data), s.pushSave(record.Word, record.Translation)
}

func (s *Service) saveTranslation(ctx context.Context, req channel.Request) (channel.Response, func(ctx context.Context)) {
	var payload SavePayload
	if err := req.Decode(&payload); err != nil {
		return channel.Fail(err, nil), nil
	}
	if payload.Word == "" || payload.Translation == "" {
		return channel.Fail(errors.New("word and translation are required"), nil), nil
	}

	record, err := s.store.Upsert(ctx, payload.Word, payload.Translation)
	if err != nil {
		slog.Default().Warn("failed to persist translation", "word", payload.Word, "error", err)
	}
	return reply(record), s.pushSave(record.Word, record.Translation)
}

func (s *Service) deleteTranslation(ctx context.Context, req channel.Request) (channel.Response, func(ctx context.Context)) {
	var payload DeletePayload
	if err := req.Decode(&payload); err != nil {
		return channel.Fail(err, nil), nil
	}

	record, deleted, err := s.store.Delete(ctx, payload.ID)
	if err != nil {
		slog.Default().Warn("failed to persist deletion", "id", payload.ID, "error", err)
	}
	if s.remote == nil || !deleted {
		return reply(DeleteData{Deleted: deleted}), nil
	}
	return reply(DeleteData{Deleted: deleted}), func(ctx context.Context) {
		if err := s.remote.Delete(ctx, record.ID, record.Word); err != nil {
			slog.Default().Warn("failed to delete remote translation", "id", record.ID, "word", record.Word, "error", err)
		}
	}
}

// pushSave returns the best-effort remote save of a translation, or nil when the remote store is disabled.
func (s *Service) pushSave(word, text string) func(ctx context.Context) {
	if s.remote == nil || word == "" {
		return nil
	}
	return func(ctx context.Context) {
		if err := s.remote.Upsert(ctx, word, text); err != nil {
			slog.Default().Warn("failed to save translation remotely", "word", word, "error", err)
		}
	}
}

// savedText is the translation kept in the local store for result.
func savedText(result lookup.Result) string {
	switch hit := result.(type) {
	case lookup.DatabaseHit:
		if hit.Translation != "" {
			return hit.Translation
		}
	}
	return result.DisplayText()
}

func reply(data any) channel.Response {
	resp, err := channel.OK(data)
	if err != nil {
		return channel.Fail(err, nil)
	}
	return resp
}
