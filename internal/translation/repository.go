package translation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/at-ishikawa/wordsync/internal/database"
)

//go:generate mockgen -source=repository.go -destination=../mocks/translation/mock_repository.go -package=mock_translation

// Entry is a row of the translations table.
type Entry struct {
	ID                 int64          `db:"id"`
	Word               string         `db:"word"`
	Translation        string         `db:"translation"`
	Count              int            `db:"count"`
	Phonetic           sql.NullString `db:"phonetic"`
	Example            sql.NullString `db:"example"`
	ExampleTranslation sql.NullString `db:"example_translation"`
	LastModified       time.Time      `db:"last_modified"`
	CreatedAt          time.Time      `db:"created_at"`
}

// Record converts the row into the wire record.
func (e Entry) Record() Record {
	return Record{
		ID:           strconv.FormatInt(e.ID, 10),
		Word:         e.Word,
		Translation:  e.Translation,
		Count:        e.Count,
		LastModified: e.LastModified,
	}
}

// Repository defines operations for managing translation rows.
type Repository interface {
	FindAll(ctx context.Context) ([]Entry, error)
	FindByWord(ctx context.Context, word string) (*Entry, error)
	Upsert(ctx context.Context, word, translation string) error
	BatchUpsert(ctx context.Context, records []Record) error
	Delete(ctx context.Context, id int64) (bool, error)
	DeleteByWord(ctx context.Context, word string) (bool, error)
}

const selectColumns = "id, word, translation, count, phonetic, example, example_translation, last_modified, created_at"

// DBRepository implements Repository using MySQL.
type DBRepository struct {
	db *sqlx.DB
}

// NewDBRepository creates a new DBRepository.
func NewDBRepository(db *sqlx.DB) *DBRepository {
	return &DBRepository{db: db}
}

// FindAll returns all translations, most recently modified first.
func (r *DBRepository) FindAll(ctx context.Context) ([]Entry, error) {
	var entries []Entry
	if err := r.db.SelectContext(ctx, &entries, "SELECT "+selectColumns+" FROM translations ORDER BY last_modified DESC"); err != nil {
		return nil, fmt.Errorf("load all translations: %w", err)
	}
	return entries, nil
}

// FindByWord returns the translation of a word, or nil if not found.
func (r *DBRepository) FindByWord(ctx context.Context, word string) (*Entry, error) {
	var entry Entry
	err := r.db.GetContext(ctx, &entry, "SELECT "+selectColumns+" FROM translations WHERE word = ?", word)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find translation by word: %w", err)
	}
	return &entry, nil
}

// Upsert inserts a translation, or replaces the translation and increments the count of an existing word.
func (r *DBRepository) Upsert(ctx context.Context, word, translation string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO translations (word, translation, count, last_modified)
		VALUES (?, ?, 1, CURRENT_TIMESTAMP(3))
		ON DUPLICATE KEY UPDATE count = count + 1, translation = VALUES(translation), last_modified = CURRENT_TIMESTAMP(3)`,
		Truncate(word), Truncate(translation))
	if err != nil {
		return fmt.Errorf("upsert translation: %w", err)
	}
	return nil
}

// BatchUpsert writes multiple records in a single transaction.
// An existing word is only overwritten by a record with a strictly newer last_modified.
func (r *DBRepository) BatchUpsert(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}

	return database.RunInTx(ctx, r.db, func(ctx context.Context, tx *sqlx.Tx) error {
		columns := []string{"word", "translation", "count", "last_modified"}
		query := database.BuildMultiRowInsert("translations", columns, len(records)) +
			` ON DUPLICATE KEY UPDATE
			translation = IF(VALUES(last_modified) > last_modified, VALUES(translation), translation),
			count = IF(VALUES(last_modified) > last_modified, VALUES(count), count),
			last_modified = GREATEST(last_modified, VALUES(last_modified))`

		args := make([]interface{}, 0, len(records)*len(columns))
		for _, rec := range records {
			count := rec.Count
			if count < 1 {
				count = 1
			}
			args = append(args, Truncate(rec.Word), Truncate(rec.Translation), count, rec.LastModified)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("batch upsert translations: %w", err)
		}
		return nil
	})
}

// Delete removes a translation by id and reports whether a row was removed.
func (r *DBRepository) Delete(ctx context.Context, id int64) (bool, error) {
	return r.delete(ctx, "DELETE FROM translations WHERE id = ?", id)
}

// DeleteByWord removes the translation of word. The column collation makes the match case-insensitive.
func (r *DBRepository) DeleteByWord(ctx context.Context, word string) (bool, error) {
	return r.delete(ctx, "DELETE FROM translations WHERE word = ?", Truncate(word))
}

func (r *DBRepository) delete(ctx context.Context, query string, arg any) (bool, error) {
	result, err := r.db.ExecContext(ctx, query, arg)
	if err != nil {
		return false, fmt.Errorf("delete translation: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("count deleted translations: %w", err)
	}
	return affected > 0, nil
}
