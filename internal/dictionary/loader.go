package dictionary

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// LoadCSV reads "word,translation" rows without a header line.
// Rows with fewer than two columns or an empty word or translation are skipped.
func LoadCSV(r io.Reader) (*Dictionary, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	var entries []Entry
	for line := 1; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read dictionary line %d: %w", line, err)
		}
		if len(row) < 2 {
			continue
		}
		word := row[0]
		if line == 1 {
			word = strings.TrimPrefix(word, "\ufeff")
		}
		entries = append(entries, Entry{Word: word, Translation: row[1]})
	}
	return New(entries), nil
}

// LoadFile loads the CSV dictionary at path. An empty path gives an empty dictionary.
func LoadFile(path string) (*Dictionary, error) {
	if path == "" {
		return New(nil), nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dictionary %s: %w", path, err)
	}
	defer func() {
		_ = file.Close()
	}()

	d, err := LoadCSV(file)
	if err != nil {
		return nil, fmt.Errorf("load dictionary %s: %w", path, err)
	}
	slog.Info("dictionary loaded", "path", path, "words", d.Len())
	return d, nil
}
