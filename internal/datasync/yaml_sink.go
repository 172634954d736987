package datasync

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/at-ishikawa/wordsync/internal/translation"
)

// SyncState is the exported sync cursor.
type SyncState struct {
	LastSyncTime time.Time `yaml:"last_sync_time"`
	Translations int       `yaml:"translations"`
}

// YAMLSink writes the local state to YAML files.
type YAMLSink struct {
	outputDir string
}

func NewYAMLSink(outputDir string) *YAMLSink {
	return &YAMLSink{outputDir: outputDir}
}

// WriteAll writes records to translations.yml and the cursor to sync_state.yml.
func (s *YAMLSink) WriteAll(records []translation.Record, lastSyncTime time.Time) error {
	if err := os.MkdirAll(s.outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if records == nil {
		records = []translation.Record{}
	}
	if err := writeYAML(filepath.Join(s.outputDir, "translations.yml"), records); err != nil {
		return fmt.Errorf("write translations.yml: %w", err)
	}
	state := SyncState{LastSyncTime: lastSyncTime.UTC(), Translations: len(records)}
	if err := writeYAML(filepath.Join(s.outputDir, "sync_state.yml"), state); err != nil {
		return fmt.Errorf("write sync_state.yml: %w", err)
	}
	return nil
}

func writeYAML(path string, data interface{}) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	enc := yaml.NewEncoder(f)
	defer func() { _ = enc.Close() }()
	return enc.Encode(data)
}
