// Package archive persists scraped records: the run's JSON document and an
// optional SQLite export.
package archive

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/pevans/khabar/article"
)

// ErrPersistence wraps every failure to write or read an archive.
var ErrPersistence = errors.New("persistence error")

// Marshal encodes records as an indented JSON array. Non-ASCII text and HTML
// characters are written literally. A nil or empty input encodes as [].
func Marshal(records []article.Record) ([]byte, error) {
	if records == nil {
		records = []article.Record{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return nil, fmt.Errorf("failed to marshal records: %w", err)
	}

	return buf.Bytes(), nil
}

// Save writes records to path as one JSON document, replacing any existing
// file.
func Save(path string, records []article.Record) error {
	data, err := Marshal(records)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("%w: failed to write %s: %w", ErrPersistence, path, err)
	}

	return nil
}

// Load reads a JSON document written by Save.
func Load(path string) ([]article.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read %s: %w", ErrPersistence, path, err)
	}

	var records []article.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: failed to parse %s: %w", ErrPersistence, path, err)
	}
	if records == nil {
		records = []article.Record{}
	}

	return records, nil
}

// LogSummary logs the average content length and category distribution of
// records. Nothing is logged for an empty set.
func LogSummary(logger *slog.Logger, records []article.Record) {
	if len(records) == 0 {
		return
	}

	stats := article.Summarize(records)
	logger.Info("average article length", "chars", fmt.Sprintf("%.0f", stats.AverageContentLength))
	logger.Info("category distribution", "categories", stats.Categories)
}
