package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// loadRecords concatenates the elements of every top-level JSON array found
// in dir, in file name order. Files holding anything else are skipped with a
// warning.
func loadRecords(dir string, log zerolog.Logger) ([]json.RawMessage, int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, 0, fmt.Errorf("reading data directory: %w", err)
	}

	var records []json.RawMessage
	files := 0
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".json") {
			continue
		}

		path := filepath.Join(dir, e.Name())
		items, isArray, err := readArray(path)
		if err != nil {
			return nil, files, err
		}
		files++

		if !isArray {
			log.Warn().Str("file", e.Name()).Msg("not a JSON array, skipping")
			continue
		}

		log.Debug().Str("file", e.Name()).Int("records", len(items)).Msg("loaded")
		records = append(records, items...)
	}

	return records, files, nil
}

func readArray(path string) ([]json.RawMessage, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false, fmt.Errorf("reading %s: %w", path, err)
	}

	var v json.RawMessage
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, false, fmt.Errorf("parsing %s: %w", path, err)
	}

	trimmed := bytes.TrimSpace(v)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, false, nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, false, fmt.Errorf("parsing %s: %w", path, err)
	}
	return items, true, nil
}
