package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"maps-scraper/models"
)

// SnapshotWriter writes one JSON backup file per collected listing, named
// by a 1-based sequential index, for offline inspection.
type SnapshotWriter struct {
	dir string
}

// NewSnapshotWriter creates the output directory if needed.
func NewSnapshotWriter(dir string) (*SnapshotWriter, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("snapshot: create output dir: %w", err)
	}
	return &SnapshotWriter{dir: dir}, nil
}

// Write stores the full collected record as info-<index>.json.
func (w *SnapshotWriter) Write(index int, rec *models.ListingRecord) (string, error) {
	path := filepath.Join(w.dir, fmt.Sprintf("info-%d.json", index))

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", fmt.Errorf("snapshot: marshal record: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("snapshot: write %q: %w", path, err)
	}
	return path, nil
}
