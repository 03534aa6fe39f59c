package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"realtylink-scraper/models"
)

// JSONWriter writes the listing batch as a single JSON array document.
// Each Write replaces the file contents.
type JSONWriter struct {
	mu   sync.Mutex
	path string
}

// NewJSONWriter prepares path for writing. Intermediate directories are
// created automatically.
func NewJSONWriter(path string) (*JSONWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("json: create output dir: %w", err)
	}
	return &JSONWriter{path: path}, nil
}

// Write serialises listings and atomically replaces the output file.
func (j *JSONWriter) Write(listings []*models.Listing) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if listings == nil {
		listings = []*models.Listing{}
	}
	data, err := json.MarshalIndent(listings, "", "  ")
	if err != nil {
		return fmt.Errorf("json: marshal: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(j.path), ".listings-*.json")
	if err != nil {
		return fmt.Errorf("json: create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("json: write: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("json: sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("json: close: %w", err)
	}
	if err := os.Rename(tmp.Name(), j.path); err != nil {
		return fmt.Errorf("json: rename into %q: %w", j.path, err)
	}
	return nil
}

func (j *JSONWriter) Close() error {
	return nil
}

// FetchAll reads the document back.
func (j *JSONWriter) FetchAll() ([]*models.Listing, error) {
	return ReadJSON(j.path)
}

// ReadJSON loads a document produced by JSONWriter.
func ReadJSON(path string) ([]*models.Listing, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("json: read %q: %w", path, err)
	}
	var listings []*models.Listing
	if err := json.Unmarshal(data, &listings); err != nil {
		return nil, fmt.Errorf("json: decode %q: %w", path, err)
	}
	return listings, nil
}
