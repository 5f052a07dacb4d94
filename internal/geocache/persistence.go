package geocache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FilePersistence snapshots the cache to a JSON file. A missing file is a
// cold start, not an error; a corrupt one surfaces as a Load error that the
// cache logs and swallows.
type FilePersistence[V any] struct {
	path string
}

func NewFilePersistence[V any](path string) *FilePersistence[V] {
	return &FilePersistence[V]{path: path}
}

func (p *FilePersistence[V]) Load() (map[string]Entry[V], error) {
	data, err := os.ReadFile(p.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache snapshot: %w", err)
	}

	var entries map[string]Entry[V]
	if err = json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode cache snapshot: %w", err)
	}

	return entries, nil
}

func (p *FilePersistence[V]) Save(entries map[string]Entry[V]) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to encode cache snapshot: %w", err)
	}

	// Write-then-rename so a crash mid-write never corrupts the snapshot.
	tmp := p.path + ".tmp"
	if err = os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	if err = os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write cache snapshot: %w", err)
	}
	if err = os.Rename(tmp, p.path); err != nil {
		return fmt.Errorf("failed to replace cache snapshot: %w", err)
	}

	return nil
}
