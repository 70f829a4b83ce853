package portfolio

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"pricepeak/internal/model"
)

// Store persists the portfolio allocation as an opaque blob.
type Store interface {
	Load(ctx context.Context) (model.Portfolio, bool, error)
	Save(ctx context.Context, p model.Portfolio) error
}

// FileStore keeps the allocation in a JSON file.
type FileStore struct {
	Path string
}

// NewFileStore creates a FileStore.
func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

// Load reads the allocation. A missing file is reported as not found.
func (f *FileStore) Load(_ context.Context) (model.Portfolio, bool, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read portfolio: %w", err)
	}
	var p model.Portfolio
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, false, fmt.Errorf("decode portfolio: %w", err)
	}
	return p, true, nil
}

// Save writes the allocation, creating the parent directory if needed.
func (f *FileStore) Save(_ context.Context, p model.Portfolio) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("encode portfolio: %w", err)
	}
	if dir := filepath.Dir(f.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create portfolio dir: %w", err)
		}
	}
	return os.WriteFile(f.Path, data, 0644)
}

// MemoryStore keeps the allocation in process. Used when persistence is off.
type MemoryStore struct {
	saved model.Portfolio
}

func (m *MemoryStore) Load(_ context.Context) (model.Portfolio, bool, error) {
	if m.saved == nil {
		return nil, false, nil
	}
	return m.saved.Clone(), true, nil
}

func (m *MemoryStore) Save(_ context.Context, p model.Portfolio) error {
	m.saved = p.Clone()
	return nil
}
