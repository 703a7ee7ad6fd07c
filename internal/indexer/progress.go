package indexer

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ProgressStore remembers the last fully processed block.
type ProgressStore interface {
	Load(ctx context.Context) (uint64, bool, error)
	Save(ctx context.Context, block uint64) error
}

type fileProgress struct {
	LastProcessedBlock uint64 `json:"last_processed_block"`
	UpdatedAt          string `json:"updated_at"`
}

// FileProgress keeps progress in a small JSON file. An empty path disables it.
type FileProgress struct {
	path string
}

func NewFileProgress(path string) *FileProgress {
	return &FileProgress{path: path}
}

func (f *FileProgress) Load(context.Context) (uint64, bool, error) {
	if f.path == "" {
		return 0, false, nil
	}
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("read progress: %w", err)
	}
	var state fileProgress
	if err := json.Unmarshal(data, &state); err != nil {
		return 0, false, fmt.Errorf("parse progress: %w", err)
	}
	return state.LastProcessedBlock, true, nil
}

// Save replaces the file through a temp file and rename.
func (f *FileProgress) Save(_ context.Context, block uint64) error {
	if f.path == "" {
		return nil
	}
	if dir := filepath.Dir(f.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create progress dir: %w", err)
		}
	}
	data, err := json.Marshal(fileProgress{
		LastProcessedBlock: block,
		UpdatedAt:          time.Now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("marshal progress: %w", err)
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write progress: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("rename progress: %w", err)
	}
	return nil
}

// StateStore is the named progress table of a database backend.
type StateStore interface {
	LoadState(ctx context.Context, name string) (uint64, bool, error)
	SaveState(ctx context.Context, name string, block uint64) error
}

// DBProgress keeps progress under a name in a StateStore.
type DBProgress struct {
	store StateStore
	name  string
}

func NewDBProgress(store StateStore, name string) *DBProgress {
	return &DBProgress{store: store, name: name}
}

func (d *DBProgress) Load(ctx context.Context) (uint64, bool, error) {
	return d.store.LoadState(ctx, d.name)
}

func (d *DBProgress) Save(ctx context.Context, block uint64) error {
	return d.store.SaveState(ctx, d.name, block)
}
