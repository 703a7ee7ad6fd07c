package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"poolValuator/internal/model"
)

// SnapshotFile appends pool snapshots to a JSONL file, one object per line.
type SnapshotFile struct {
	path string

	mu      sync.Mutex
	file    *os.File
	encoder *json.Encoder
}

func NewSnapshotFile(path string) *SnapshotFile {
	return &SnapshotFile{path: path}
}

func (s *SnapshotFile) open() error {
	if s.file != nil {
		return nil
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create snapshot dir: %w", err)
		}
	}
	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open snapshot file: %w", err)
	}
	s.file = file
	s.encoder = json.NewEncoder(file)
	return nil
}

// PutPoolPrices appends prices to the file.
func (s *SnapshotFile) PutPoolPrices(prices []model.PoolPrice) error {
	if len(prices) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.open(); err != nil {
		return err
	}
	for _, price := range prices {
		if err := s.encoder.Encode(price); err != nil {
			return fmt.Errorf("write pool price %s: %w", price.ID, err)
		}
	}
	return nil
}

func (s *SnapshotFile) Close() error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}
