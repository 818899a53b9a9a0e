package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// fileStore implements CheckpointStore with one JSON file per thread under
// a root directory. Writes go through a temp file and rename so a crash
// mid-write never leaves a torn checkpoint.
type fileStore struct {
	root string
}

// NewFileStore creates a CheckpointStore backed by the filesystem.
func NewFileStore(root string) CheckpointStore {
	return &fileStore{root: root}
}

func (s *fileStore) path(threadID string) string {
	return filepath.Join(s.root, threadID+".json")
}

func (s *fileStore) Get(_ context.Context, threadID string) (Checkpoint, bool, error) {
	data, err := os.ReadFile(s.path(threadID))
	if err != nil {
		if os.IsNotExist(err) {
			return Checkpoint{}, false, nil
		}
		return Checkpoint{}, false, fmt.Errorf("failed to read checkpoint: %w", err)
	}

	var cp Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return Checkpoint{}, false, fmt.Errorf("failed to decode checkpoint %s: %w", threadID, err)
	}
	return cp, true, nil
}

func (s *fileStore) Put(_ context.Context, threadID string, cp Checkpoint) error {
	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return fmt.Errorf("failed to create checkpoint directory: %w", err)
	}

	data, err := json.Marshal(cp)
	if err != nil {
		return fmt.Errorf("failed to encode checkpoint %s: %w", threadID, err)
	}

	tmp, err := os.CreateTemp(s.root, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to write checkpoint: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write checkpoint: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write checkpoint: %w", err)
	}
	if err := os.Rename(tmpName, s.path(threadID)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write checkpoint: %w", err)
	}
	return nil
}

func (s *fileStore) Delete(_ context.Context, threadID string) error {
	err := os.Remove(s.path(threadID))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete checkpoint: %w", err)
	}
	return nil
}

func (s *fileStore) Close() error { return nil }
