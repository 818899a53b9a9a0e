package graph

import (
	"context"
	"sync"

	"github.com/lcfern/converse/core/protocol"
)

// memoryStore implements CheckpointStore with in-process storage.
// Checkpoints are lost when the process terminates; useful for tests
// and throwaway sessions.
type memoryStore struct {
	mu          sync.RWMutex
	checkpoints map[string]Checkpoint
}

// NewMemoryStore creates a CheckpointStore backed by a map.
func NewMemoryStore() CheckpointStore {
	return &memoryStore{checkpoints: make(map[string]Checkpoint)}
}

func (s *memoryStore) Get(_ context.Context, threadID string) (Checkpoint, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cp, ok := s.checkpoints[threadID]
	if !ok {
		return Checkpoint{}, false, nil
	}
	return copyCheckpoint(cp), true, nil
}

func (s *memoryStore) Put(_ context.Context, threadID string, cp Checkpoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.checkpoints[threadID] = copyCheckpoint(cp)
	return nil
}

func (s *memoryStore) Delete(_ context.Context, threadID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.checkpoints, threadID)
	return nil
}

func (s *memoryStore) Close() error { return nil }

// copyCheckpoint clones the message slice so callers cannot mutate
// stored state through a retained reference.
func copyCheckpoint(cp Checkpoint) Checkpoint {
	out := cp
	if cp.Messages != nil {
		out.Messages = append([]protocol.Message(nil), cp.Messages...)
	}
	return out
}
