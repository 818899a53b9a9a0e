package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

var checkpointBucket = []byte("checkpoints")

// boltStore implements CheckpointStore on a bbolt database file. All
// checkpoints live in a single bucket keyed by thread id, with JSON values.
type boltStore struct {
	db *bolt.DB
}

// NewBoltStore opens (creating if needed) a bbolt database at path.
func NewBoltStore(path string) (CheckpointStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create checkpoint directory: %w", err)
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open checkpoint database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(checkpointBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create checkpoint bucket: %w", err)
	}

	return &boltStore{db: db}, nil
}

func (s *boltStore) Get(_ context.Context, threadID string) (Checkpoint, bool, error) {
	var raw []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(checkpointBucket).Get([]byte(threadID)); v != nil {
			raw = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return Checkpoint{}, false, fmt.Errorf("failed to read checkpoint: %w", err)
	}
	if raw == nil {
		return Checkpoint{}, false, nil
	}

	var cp Checkpoint
	if err := json.Unmarshal(raw, &cp); err != nil {
		return Checkpoint{}, false, fmt.Errorf("failed to decode checkpoint %s: %w", threadID, err)
	}
	return cp, true, nil
}

func (s *boltStore) Put(_ context.Context, threadID string, cp Checkpoint) error {
	raw, err := json.Marshal(cp)
	if err != nil {
		return fmt.Errorf("failed to encode checkpoint %s: %w", threadID, err)
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(checkpointBucket).Put([]byte(threadID), raw)
	})
	if err != nil {
		return fmt.Errorf("failed to write checkpoint: %w", err)
	}
	return nil
}

func (s *boltStore) Delete(_ context.Context, threadID string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(checkpointBucket).Delete([]byte(threadID))
	})
	if err != nil {
		return fmt.Errorf("failed to delete checkpoint: %w", err)
	}
	return nil
}

func (s *boltStore) Close() error {
	return s.db.Close()
}
