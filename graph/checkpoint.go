package graph

import (
	"context"
	"time"

	"github.com/lcfern/converse/core/protocol"
)

// Checkpoint is the durable record of one conversation thread: the full
// message history plus a version counter that advances on every write.
type Checkpoint struct {
	Messages  []protocol.Message `json:"messages"`
	Version   int64              `json:"version"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// CheckpointStore persists conversation checkpoints keyed by thread id.
//
// Get reports ok=false for an unknown thread without error. Put overwrites
// any existing checkpoint for the thread. Delete is a no-op for unknown
// threads. Implementations must be safe for concurrent use.
type CheckpointStore interface {
	Get(ctx context.Context, threadID string) (Checkpoint, bool, error)
	Put(ctx context.Context, threadID string, cp Checkpoint) error
	Delete(ctx context.Context, threadID string) error
	Close() error
}
