package graph

import "fmt"

// CheckpointConfig selects and parameterizes the checkpoint backend.
type CheckpointConfig struct {
	Store string `json:"store,omitempty"` // "memory", "bolt", or "file".
	Path  string `json:"path,omitempty"`  // Database file (bolt) or directory (file).
}

// Config holds execution graph initialization parameters.
type Config struct {
	Checkpoint    CheckpointConfig `json:"checkpoint,omitempty"`
	MaxIterations int              `json:"max_iterations,omitempty"` // 0 means unlimited.
}

// DefaultConfig returns the default graph configuration: bolt-backed
// checkpoints under data/ and a bounded tool loop.
func DefaultConfig() Config {
	return Config{
		Checkpoint: CheckpointConfig{
			Store: "bolt",
			Path:  "data/checkpoints.db",
		},
		MaxIterations: 10,
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.Checkpoint.Store != "" {
		c.Checkpoint.Store = source.Checkpoint.Store
	}
	if source.Checkpoint.Path != "" {
		c.Checkpoint.Path = source.Checkpoint.Path
	}
	if source.MaxIterations != 0 {
		c.MaxIterations = source.MaxIterations
	}
}

// NewStore creates a CheckpointStore from configuration.
func NewStore(cfg *CheckpointConfig) (CheckpointStore, error) {
	switch cfg.Store {
	case "", "memory":
		return NewMemoryStore(), nil
	case "bolt":
		if cfg.Path == "" {
			return nil, fmt.Errorf("checkpoint store %q requires a path", cfg.Store)
		}
		return NewBoltStore(cfg.Path)
	case "file":
		if cfg.Path == "" {
			return nil, fmt.Errorf("checkpoint store %q requires a path", cfg.Store)
		}
		return NewFileStore(cfg.Path), nil
	default:
		return nil, fmt.Errorf("unknown checkpoint store: %s", cfg.Store)
	}
}
