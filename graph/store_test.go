package graph

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/lcfern/converse/core/protocol"
)

func testStores(t *testing.T) map[string]CheckpointStore {
	t.Helper()

	bolt, err := NewBoltStore(filepath.Join(t.TempDir(), "checkpoints.db"))
	if err != nil {
		t.Fatalf("NewBoltStore() error: %v", err)
	}
	t.Cleanup(func() { bolt.Close() })

	return map[string]CheckpointStore{
		"memory": NewMemoryStore(),
		"file":   NewFileStore(t.TempDir()),
		"bolt":   bolt,
	}
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	cp := Checkpoint{
		Messages: []protocol.Message{
			protocol.NewMessage(protocol.RoleUser, "oi"),
			protocol.NewMessage(protocol.RoleAssistant, "Olá!"),
		},
		Version: 2,
	}

	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			if err := store.Put(ctx, "t1", cp); err != nil {
				t.Fatalf("Put() error: %v", err)
			}

			got, ok, err := store.Get(ctx, "t1")
			if err != nil || !ok {
				t.Fatalf("Get() = ok=%v err=%v", ok, err)
			}
			if got.Version != 2 || len(got.Messages) != 2 {
				t.Fatalf("got %+v", got)
			}
			if got.Messages[1].Content != "Olá!" {
				t.Errorf("Messages[1].Content = %q", got.Messages[1].Content)
			}
		})
	}
}

func TestStoreGetMissing(t *testing.T) {
	ctx := context.Background()
	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := store.Get(ctx, "nope")
			if err != nil {
				t.Fatalf("Get() error: %v", err)
			}
			if ok {
				t.Error("Get() ok = true for unknown thread")
			}
		})
	}
}

func TestStoreDelete(t *testing.T) {
	ctx := context.Background()
	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			// delete of an unknown thread is a no-op
			if err := store.Delete(ctx, "nope"); err != nil {
				t.Fatalf("Delete(missing) error: %v", err)
			}

			if err := store.Put(ctx, "t1", Checkpoint{Version: 1}); err != nil {
				t.Fatalf("Put() error: %v", err)
			}
			if err := store.Delete(ctx, "t1"); err != nil {
				t.Fatalf("Delete() error: %v", err)
			}
			if _, ok, _ := store.Get(ctx, "t1"); ok {
				t.Error("checkpoint still present after Delete")
			}
		})
	}
}

func TestStorePutOverwrites(t *testing.T) {
	ctx := context.Background()
	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			store.Put(ctx, "t1", Checkpoint{Version: 1})
			store.Put(ctx, "t1", Checkpoint{Version: 7})

			got, _, _ := store.Get(ctx, "t1")
			if got.Version != 7 {
				t.Errorf("Version = %d, want 7", got.Version)
			}
		})
	}
}

func TestNewStore(t *testing.T) {
	tests := []struct {
		name    string
		cfg     CheckpointConfig
		wantErr bool
	}{
		{"default memory", CheckpointConfig{}, false},
		{"memory", CheckpointConfig{Store: "memory"}, false},
		{"file", CheckpointConfig{Store: "file", Path: t.TempDir()}, false},
		{"file without path", CheckpointConfig{Store: "file"}, true},
		{"bolt without path", CheckpointConfig{Store: "bolt"}, true},
		{"unknown", CheckpointConfig{Store: "redis"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := NewStore(&tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewStore() error: %v", err)
			}
			store.Close()
		})
	}
}

func TestMemoryStoreCopiesMessages(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	msgs := []protocol.Message{protocol.NewMessage(protocol.RoleUser, "oi")}
	store.Put(ctx, "t1", Checkpoint{Messages: msgs, Version: 1})
	msgs[0].Content = "mutated"

	got, _, _ := store.Get(ctx, "t1")
	if got.Messages[0].Content != "oi" {
		t.Errorf("stored checkpoint shares memory with caller: %q", got.Messages[0].Content)
	}
}
