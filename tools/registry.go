// Package tools exposes the lookup capabilities to the model through a named,
// schema-validated registry. Each tool pairs a protocol.Tool definition
// (declared to the model's function-calling mechanism) with a handler that
// produces a human-readable result string.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/lcfern/converse/core/protocol"
)

// Handler is the function signature for tool implementations.
// Handlers receive the request context and JSON-encoded arguments from the model.
type Handler func(ctx context.Context, args json.RawMessage) (Result, error)

// Result is the tool execution output that feeds back into the next model turn.
// IsError signals to the model that the tool invocation failed.
type Result struct {
	Content string
	IsError bool
}

type entry struct {
	tool    protocol.Tool
	handler Handler
}

type registry struct {
	entries map[string]entry
	mu      sync.RWMutex
}

var defaultRegistry = &registry{
	entries: make(map[string]entry),
}

// Register adds a new tool to the global registry.
// Returns ErrAlreadyExists if a tool with the same name is already registered.
// Use Replace to update an existing tool's handler.
// Thread-safe for concurrent registration.
func Register(tool protocol.Tool, handler Handler) error {
	if tool.Name == "" {
		return ErrEmptyName
	}

	defaultRegistry.mu.Lock()
	defer defaultRegistry.mu.Unlock()

	if _, exists := defaultRegistry.entries[tool.Name]; exists {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, tool.Name)
	}

	defaultRegistry.entries[tool.Name] = entry{tool: tool, handler: handler}
	return nil
}

// Replace updates an existing tool's definition and handler.
// Returns ErrNotFound if no tool with the given name is registered.
func Replace(tool protocol.Tool, handler Handler) error {
	if tool.Name == "" {
		return ErrEmptyName
	}

	defaultRegistry.mu.Lock()
	defer defaultRegistry.mu.Unlock()

	if _, exists := defaultRegistry.entries[tool.Name]; !exists {
		return fmt.Errorf("%w: %s", ErrNotFound, tool.Name)
	}

	defaultRegistry.entries[tool.Name] = entry{tool: tool, handler: handler}
	return nil
}

// List returns the definitions of all registered tools.
func List() []protocol.Tool {
	defaultRegistry.mu.RLock()
	defer defaultRegistry.mu.RUnlock()

	tools := make([]protocol.Tool, 0, len(defaultRegistry.entries))
	for _, e := range defaultRegistry.entries {
		tools = append(tools, e.tool)
	}
	return tools
}

// Execute dispatches a tool call to the registered handler by name.
// Returns ErrNotFound if the tool is not registered.
// Handler errors are wrapped with the tool name for context.
func Execute(ctx context.Context, name string, args json.RawMessage) (Result, error) {
	defaultRegistry.mu.RLock()
	e, exists := defaultRegistry.entries[name]
	defaultRegistry.mu.RUnlock()

	if !exists {
		return Result{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	result, err := e.handler(ctx, args)
	if err != nil {
		return Result{}, fmt.Errorf("tool %s execution failed: %w", name, err)
	}

	return result, nil
}
