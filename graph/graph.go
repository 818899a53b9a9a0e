// Package graph implements the turn engine that drives one conversation
// turn through alternating model and tool stages, streaming an ordered
// event sequence to the caller and persisting the thread checkpoint at
// stage boundaries.
package graph

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/lcfern/converse/agent"
	"github.com/lcfern/converse/core/protocol"
	"github.com/lcfern/converse/observability"
	"github.com/lcfern/converse/tools"
)

// ErrMaxIterations is emitted when a turn exhausts its iteration budget
// without the model producing a final response.
var ErrMaxIterations = errors.New("max iterations reached")

// ErrEmptyThreadID is emitted when Stream is called without a thread id.
var ErrEmptyThreadID = errors.New("thread id must not be empty")

// ToolExecutor abstracts tool listing and execution for testability.
// The default implementation delegates to the global tools package.
type ToolExecutor interface {
	List() []protocol.Tool
	Execute(ctx context.Context, name string, args json.RawMessage) (tools.Result, error)
}

type globalToolExecutor struct{}

func (globalToolExecutor) List() []protocol.Tool {
	return tools.List()
}

func (globalToolExecutor) Execute(ctx context.Context, name string, args json.RawMessage) (tools.Result, error) {
	return tools.Execute(ctx, name, args)
}

// Option configures a Graph after construction.
type Option func(*Graph)

// WithToolExecutor overrides the default global tool executor.
func WithToolExecutor(e ToolExecutor) Option {
	return func(g *Graph) { g.tools = e }
}

// WithObserver overrides the default SlogObserver.
func WithObserver(o observability.Observer) Option {
	return func(g *Graph) { g.observer = o }
}

// WithMaxIterations overrides the iteration budget. Zero means unlimited.
func WithMaxIterations(n int) Option {
	return func(g *Graph) { g.maxIterations = n }
}

// WithSystemPrompt sets the system message prepended to every model call.
func WithSystemPrompt(prompt string) Option {
	return func(g *Graph) { g.systemPrompt = prompt }
}

// Graph executes conversation turns against a checkpointed thread history.
// A single turn may be in flight per thread at a time.
type Graph struct {
	agent         agent.Agent
	store         CheckpointStore
	tools         ToolExecutor
	observer      observability.Observer
	maxIterations int
	systemPrompt  string
}

// New creates a Graph over the given agent and checkpoint store.
func New(a agent.Agent, store CheckpointStore, opts ...Option) (*Graph, error) {
	if a == nil {
		return nil, fmt.Errorf("agent must not be nil")
	}
	if store == nil {
		return nil, fmt.Errorf("checkpoint store must not be nil")
	}

	g := &Graph{
		agent:    a,
		store:    store,
		tools:    globalToolExecutor{},
		observer: observability.NewSlogObserver(slog.Default()),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Store returns the graph's checkpoint store.
func (g *Graph) Store() CheckpointStore {
	return g.store
}

// Stream runs one conversation turn: it loads the thread checkpoint,
// appends the user message, and loops model and tool stages until the
// model produces a response with no tool calls. Events arrive on the
// returned channel in order; the channel closes after the terminal
// event (the final KindMessage, or a KindError).
//
// The checkpoint is persisted after every completed stage, so a failure
// mid-turn leaves the history at the last committed stage rather than
// rolled back to the start of the turn.
func (g *Graph) Stream(ctx context.Context, threadID string, userMessage string) <-chan StreamEvent {
	events := make(chan StreamEvent)

	go func() {
		defer close(events)
		g.run(ctx, threadID, userMessage, events)
	}()

	return events
}

func (g *Graph) run(ctx context.Context, threadID, userMessage string, events chan<- StreamEvent) {
	if threadID == "" {
		g.fail(ctx, events, ErrEmptyThreadID)
		return
	}

	cp, _, err := g.store.Get(ctx, threadID)
	if err != nil {
		g.fail(ctx, events, fmt.Errorf("failed to load thread %s: %w", threadID, err))
		return
	}

	cp.Messages = append(cp.Messages, protocol.NewMessage(protocol.RoleUser, userMessage))

	runID := uuid.NewString()
	g.observer.OnEvent(ctx, observability.Event{
		Type:      EventTurnStart,
		Level:     observability.LevelInfo,
		Timestamp: time.Now(),
		Source:    "graph.Stream",
		Data: map[string]any{
			"run_id":         runID,
			"thread_id":      threadID,
			"history_length": len(cp.Messages),
			"max_iterations": g.maxIterations,
		},
	})

	for iteration := 0; g.maxIterations == 0 || iteration < g.maxIterations; iteration++ {
		if err := ctx.Err(); err != nil {
			g.fail(ctx, events, err)
			return
		}

		g.observer.OnEvent(ctx, observability.Event{
			Type:      EventStageStart,
			Level:     observability.LevelVerbose,
			Timestamp: time.Now(),
			Source:    "graph.Stream",
			Data:      map[string]any{"run_id": runID, "stage": "model", "iteration": iteration + 1},
		})

		reply, err := g.agent.StreamChat(ctx, g.buildMessages(cp.Messages), g.tools.List(), func(token string) {
			events <- StreamEvent{Kind: KindToken, Token: token}
		})
		if err != nil {
			g.fail(ctx, events, fmt.Errorf("model call failed: %w", err))
			return
		}

		cp.Messages = append(cp.Messages, reply)
		if err := g.save(ctx, threadID, &cp); err != nil {
			g.fail(ctx, events, err)
			return
		}

		if len(reply.ToolCalls) == 0 {
			events <- StreamEvent{Kind: KindMessage, Message: reply}

			g.observer.OnEvent(ctx, observability.Event{
				Type:      EventTurnComplete,
				Level:     observability.LevelInfo,
				Timestamp: time.Now(),
				Source:    "graph.Stream",
				Data: map[string]any{
					"run_id":          runID,
					"thread_id":       threadID,
					"iterations":      iteration + 1,
					"response_length": len(reply.Content),
				},
			})
			return
		}

		g.observer.OnEvent(ctx, observability.Event{
			Type:      EventStageStart,
			Level:     observability.LevelVerbose,
			Timestamp: time.Now(),
			Source:    "graph.Stream",
			Data:      map[string]any{"run_id": runID, "stage": "tools", "iteration": iteration + 1},
		})

		for _, tc := range reply.ToolCalls {
			g.observer.OnEvent(ctx, observability.Event{
				Type:      EventToolCall,
				Level:     observability.LevelVerbose,
				Timestamp: time.Now(),
				Source:    "graph.Stream",
				Data:      map[string]any{"run_id": runID, "name": tc.Name, "iteration": iteration + 1},
			})

			content, isError := g.executeTool(ctx, tc)

			cp.Messages = append(cp.Messages, protocol.Message{
				Role:       protocol.RoleTool,
				Content:    content,
				ToolCallID: tc.ID,
			})
			events <- StreamEvent{Kind: KindToolResult, ToolName: tc.Name, ToolResult: content}

			g.observer.OnEvent(ctx, observability.Event{
				Type:      EventToolComplete,
				Level:     observability.LevelVerbose,
				Timestamp: time.Now(),
				Source:    "graph.Stream",
				Data:      map[string]any{"run_id": runID, "name": tc.Name, "error": isError},
			})
		}

		if err := g.save(ctx, threadID, &cp); err != nil {
			g.fail(ctx, events, err)
			return
		}
	}

	g.fail(ctx, events, ErrMaxIterations)
}

// executeTool runs one tool call. Execution failures become error content
// handed back to the model rather than aborting the turn.
func (g *Graph) executeTool(ctx context.Context, tc protocol.ToolCall) (string, bool) {
	result, err := g.tools.Execute(ctx, tc.Name, json.RawMessage(tc.Arguments))
	if err != nil {
		return fmt.Sprintf("error: %s", err), true
	}
	return result.Content, result.IsError
}

// save persists the checkpoint with an advanced version.
func (g *Graph) save(ctx context.Context, threadID string, cp *Checkpoint) error {
	cp.Version++
	cp.UpdatedAt = time.Now().UTC()

	if err := g.store.Put(ctx, threadID, *cp); err != nil {
		return fmt.Errorf("failed to save thread %s: %w", threadID, err)
	}

	g.observer.OnEvent(ctx, observability.Event{
		Type:      EventCheckpoint,
		Level:     observability.LevelVerbose,
		Timestamp: time.Now(),
		Source:    "graph.Stream",
		Data: map[string]any{
			"thread_id": threadID,
			"version":   cp.Version,
			"messages":  len(cp.Messages),
		},
	})
	return nil
}

func (g *Graph) fail(ctx context.Context, events chan<- StreamEvent, err error) {
	g.observer.OnEvent(ctx, observability.Event{
		Type:      EventError,
		Level:     observability.LevelWarning,
		Timestamp: time.Now(),
		Source:    "graph.Stream",
		Data:      map[string]any{"error": err.Error()},
	})
	events <- StreamEvent{Kind: KindError, Err: err}
}

func (g *Graph) buildMessages(history []protocol.Message) []protocol.Message {
	if g.systemPrompt == "" {
		return history
	}

	messages := make([]protocol.Message, 0, len(history)+1)
	messages = append(messages, protocol.NewMessage(protocol.RoleSystem, g.systemPrompt))
	messages = append(messages, history...)
	return messages
}
