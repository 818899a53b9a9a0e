// Package summarize bounds conversation growth by replacing a long thread
// history with a single model-authored summary message.
//
// Compaction is lossy on purpose: tool-result messages are dropped from the
// summarized transcript, so a fact from a tool call survives only if the
// model's summary repeats it. Callers must never run compaction concurrently
// with a turn on the same thread.
package summarize

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lcfern/converse/agent"
	"github.com/lcfern/converse/core/protocol"
	"github.com/lcfern/converse/graph"
	"github.com/lcfern/converse/observability"
)

// Compactor event types.
const (
	EventCompactStart    observability.EventType = "summarize.compact.start"
	EventCompactComplete observability.EventType = "summarize.compact.complete"
	EventCompactSkip     observability.EventType = "summarize.compact.skip"
)

const summaryPromptTemplate = `You are a system that summarizes conversations for long-term memory.

Summarize the conversation below in the primary language used by the user
(ignore system or tool language).
The summary will be used to maintain context across future interactions.
This is a summary, not a transcript.

IMPORTANT: Keep the summary within approximately %d tokens.
Be concise and prioritize the most important information.

Guidelines:
- Be concise and objective
- Preserve key decisions, facts, numbers, and constraints
- Keep only information useful for future context
- Do NOT include greetings, filler text, or redundant details
- Do NOT invent information

Output format (follow strictly):
- Main topics:
- Important facts:
- Decisions or conclusions:
- Open questions or pending actions (if any):

Conversation:
%s`

// Option configures a Compactor.
type Option func(*Compactor)

// WithObserver overrides the default SlogObserver.
func WithObserver(o observability.Observer) Option {
	return func(c *Compactor) { c.observer = o }
}

// Compactor replaces long thread histories with a single summary message.
type Compactor struct {
	agent    agent.Agent
	store    graph.CheckpointStore
	cfg      Config
	observer observability.Observer
}

// New creates a Compactor. The agent should be configured with a low
// temperature so summaries stay consistent across runs.
func New(a agent.Agent, store graph.CheckpointStore, cfg Config, opts ...Option) (*Compactor, error) {
	if a == nil {
		return nil, fmt.Errorf("agent must not be nil")
	}
	if store == nil {
		return nil, fmt.Errorf("checkpoint store must not be nil")
	}
	if cfg.Threshold <= 0 {
		return nil, fmt.Errorf("threshold must be positive, got %d", cfg.Threshold)
	}

	c := &Compactor{
		agent:    a,
		store:    store,
		cfg:      cfg,
		observer: observability.NewSlogObserver(slog.Default()),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// MaybeSummarize compacts the thread if its history exceeds the threshold.
// It reports whether compaction occurred. Errors leave the checkpoint
// untouched; the caller decides whether to surface them as warnings.
func (c *Compactor) MaybeSummarize(ctx context.Context, threadID string) (bool, error) {
	cp, ok, err := c.store.Get(ctx, threadID)
	if err != nil {
		return false, fmt.Errorf("failed to load thread %s: %w", threadID, err)
	}
	if !ok || len(cp.Messages) <= c.cfg.Threshold {
		c.observer.OnEvent(ctx, observability.Event{
			Type:      EventCompactSkip,
			Level:     observability.LevelVerbose,
			Timestamp: time.Now(),
			Source:    "summarize.MaybeSummarize",
			Data:      map[string]any{"thread_id": threadID, "messages": len(cp.Messages)},
		})
		return false, nil
	}

	c.observer.OnEvent(ctx, observability.Event{
		Type:      EventCompactStart,
		Level:     observability.LevelInfo,
		Timestamp: time.Now(),
		Source:    "summarize.MaybeSummarize",
		Data:      map[string]any{"thread_id": threadID, "messages": len(cp.Messages)},
	})

	prompt := fmt.Sprintf(summaryPromptTemplate, c.cfg.MaxSummaryTokens, transcript(cp.Messages))

	reply, err := c.agent.Chat(ctx, []protocol.Message{
		protocol.NewMessage(protocol.RoleUser, prompt),
	})
	if err != nil {
		return false, fmt.Errorf("summary call failed: %w", err)
	}

	summary := protocol.NewMessage(protocol.RoleAssistant, fmt.Sprintf(
		"[Resume of previous conversation - %d messages summarized]\n\n%s",
		len(cp.Messages), reply.Content,
	))

	// Wholesale replacement: same thread, advanced version.
	next := graph.Checkpoint{
		Messages:  []protocol.Message{summary},
		Version:   cp.Version + 1,
		UpdatedAt: time.Now().UTC(),
	}
	if err := c.store.Put(ctx, threadID, next); err != nil {
		return false, fmt.Errorf("failed to save summarized thread %s: %w", threadID, err)
	}

	c.observer.OnEvent(ctx, observability.Event{
		Type:      EventCompactComplete,
		Level:     observability.LevelInfo,
		Timestamp: time.Now(),
		Source:    "summarize.MaybeSummarize",
		Data: map[string]any{
			"thread_id":  threadID,
			"summarized": len(cp.Messages),
			"version":    next.Version,
		},
	})
	return true, nil
}

// transcript renders user and assistant turns as labeled lines. Tool and
// system messages are excluded from the summarized conversation.
func transcript(messages []protocol.Message) string {
	var parts []string
	for _, msg := range messages {
		if !msg.IsConversational() {
			continue
		}
		switch msg.Role {
		case protocol.RoleUser:
			parts = append(parts, "User: "+msg.Content)
		case protocol.RoleAssistant:
			parts = append(parts, "Assistant: "+msg.Content)
		}
	}
	return strings.Join(parts, "\n")
}
