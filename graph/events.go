package graph

import (
	"github.com/lcfern/converse/core/protocol"
	"github.com/lcfern/converse/observability"
)

// EventKind discriminates the variants of StreamEvent.
type EventKind int

const (
	// KindToken is a model output fragment produced during streaming.
	KindToken EventKind = iota
	// KindToolResult is the content returned by one tool execution.
	KindToolResult
	// KindMessage is a finalized assistant message committed to history.
	KindMessage
	// KindError terminates the stream; no further events follow it.
	KindError
)

// StreamEvent is one element of the ordered event sequence a turn produces.
// Exactly one payload field is meaningful for a given Kind. The channel
// returned by Graph.Stream closes after the last event of the turn, which
// is either a KindMessage or a KindError.
type StreamEvent struct {
	Kind       EventKind
	Token      string           // KindToken
	ToolName   string           // KindToolResult
	ToolResult string           // KindToolResult
	Message    protocol.Message // KindMessage
	Err        error            // KindError
}

// Graph event types emitted to the observer during a turn.
const (
	EventTurnStart    observability.EventType = "graph.turn.start"
	EventTurnComplete observability.EventType = "graph.turn.complete"
	EventStageStart   observability.EventType = "graph.stage.start"
	EventToolCall     observability.EventType = "graph.tool.call"
	EventToolComplete observability.EventType = "graph.tool.complete"
	EventCheckpoint   observability.EventType = "graph.checkpoint.save"
	EventError        observability.EventType = "graph.error"
)
