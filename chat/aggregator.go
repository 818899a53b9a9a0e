// Package chat implements the terminal front end: the stream aggregator
// that renders one turn's event sequence, the startup session menu, and
// the interactive shell loop.
package chat

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/lcfern/converse/graph"
)

// TurnStreamer produces the ordered event stream for one conversation turn.
type TurnStreamer interface {
	Stream(ctx context.Context, threadID string, userMessage string) <-chan graph.StreamEvent
}

// Aggregator consumes a turn's event stream and renders it incrementally:
// a thinking placeholder, one lookup line per distinct tool result, then
// the assistant's answer token by token.
type Aggregator struct {
	streamer TurnStreamer
	out      io.Writer
}

// NewAggregator creates an Aggregator writing to out.
func NewAggregator(streamer TurnStreamer, out io.Writer) *Aggregator {
	return &Aggregator{streamer: streamer, out: out}
}

// RunTurn drives one conversation turn to completion. Returns the error
// carried by a terminal error event, if any; rendering output already
// written stays on screen either way.
func (a *Aggregator) RunTurn(ctx context.Context, threadID, userMessage string) error {
	fmt.Fprint(a.out, "\n🤖 Assistente: Analisando...\n")

	// One lookup line per distinct label within a turn, even when the
	// model retries the same tool.
	announced := make(map[string]bool)
	firstToken := true

	for ev := range a.streamer.Stream(ctx, threadID, userMessage) {
		switch ev.Kind {
		case graph.KindToken:
			if ev.Token == "" {
				continue
			}
			if firstToken {
				fmt.Fprint(a.out, "\n")
				firstToken = false
			}
			fmt.Fprint(a.out, ev.Token)

		case graph.KindToolResult:
			label, _, _ := strings.Cut(ev.ToolResult, ":")
			if !announced[label] {
				announced[label] = true
				fmt.Fprintf(a.out, " - Buscando: %s\n", label)
			}

		case graph.KindMessage:
			// History is committed by the engine; nothing left to render.

		case graph.KindError:
			return ev.Err
		}
	}
	return nil
}
