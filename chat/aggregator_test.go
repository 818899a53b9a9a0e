package chat

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/lcfern/converse/core/protocol"
	"github.com/lcfern/converse/graph"
)

// fakeStreamer plays back canned event sequences, one per turn.
type fakeStreamer struct {
	turns   [][]graph.StreamEvent
	calls   int
	threads []string
	inputs  []string
}

func (f *fakeStreamer) Stream(_ context.Context, threadID, userMessage string) <-chan graph.StreamEvent {
	f.threads = append(f.threads, threadID)
	f.inputs = append(f.inputs, userMessage)

	var events []graph.StreamEvent
	if f.calls < len(f.turns) {
		events = f.turns[f.calls]
	}
	f.calls++

	ch := make(chan graph.StreamEvent)
	go func() {
		defer close(ch)
		for _, ev := range events {
			ch <- ev
		}
	}()
	return ch
}

func token(s string) graph.StreamEvent {
	return graph.StreamEvent{Kind: graph.KindToken, Token: s}
}

func finalMessage(s string) graph.StreamEvent {
	return graph.StreamEvent{Kind: graph.KindMessage, Message: protocol.NewMessage(protocol.RoleAssistant, s)}
}

func toolResult(content string) graph.StreamEvent {
	return graph.StreamEvent{Kind: graph.KindToolResult, ToolName: "get_country_info", ToolResult: content}
}

func TestRunTurnRendersTokens(t *testing.T) {
	streamer := &fakeStreamer{turns: [][]graph.StreamEvent{
		{token("Olá"), token(" mundo"), finalMessage("Olá mundo")},
	}}
	var out bytes.Buffer
	agg := NewAggregator(streamer, &out)

	if err := agg.RunTurn(context.Background(), "t1", "oi"); err != nil {
		t.Fatalf("RunTurn() error: %v", err)
	}

	want := "\n🤖 Assistente: Analisando...\n\nOlá mundo"
	if out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
	if streamer.threads[0] != "t1" || streamer.inputs[0] != "oi" {
		t.Errorf("streamer called with (%q, %q)", streamer.threads[0], streamer.inputs[0])
	}
}

func TestRunTurnSkipsEmptyTokens(t *testing.T) {
	streamer := &fakeStreamer{turns: [][]graph.StreamEvent{
		{token(""), token(""), token("Oi"), finalMessage("Oi")},
	}}
	var out bytes.Buffer
	agg := NewAggregator(streamer, &out)

	if err := agg.RunTurn(context.Background(), "t1", "oi"); err != nil {
		t.Fatalf("RunTurn() error: %v", err)
	}

	// the blank line before the answer appears once, at the first
	// non-empty fragment
	if !strings.HasSuffix(out.String(), "Analisando...\n\nOi") {
		t.Errorf("output = %q", out.String())
	}
}

func TestRunTurnAnnouncesLookupOnce(t *testing.T) {
	streamer := &fakeStreamer{turns: [][]graph.StreamEvent{
		{
			toolResult("Informações sobre Brazil:\n- Capital: Brasília"),
			toolResult("Informações sobre Brazil:\n- Capital: Brasília"),
			toolResult("Taxa de câmbio:\n- USD → BRL"),
			token("Pronto."),
			finalMessage("Pronto."),
		},
	}}
	var out bytes.Buffer
	agg := NewAggregator(streamer, &out)

	if err := agg.RunTurn(context.Background(), "t1", "oi"); err != nil {
		t.Fatalf("RunTurn() error: %v", err)
	}

	got := out.String()
	if n := strings.Count(got, " - Buscando: Informações sobre Brazil\n"); n != 1 {
		t.Errorf("country lookup announced %d times:\n%s", n, got)
	}
	if n := strings.Count(got, " - Buscando: Taxa de câmbio\n"); n != 1 {
		t.Errorf("exchange lookup announced %d times:\n%s", n, got)
	}
}

func TestRunTurnPropagatesError(t *testing.T) {
	wantErr := errors.New("model call failed")
	streamer := &fakeStreamer{turns: [][]graph.StreamEvent{
		{token("parci"), {Kind: graph.KindError, Err: wantErr}},
	}}
	var out bytes.Buffer
	agg := NewAggregator(streamer, &out)

	err := agg.RunTurn(context.Background(), "t1", "oi")
	if !errors.Is(err, wantErr) {
		t.Fatalf("RunTurn() error = %v, want %v", err, wantErr)
	}
	// output produced before the failure stays on screen
	if !strings.Contains(out.String(), "parci") {
		t.Errorf("partial output lost: %q", out.String())
	}
}
