// Package agent provides the model provider used by the conversation engine
// and the summarizer: an OpenAI-compatible chat-completions client with
// function calling and token streaming.
package agent

import (
	"context"

	"github.com/lcfern/converse/core/config"
	"github.com/lcfern/converse/core/protocol"
)

// TokenFunc receives partial assistant text as the model generates it.
type TokenFunc func(token string)

// Agent generates the next assistant message for a conversation.
//
// Chat performs one blocking completion without tools; the summarizer uses it.
// StreamChat performs one completion with the given tools declared, invoking
// onToken for each text fragment as it arrives, and returns the finalized
// message (which may carry tool calls instead of text).
type Agent interface {
	Chat(ctx context.Context, messages []protocol.Message) (protocol.Message, error)
	StreamChat(ctx context.Context, messages []protocol.Message, tools []protocol.Tool, onToken TokenFunc) (protocol.Message, error)
}

// New creates an Agent from configuration.
func New(cfg *config.AgentConfig) (Agent, error) {
	return newOpenAI(cfg)
}
