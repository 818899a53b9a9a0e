package agent

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/lcfern/converse/core/config"
	"github.com/lcfern/converse/core/protocol"
)

const (
	completionsEndpoint = "/chat/completions"
	maxResponseBytes    = 2 << 20
	maxStreamLineBytes  = 1 << 20
	streamDoneMarker    = "[DONE]"
)

type openAI struct {
	apiKey      string
	model       string
	temperature float64
	endpointURL string
	httpClient  *http.Client
}

func newOpenAI(cfg *config.AgentConfig) (*openAI, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("new model provider: api key is required")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, fmt.Errorf("new model provider: model is required")
	}

	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &openAI{
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		endpointURL: strings.TrimRight(cfg.BaseURL, "/") + completionsEndpoint,
		httpClient:  &http.Client{Timeout: timeout},
	}, nil
}

// completionRequest is the chat-completions wire payload. protocol.Message
// and protocol.ToolCall marshal directly to the nested LLM API format, so the
// conversation is sent as-is.
type completionRequest struct {
	Model       string             `json:"model"`
	Messages    []protocol.Message `json:"messages"`
	Tools       []wireTool         `json:"tools,omitempty"`
	Temperature float64            `json:"temperature"`
	Stream      bool               `json:"stream,omitempty"`
}

type wireTool struct {
	Type     string        `json:"type"`
	Function protocol.Tool `json:"function"`
}

type completionResponse struct {
	Choices []struct {
		Message protocol.Message `json:"message"`
	} `json:"choices"`
}

func wireTools(tools []protocol.Tool) []wireTool {
	if len(tools) == 0 {
		return nil
	}
	wrapped := make([]wireTool, len(tools))
	for i, tool := range tools {
		wrapped[i] = wireTool{Type: "function", Function: tool}
	}
	return wrapped
}

func (a *openAI) Chat(ctx context.Context, messages []protocol.Message) (protocol.Message, error) {
	body, err := a.post(ctx, completionRequest{
		Model:       a.model,
		Messages:    messages,
		Temperature: a.temperature,
	})
	if err != nil {
		return protocol.Message{}, err
	}
	defer body.Close()

	raw, err := io.ReadAll(io.LimitReader(body, maxResponseBytes))
	if err != nil {
		return protocol.Message{}, fmt.Errorf("provider response read: %w", err)
	}

	var parsed completionResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return protocol.Message{}, fmt.Errorf("provider response decode: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return protocol.Message{}, fmt.Errorf("provider response decode: no choices")
	}

	message := parsed.Choices[0].Message
	message.Role = protocol.RoleAssistant
	return message, nil
}

func (a *openAI) StreamChat(ctx context.Context, messages []protocol.Message, tools []protocol.Tool, onToken TokenFunc) (protocol.Message, error) {
	body, err := a.post(ctx, completionRequest{
		Model:       a.model,
		Messages:    messages,
		Tools:       wireTools(tools),
		Temperature: a.temperature,
		Stream:      true,
	})
	if err != nil {
		return protocol.Message{}, err
	}
	defer body.Close()

	return readStream(body, onToken)
}

func (a *openAI) post(ctx context.Context, payload completionRequest) (io.ReadCloser, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("provider request encode: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpointURL, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("provider request build: %w", err)
	}
	request.Header.Set("Authorization", "Bearer "+a.apiKey)
	request.Header.Set("Content-Type", "application/json")

	response, err := a.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("provider request execute: %w", err)
	}

	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		raw, _ := io.ReadAll(io.LimitReader(response.Body, maxResponseBytes))
		response.Body.Close()
		return nil, fmt.Errorf("provider response status=%d body=%s", response.StatusCode, string(raw))
	}

	return response.Body, nil
}

// streamDelta is one SSE frame of an in-progress completion. Tool call
// fragments arrive indexed so arguments can be accumulated across frames.
type streamDelta struct {
	Choices []struct {
		Delta struct {
			Content   string `json:"content"`
			ToolCalls []struct {
				Index    int    `json:"index"`
				ID       string `json:"id"`
				Function struct {
					Name      string `json:"name"`
					Arguments string `json:"arguments"`
				} `json:"function"`
			} `json:"tool_calls"`
		} `json:"delta"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// readStream consumes an SSE chat-completions stream, forwarding text
// fragments to onToken and assembling the finalized assistant message.
func readStream(source io.Reader, onToken TokenFunc) (protocol.Message, error) {
	scanner := bufio.NewScanner(source)
	scanner.Buffer(make([]byte, 0, 4096), maxStreamLineBytes)

	var content strings.Builder
	var calls []protocol.ToolCall

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, ":") {
			continue
		}
		if !strings.HasPrefix(line, "data:") {
			continue
		}

		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == streamDoneMarker {
			break
		}

		var delta streamDelta
		if err := json.Unmarshal([]byte(data), &delta); err != nil {
			return protocol.Message{}, fmt.Errorf("provider stream decode: %w", err)
		}
		if len(delta.Choices) == 0 {
			continue
		}

		choice := delta.Choices[0]
		if choice.Delta.Content != "" {
			content.WriteString(choice.Delta.Content)
			if onToken != nil {
				onToken(choice.Delta.Content)
			}
		}

		for _, fragment := range choice.Delta.ToolCalls {
			for fragment.Index >= len(calls) {
				calls = append(calls, protocol.ToolCall{})
			}
			call := &calls[fragment.Index]
			if fragment.ID != "" {
				call.ID = fragment.ID
			}
			if fragment.Function.Name != "" {
				call.Name = fragment.Function.Name
			}
			call.Arguments += fragment.Function.Arguments
		}
	}
	if err := scanner.Err(); err != nil {
		return protocol.Message{}, fmt.Errorf("provider stream read: %w", err)
	}

	return protocol.Message{
		Role:      protocol.RoleAssistant,
		Content:   content.String(),
		ToolCalls: calls,
	}, nil
}
