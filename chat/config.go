package chat

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/lcfern/converse/core/config"
	"github.com/lcfern/converse/graph"
	"github.com/lcfern/converse/summarize"
)

const defaultSystemPrompt = `You are a useful and friendly assistant that can search for information about:
- Countries (capital, population, region, currency, languages)
- Exchange rate between currencies

Use the available tools when necessary to answer the user's questions.
Be clear, objective and friendly in your responses, whenever possible show a summary of the information shown.
If you are not sure about something, be honest and say you don't know.

If the user wants to exit, say that to exit he needs to type 'sair', 'quit', 'exit' or 'q'.
If the user wants to clear the history, say that to clear the history he needs to type 'limpar', 'clear' or 'reset'.`

// Config holds initialization parameters for the assistant: the model,
// the execution graph, compaction, and the session catalog.
type Config struct {
	Agent         config.AgentConfig `json:"agent"`
	Graph         graph.Config       `json:"graph"`
	Summarize     summarize.Config   `json:"summarize"`
	DirectoryPath string             `json:"directory_path,omitempty"`
	SystemPrompt  string             `json:"system_prompt,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults for all subsystems.
func DefaultConfig() Config {
	return Config{
		Agent:         config.DefaultAgentConfig(),
		Graph:         graph.DefaultConfig(),
		Summarize:     summarize.DefaultConfig(),
		DirectoryPath: "data/conversations.db",
		SystemPrompt:  defaultSystemPrompt,
	}
}

// Merge applies non-zero values from source into c, delegating to each
// subsystem's Merge method.
func (c *Config) Merge(source *Config) {
	c.Agent.Merge(&source.Agent)
	c.Graph.Merge(&source.Graph)
	c.Summarize.Merge(&source.Summarize)

	if source.DirectoryPath != "" {
		c.DirectoryPath = source.DirectoryPath
	}
	if source.SystemPrompt != "" {
		c.SystemPrompt = source.SystemPrompt
	}
}

// LoadConfig reads a JSON config file, merges it with defaults, and returns
// the resulting Config.
func LoadConfig(filename string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var loaded Config
	if err := json.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.Merge(&loaded)
	return &cfg, nil
}
