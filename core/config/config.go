// Package config holds the model provider configuration section shared by the
// chat agent and the summarizer.
package config

import (
	"fmt"
	"os"
)

const (
	defaultModel       = "gpt-4o-mini"
	defaultTemperature = 0.5
	defaultBaseURL     = "https://api.openai.com/v1"
	defaultTimeoutSecs = 60
)

// AgentConfig holds initialization parameters for the model provider.
// The API key is never read from the config file; it comes from the
// OPENAI_API_KEY environment variable via ApplyEnv.
type AgentConfig struct {
	Model       string  `json:"model,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
	BaseURL     string  `json:"base_url,omitempty"`
	TimeoutSecs int     `json:"timeout_seconds,omitempty"`
	APIKey      string  `json:"-"`
}

// DefaultAgentConfig returns an AgentConfig with sensible defaults.
func DefaultAgentConfig() AgentConfig {
	return AgentConfig{
		Model:       defaultModel,
		Temperature: defaultTemperature,
		BaseURL:     defaultBaseURL,
		TimeoutSecs: defaultTimeoutSecs,
	}
}

// Merge applies non-zero values from source into c.
func (c *AgentConfig) Merge(source *AgentConfig) {
	if source.Model != "" {
		c.Model = source.Model
	}
	if source.Temperature != 0 {
		c.Temperature = source.Temperature
	}
	if source.BaseURL != "" {
		c.BaseURL = source.BaseURL
	}
	if source.TimeoutSecs > 0 {
		c.TimeoutSecs = source.TimeoutSecs
	}
	if source.APIKey != "" {
		c.APIKey = source.APIKey
	}
}

// ApplyEnv overlays environment variables onto c. OPENAI_API_KEY is the only
// source for the API key; MODEL_NAME and TEMPERATURE mirror the variables the
// assistant has always honored.
func (c *AgentConfig) ApplyEnv() error {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		c.APIKey = key
	}
	if model := os.Getenv("MODEL_NAME"); model != "" {
		c.Model = model
	}
	if temp := os.Getenv("TEMPERATURE"); temp != "" {
		var parsed float64
		if _, err := fmt.Sscanf(temp, "%g", &parsed); err != nil {
			return fmt.Errorf("invalid TEMPERATURE %q: %w", temp, err)
		}
		c.Temperature = parsed
	}
	return nil
}

// Validate checks the configuration for fatal startup errors.
func (c *AgentConfig) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY not found")
	}
	if c.Model == "" {
		return fmt.Errorf("model name is empty")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature %g out of range [0, 2]", c.Temperature)
	}
	return nil
}
