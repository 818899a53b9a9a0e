package summarize

// Config holds compaction parameters.
type Config struct {
	// Threshold is the message count above which a thread is compacted.
	// Exactly Threshold messages does not trigger compaction.
	Threshold int `json:"threshold,omitempty"`
	// MaxSummaryTokens bounds the summary the model is asked to produce.
	MaxSummaryTokens int `json:"max_summary_tokens,omitempty"`
}

// DefaultConfig returns the default compaction configuration.
func DefaultConfig() Config {
	return Config{
		Threshold:        100,
		MaxSummaryTokens: 500,
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.Threshold != 0 {
		c.Threshold = source.Threshold
	}
	if source.MaxSummaryTokens != 0 {
		c.MaxSummaryTokens = source.MaxSummaryTokens
	}
}
