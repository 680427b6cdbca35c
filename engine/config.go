package engine

const (
	defaultBaseURL      = "http://127.0.0.1:8080/v1"
	defaultStreamBuffer = 64
)

// Config holds engine client initialization parameters.
type Config struct {
	BaseURL      string `json:"base_url,omitempty"`      // OpenAI-compatible server root, e.g. http://127.0.0.1:8080/v1.
	APIKey       string `json:"api_key,omitempty"`       // Optional bearer token; local servers usually need none.
	StreamBuffer int    `json:"stream_buffer,omitempty"` // Chunk buffer between producer and consumer.
}

// DefaultConfig returns the default engine configuration, pointed at a
// llama.cpp-style server on localhost.
func DefaultConfig() Config {
	return Config{
		BaseURL:      defaultBaseURL,
		StreamBuffer: defaultStreamBuffer,
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.BaseURL != "" {
		c.BaseURL = source.BaseURL
	}
	if source.APIKey != "" {
		c.APIKey = source.APIKey
	}
	if source.StreamBuffer > 0 {
		c.StreamBuffer = source.StreamBuffer
	}
}

// New creates a Loader from configuration.
func New(cfg *Config) (Loader, error) {
	return NewServerLoader(*cfg), nil
}
