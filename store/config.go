package store

import "fmt"

// Backend identifiers accepted by Config.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Config holds store initialization parameters.
type Config struct {
	Backend string `json:"backend,omitempty"` // "file" or "sqlite"; empty disables persistence.
	Path    string `json:"path,omitempty"`    // Root directory (file) or database path (sqlite).
}

// DefaultConfig returns the default store configuration (disabled).
func DefaultConfig() Config {
	return Config{}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.Backend != "" {
		c.Backend = source.Backend
	}
	if source.Path != "" {
		c.Path = source.Path
	}
}

// New creates a Store from configuration. Returns a nil Store when Path is
// empty, indicating persistence is disabled.
func New(cfg *Config) (Store, error) {
	if cfg.Path == "" {
		return nil, nil
	}

	switch cfg.Backend {
	case BackendSQLite:
		return NewSQLiteStore(cfg.Path)
	case BackendFile, "":
		return NewFileStore(cfg.Path), nil
	default:
		return nil, fmt.Errorf("unknown store backend: %s", cfg.Backend)
	}
}
