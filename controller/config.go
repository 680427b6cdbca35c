package controller

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tailored-agentic-units/converse/engine"
	"github.com/tailored-agentic-units/converse/session"
	"github.com/tailored-agentic-units/converse/store"
)

// Config holds initialization parameters for all controller subsystems.
// Each section delegates to that subsystem's config-driven constructor.
// User-tunable session settings are not configured here; they live in the
// persistence backend and are loaded by New.
type Config struct {
	Engine  engine.Config  `json:"engine"`
	Session session.Config `json:"session"`
	Store   store.Config   `json:"store"`
}

// DefaultConfig returns a Config with sensible defaults for all subsystems.
func DefaultConfig() Config {
	return Config{
		Engine:  engine.DefaultConfig(),
		Session: session.DefaultConfig(),
		Store:   store.DefaultConfig(),
	}
}

// Merge applies non-zero values from source into c, delegating to each
// subsystem's Merge method.
func (c *Config) Merge(source *Config) {
	c.Engine.Merge(&source.Engine)
	c.Session.Merge(&source.Session)
	c.Store.Merge(&source.Store)
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
