package controller_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/tailored-agentic-units/converse/controller"
)

func TestDefaultConfig(t *testing.T) {
	cfg := controller.DefaultConfig()

	if cfg.Engine.BaseURL == "" {
		t.Error("got empty Engine.BaseURL, want a default server address")
	}

	if cfg.Store.Path != "" {
		t.Errorf("got Store.Path %q, want empty (persistence disabled by default)", cfg.Store.Path)
	}
}

func TestConfig_Merge(t *testing.T) {
	cfg := controller.DefaultConfig()

	source := &controller.Config{}
	source.Engine.BaseURL = "http://10.0.0.5:9090/v1"
	source.Store.Path = "/tmp/converse"

	cfg.Merge(source)

	if cfg.Engine.BaseURL != "http://10.0.0.5:9090/v1" {
		t.Errorf("got Engine.BaseURL %q, want merged value", cfg.Engine.BaseURL)
	}

	if cfg.Store.Path != "/tmp/converse" {
		t.Errorf("got Store.Path %q, want %q", cfg.Store.Path, "/tmp/converse")
	}
}

func TestConfig_Merge_ZeroValuesPreserveDefaults(t *testing.T) {
	cfg := controller.DefaultConfig()
	original := cfg.Engine.StreamBuffer

	source := &controller.Config{} // All zero values

	cfg.Merge(source)

	if cfg.Engine.StreamBuffer != original {
		t.Errorf("got Engine.StreamBuffer %d, want %d (preserved default)", cfg.Engine.StreamBuffer, original)
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.json")

	content := `{
		"engine": {
			"base_url": "http://127.0.0.1:11434/v1"
		},
		"store": {
			"backend": "sqlite",
			"path": "/tmp/converse.db"
		}
	}`

	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg, err := controller.LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Engine.BaseURL != "http://127.0.0.1:11434/v1" {
		t.Errorf("got Engine.BaseURL %q, want loaded value", cfg.Engine.BaseURL)
	}

	if cfg.Store.Backend != "sqlite" {
		t.Errorf("got Store.Backend %q, want %q", cfg.Store.Backend, "sqlite")
	}

	if cfg.Engine.StreamBuffer == 0 {
		t.Error("got StreamBuffer 0, want default preserved through merge")
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := controller.LoadConfig("/nonexistent/config.json")
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
}
