package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	raw := `{
		"basic_config": {"server_address": ":9000", "allowed_models": ["gemini-2.0-flash"]},
		"providers": {
			"gemini": {"api_key": "g-key", "model": "gemini-2.0-flash"},
			"tavily": {"api_key": "t-key"}
		}
	}`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BasicConfig.ServerAddress != ":9000" {
		t.Fatalf("server address = %q", cfg.BasicConfig.ServerAddress)
	}
	if cfg.Provider("gemini").APIKey != "g-key" {
		t.Fatalf("gemini key = %q", cfg.Provider("gemini").APIKey)
	}
	if cfg.Provider("missing").APIKey != "" {
		t.Fatal("absent provider must be zero-valued")
	}
}

func TestLoadMissingFileUsesEnv(t *testing.T) {
	t.Setenv("TAVILY_API_KEY", "env-key")
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.json"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Provider("tavily").APIKey != "env-key" {
		t.Fatalf("env fallback not applied: %q", cfg.Provider("tavily").APIKey)
	}
}

func TestEnvDoesNotOverrideFile(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "env-key")
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	raw := `{"providers": {"gemini": {"api_key": "file-key"}}}`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Provider("gemini").APIKey != "file-key" {
		t.Fatalf("file key must win, got %q", cfg.Provider("gemini").APIKey)
	}
}
