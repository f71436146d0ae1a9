package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents runtime configuration for the service. It is read once
// at startup and treated as immutable afterwards.
type Config struct {
	BasicConfig BasicConfig               `json:"basic_config"`
	Providers   map[string]ProviderConfig `json:"providers"`
}

type ProviderConfig struct {
	BaseURL string `json:"base_url"`
	Model   string `json:"model"`
	APIKey  string `json:"api_key"`
}

type BasicConfig struct {
	ServerAddress  string   `json:"server_address"`
	AllowedModels  []string `json:"allowed_models"`
	HistoryLimit   int      `json:"history_limit"`
	RequestTimeout int      `json:"request_timeout_seconds"`
}

// credential env fallbacks per provider
var envKeys = map[string]string{
	"gemini":     "GEMINI_API_KEY",
	"openai":     "OPENAI_API_KEY",
	"tavily":     "TAVILY_API_KEY",
	"perplexity": "PERPLEXITY_API_KEY",
}

// Load reads configuration from the provided path (defaults to config.json).
// A missing file is not an error: the service can run on environment
// credentials alone.
func Load(path string) (*Config, error) {
	cfg := &Config{Providers: make(map[string]ProviderConfig)}

	if path == "" {
		path = "config.json"
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}

	file, err := os.Open(absPath)
	switch {
	case err == nil:
		defer file.Close()
		if err := json.NewDecoder(file).Decode(cfg); err != nil {
			return nil, fmt.Errorf("decode config: %w", err)
		}
		if cfg.Providers == nil {
			cfg.Providers = make(map[string]ProviderConfig)
		}
	case os.IsNotExist(err):
		// env-only configuration
	default:
		return nil, fmt.Errorf("open config %s: %w", absPath, err)
	}

	for name, envKey := range envKeys {
		prov := cfg.Providers[name]
		if prov.APIKey == "" {
			if v := os.Getenv(envKey); v != "" {
				prov.APIKey = v
				cfg.Providers[name] = prov
			}
		}
	}
	return cfg, nil
}

// Provider returns the named provider block, zero-valued when absent.
func (c *Config) Provider(name string) ProviderConfig {
	return c.Providers[name]
}
