// Package config handles term-ai configuration loading.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Defaults applied when neither flags, environment, nor the config file
// provide a value.
const (
	DefaultModel    = "llama3.2"
	DefaultEndpoint = "http://localhost:11434"

	// DefaultMaxResults is the number of search results handed to the model
	// per web_search invocation.
	DefaultMaxResults = 5
)

// Environment variable names honored as lower-priority defaults.
const (
	EnvModel    = "TERM_AI_MODEL"
	EnvEndpoint = "TERM_AI_ENDPOINT"
	EnvBraveKey = "BRAVE_API_KEY"
)

// Config holds all term-ai configuration.
type Config struct {
	Model    string       `yaml:"model"`
	Endpoint string       `yaml:"endpoint"`
	LogLevel string       `yaml:"log_level"`
	Search   SearchConfig `yaml:"search"`
}

// SearchConfig defines web search settings.
type SearchConfig struct {
	// Provider selects the search backend ("duckduckgo" or "brave").
	// Empty means auto-detect: brave when an API key is present,
	// duckduckgo otherwise.
	Provider   string      `yaml:"provider"`
	Brave      BraveConfig `yaml:"brave"`
	MaxResults int         `yaml:"max_results"`
}

// BraveConfig holds credentials for the Brave Search API.
type BraveConfig struct {
	APIKey string `yaml:"api_key"`
}

// Configured reports whether a Brave API key is set.
func (c BraveConfig) Configured() bool {
	return c.APIKey != ""
}

// DefaultSearchPaths returns the config file search order.
// An explicit path (from --config) is checked first by FindConfig.
// Then: ./term-ai.yaml, ~/.config/term-ai/config.yaml.
func DefaultSearchPaths() []string {
	paths := []string{"term-ai.yaml"}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "term-ai", "config.yaml"))
	}

	return paths
}

// FindConfig locates a config file. If explicit is non-empty, it must exist.
// Otherwise, searches DefaultSearchPaths and returns the first that exists,
// or an empty path; a missing config file is not an error for a CLI with
// sensible defaults.
func FindConfig(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	for _, p := range DefaultSearchPaths() {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	return "", nil
}

// Load reads configuration from a YAML file. Values may reference
// environment variables with $VAR or ${VAR} syntax; they are expanded
// before parsing so credentials can stay out of the file itself.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg, nil
}

// Default returns a configuration with built-in defaults.
func Default() *Config {
	return &Config{
		Model:    DefaultModel,
		Endpoint: DefaultEndpoint,
		Search: SearchConfig{
			MaxResults: DefaultMaxResults,
		},
	}
}
