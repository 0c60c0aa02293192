// Package config loads the askdoc configuration from defaults, a YAML
// file, and ASKDOC_* environment variable overrides, in that order.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (ASKDOC_*).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	// Overlay environment variables: ASKDOC_PORT -> port, etc.
	if err := k.Load(env.Provider("ASKDOC_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "ASKDOC_"))
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// validProviders is the set of recognized provider values.
var validProviders = map[ProviderType]bool{
	ProviderOpenAI: true,
	ProviderOllama: true,
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535")
	}

	if !validProviders[c.Provider] {
		return fmt.Errorf("invalid provider %q: must be one of openai, ollama", c.Provider)
	}
	if c.Model == "" {
		return fmt.Errorf("model is required")
	}

	if c.EmbeddingProvider != "" && !validProviders[c.EmbeddingProvider] {
		return fmt.Errorf("invalid embedding_provider %q", c.EmbeddingProvider)
	}
	if c.EmbeddingModel == "" {
		return fmt.Errorf("embedding_model is required")
	}

	if c.DataDir == "" || c.VectorDir == "" {
		return fmt.Errorf("data_dir and vector_dir are required")
	}
	if c.KeyFile == "" {
		return fmt.Errorf("key_file is required")
	}

	if c.ChunkSize <= 0 {
		return fmt.Errorf("chunk_size must be positive")
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("chunk_overlap must be non-negative and smaller than chunk_size")
	}

	if c.TopK <= 0 {
		return fmt.Errorf("top_k must be positive")
	}
	if c.SplitsTTL < 0 || c.RetrieverTTL < 0 {
		return fmt.Errorf("cache ttls must be non-negative")
	}

	if len(c.AllowedPatterns) == 0 {
		return fmt.Errorf("allowed_patterns must not be empty")
	}

	return nil
}

// APIKeyEnvVar returns the conventional environment variable name for
// the API key of the given provider. Ollama needs none.
func APIKeyEnvVar(provider ProviderType) string {
	if provider == ProviderOpenAI {
		return "OPENAI_API_KEY"
	}
	return ""
}
