package config

// DefaultConfig returns a Config with sensible defaults. The port and
// chunking parameters mirror the service's original deployment.
func DefaultConfig() *Config {
	return &Config{
		Port:              9069,
		DataDir:           "uploads",
		VectorDir:         "vectorstores",
		KeyFile:           "encryption_key.key",
		DatabaseFile:      "askdoc.db",
		ChunkSize:         1000,
		ChunkOverlap:      0,
		TopK:              5,
		SplitsTTL:         3000,
		RetrieverTTL:      3600,
		AllowedPatterns:   []string{"*.pdf", "*.txt"},
		Provider:          ProviderOpenAI,
		Model:             "gpt-4o-mini",
		EmbeddingProvider: ProviderOpenAI,
		EmbeddingModel:    "text-embedding-3-small",
		EmbeddingDims:     1536,
		OCREnabled:        true,
	}
}
