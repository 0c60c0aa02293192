package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/mohsalah/askdoc/internal/cache"
	"github.com/mohsalah/askdoc/internal/chunker"
	"github.com/mohsalah/askdoc/internal/config"
	"github.com/mohsalah/askdoc/internal/crypto"
	"github.com/mohsalah/askdoc/internal/db"
	"github.com/mohsalah/askdoc/internal/embeddings"
	"github.com/mohsalah/askdoc/internal/extract"
	"github.com/mohsalah/askdoc/internal/llm"
	"github.com/mohsalah/askdoc/internal/pipeline"
	"github.com/mohsalah/askdoc/internal/vectorstore"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `askdoc init` to create a config file", err)
	}
	return cfg, nil
}

// createEmbedderFromConfig creates an embeddings.Embedder based on config.
func createEmbedderFromConfig(cfg *config.Config) (embeddings.Embedder, error) {
	switch cfg.EmbeddingProvider {
	case config.ProviderOllama:
		return embeddings.NewOllamaEmbedder(cfg.EmbeddingModel, cfg.EmbeddingDims, cfg.EmbeddingBaseURL), nil
	default:
		apiKey := os.Getenv(config.APIKeyEnvVar(config.ProviderOpenAI))
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is required for OpenAI embeddings")
		}
		return embeddings.NewOpenAIEmbedder(apiKey, embeddings.OpenAIModel(cfg.EmbeddingModel), cfg.EmbeddingBaseURL), nil
	}
}

// createLLMProviderFromConfig creates an LLM provider based on config settings.
func createLLMProviderFromConfig(cfg *config.Config) (llm.Provider, error) {
	switch cfg.Provider {
	case config.ProviderOllama:
		return llm.NewOllamaProvider(cfg.Model, cfg.BaseURL), nil
	default:
		apiKey := os.Getenv(config.APIKeyEnvVar(config.ProviderOpenAI))
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is required")
		}
		return llm.NewOpenAIProvider(apiKey, cfg.Model, cfg.BaseURL), nil
	}
}

// buildOrchestrator wires the full pipeline from config. The returned
// registry must be closed by the caller.
func buildOrchestrator(cfg *config.Config) (*pipeline.Orchestrator, *db.DB, error) {
	key, err := crypto.LoadOrGenerateKey(cfg.KeyFile)
	if err != nil {
		return nil, nil, fmt.Errorf("loading encryption key: %w", err)
	}
	cryptoStore, err := crypto.NewStore(key)
	if err != nil {
		return nil, nil, fmt.Errorf("creating crypto store: %w", err)
	}

	embedder, err := createEmbedderFromConfig(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("creating embedder: %w", err)
	}
	provider, err := createLLMProviderFromConfig(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("creating LLM provider: %w", err)
	}

	registry, err := db.Open(cfg.DatabaseFile)
	if err != nil {
		return nil, nil, fmt.Errorf("opening registry: %w", err)
	}

	if err := extract.CheckAvailable(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\nPDF uploads will fail until it is installed.\n%s\n",
			err, extract.InstallInstructions())
	}

	o := pipeline.New(pipeline.Options{
		DataDir:         cfg.DataDir,
		Crypto:          cryptoStore,
		PDF:             extract.NewPDF(cfg.OCREnabled),
		Splitter:        chunker.New(cfg.ChunkSize, cfg.ChunkOverlap),
		Cache:           cache.New(),
		Vectors:         vectorstore.New(cfg.VectorDir, embedder),
		Registry:        registry,
		LLM:             provider,
		TopK:            cfg.TopK,
		SplitsTTL:       time.Duration(cfg.SplitsTTL) * time.Second,
		RetrieverTTL:    time.Duration(cfg.RetrieverTTL) * time.Second,
		AllowedPatterns: cfg.AllowedPatterns,
	})
	return o, registry, nil
}
