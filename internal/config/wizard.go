package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to .askdoc.yml.
func RunWizard() (*Config, error) {
	fmt.Println("Welcome to askdoc! Let's configure your service.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Provider selection.
	providerPrompt := promptui.Select{
		Label: "Select LLM provider",
		Items: []string{"openai", "ollama"},
	}
	_, providerStr, err := providerPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("provider selection: %w", err)
	}
	cfg.Provider = ProviderType(providerStr)
	cfg.EmbeddingProvider = cfg.Provider

	// 2. Model.
	defaultModel := "gpt-4o-mini"
	if cfg.Provider == ProviderOllama {
		defaultModel = "llama3.1"
	}
	modelPrompt := promptui.Prompt{
		Label:   "Chat model",
		Default: defaultModel,
	}
	if cfg.Model, err = modelPrompt.Run(); err != nil {
		return nil, fmt.Errorf("model: %w", err)
	}

	// 3. Embedding model.
	defaultEmbedding := "text-embedding-3-small"
	if cfg.Provider == ProviderOllama {
		defaultEmbedding = "nomic-embed-text"
		cfg.EmbeddingDims = 768
	}
	embeddingPrompt := promptui.Prompt{
		Label:   "Embedding model",
		Default: defaultEmbedding,
	}
	if cfg.EmbeddingModel, err = embeddingPrompt.Run(); err != nil {
		return nil, fmt.Errorf("embedding model: %w", err)
	}

	// 4. Port.
	portPrompt := promptui.Prompt{
		Label:   "HTTP port",
		Default: strconv.Itoa(cfg.Port),
		Validate: func(s string) error {
			n, err := strconv.Atoi(s)
			if err != nil || n < 1 || n > 65535 {
				return fmt.Errorf("port must be a number between 1 and 65535")
			}
			return nil
		},
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("port: %w", err)
	}
	cfg.Port, _ = strconv.Atoi(portStr)

	// 5. Data directory.
	dataPrompt := promptui.Prompt{
		Label:   "Upload directory",
		Default: cfg.DataDir,
	}
	if cfg.DataDir, err = dataPrompt.Run(); err != nil {
		return nil, fmt.Errorf("data dir: %w", err)
	}

	// 6. Allowed upload patterns.
	patternPrompt := promptui.Prompt{
		Label:   "Allowed upload patterns (comma-separated globs)",
		Default: strings.Join(cfg.AllowedPatterns, ","),
	}
	patternStr, err := patternPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("allowed patterns: %w", err)
	}
	cfg.AllowedPatterns = splitAndTrim(patternStr)

	// 7. Optical pass for scanned PDFs.
	ocrPrompt := promptui.Select{
		Label: "Run OCR on scanned PDFs (requires pdftoppm and tesseract)",
		Items: []string{"yes", "no"},
	}
	ocrIdx, _, err := ocrPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("ocr selection: %w", err)
	}
	cfg.OCREnabled = ocrIdx == 0

	// Check for API key.
	if envVar := APIKeyEnvVar(cfg.Provider); envVar != "" {
		if os.Getenv(envVar) == "" {
			fmt.Printf("\nNote: Set %s in your environment before running askdoc serve.\n", envVar)
		}
	}

	configPath := ".askdoc.yml"
	if err := cfg.Save(configPath); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", configPath)
	return cfg, nil
}

// splitAndTrim splits a comma-separated string and trims whitespace.
func splitAndTrim(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
