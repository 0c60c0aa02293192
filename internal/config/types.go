package config

// ProviderType identifies an external capability provider.
type ProviderType string

const (
	ProviderOpenAI ProviderType = "openai"
	ProviderOllama ProviderType = "ollama"
)

// Config is the top-level askdoc configuration, corresponding to
// .askdoc.yml.
type Config struct {
	Port int `yaml:"port" koanf:"port"`

	// Storage layout, relative to the working directory.
	DataDir      string `yaml:"data_dir" koanf:"data_dir"`
	VectorDir    string `yaml:"vector_dir" koanf:"vector_dir"`
	KeyFile      string `yaml:"key_file" koanf:"key_file"`
	DatabaseFile string `yaml:"database_file" koanf:"database_file"`

	// Chunking and retrieval.
	ChunkSize    int `yaml:"chunk_size" koanf:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap" koanf:"chunk_overlap"`
	TopK         int `yaml:"top_k" koanf:"top_k"`

	// Cache expiry, seconds.
	SplitsTTL    int `yaml:"splits_ttl" koanf:"splits_ttl"`
	RetrieverTTL int `yaml:"retriever_ttl" koanf:"retriever_ttl"`

	// Upload validation: doublestar patterns matched against filenames.
	AllowedPatterns []string `yaml:"allowed_patterns" koanf:"allowed_patterns"`

	// Generative provider.
	Provider ProviderType `yaml:"provider" koanf:"provider"`
	Model    string       `yaml:"model" koanf:"model"`
	BaseURL  string       `yaml:"base_url" koanf:"base_url"`

	// Embedding provider.
	EmbeddingProvider ProviderType `yaml:"embedding_provider" koanf:"embedding_provider"`
	EmbeddingModel    string       `yaml:"embedding_model" koanf:"embedding_model"`
	EmbeddingBaseURL  string       `yaml:"embedding_base_url" koanf:"embedding_base_url"`
	EmbeddingDims     int          `yaml:"embedding_dims" koanf:"embedding_dims"`

	// Optical pass toggle for deployments without OCR tooling.
	OCREnabled bool `yaml:"ocr_enabled" koanf:"ocr_enabled"`
}
