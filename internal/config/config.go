package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ChunkerConfig configures how documents are split into chunks.
type ChunkerConfig struct {
	Size    int `yaml:"size" validate:"gte=0"`
	Overlap int `yaml:"overlap" validate:"gte=0"`
}

// OpenAIEmbedderConfig holds configuration for the OpenAI-compatible
// embeddings client.
type OpenAIEmbedderConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs" validate:"gte=0"`
}

// EmbedderConfig selects and configures the embedding provider.
type EmbedderConfig struct {
	Type      string                `yaml:"type" validate:"omitempty,oneof=hash openai"`
	Dimension int                   `yaml:"dimension" validate:"gte=0"`
	OpenAI    *OpenAIEmbedderConfig `yaml:"openai,omitempty"`
}

// QdrantConfig contains connection details for a Qdrant vector index.
type QdrantConfig struct {
	URL        string `yaml:"url"`
	APIKey     string `yaml:"api_key"`
	Collection string `yaml:"collection"`
}

// VectorStoreConfig selects and configures the vector index implementation.
type VectorStoreConfig struct {
	Type   string        `yaml:"type" validate:"omitempty,oneof=memory qdrant"`
	Qdrant *QdrantConfig `yaml:"qdrant,omitempty"`
}

// RetrieverConfig configures top-k retrieval.
type RetrieverConfig struct {
	TopK int `yaml:"top_k" validate:"gte=0"`
}

// GeneratorConfig configures the chat-completion generation client.
type GeneratorConfig struct {
	BaseURL     string  `yaml:"base_url"`
	APIKeyEnv   string  `yaml:"api_key_env"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature" validate:"gte=0,lte=2"`
	MaxTokens   int     `yaml:"max_tokens" validate:"gte=0"`
	TimeoutSecs int     `yaml:"timeout_secs" validate:"gte=0"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Chunker     ChunkerConfig     `yaml:"chunker"`
	Embedder    EmbedderConfig    `yaml:"embedder"`
	VectorStore VectorStoreConfig `yaml:"vector_store"`
	Retriever   RetrieverConfig   `yaml:"retriever"`
	Generator   GeneratorConfig   `yaml:"generator"`
}

var validate = validator.New()

// Load reads a config from a specified path. If the file does not exist,
// returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/taxrag/config.yaml.
// If neither exists, it writes defaults to ~/.config/taxrag/config.yaml and
// returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "taxrag", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{
		Chunker:     ChunkerConfig{Size: 1000, Overlap: 200},
		Embedder:    EmbedderConfig{Type: "hash", Dimension: 256},
		VectorStore: VectorStoreConfig{Type: "memory"},
		Retriever:   RetrieverConfig{TopK: 5},
	}
	applyConfigDefaults(cfg)
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Chunker.Size == 0 {
		cfg.Chunker.Size = 1000
	}
	if cfg.Chunker.Overlap == 0 {
		cfg.Chunker.Overlap = 200
	}
	if cfg.Embedder.Dimension == 0 {
		cfg.Embedder.Dimension = 256
	}
	if cfg.Embedder.Type == "openai" && cfg.Embedder.OpenAI != nil {
		if cfg.Embedder.OpenAI.BaseURL == "" {
			cfg.Embedder.OpenAI.BaseURL = "https://api.openai.com/v1"
		}
		if cfg.Embedder.OpenAI.APIKeyEnv == "" {
			cfg.Embedder.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
		}
		if cfg.Embedder.OpenAI.Model == "" {
			cfg.Embedder.OpenAI.Model = "text-embedding-3-small"
		}
		if cfg.Embedder.OpenAI.TimeoutSecs == 0 {
			cfg.Embedder.OpenAI.TimeoutSecs = 30
		}
	}
	if cfg.VectorStore.Type == "qdrant" && cfg.VectorStore.Qdrant != nil {
		if cfg.VectorStore.Qdrant.Collection == "" {
			cfg.VectorStore.Qdrant.Collection = "tax_documents"
		}
	}
	if cfg.Retriever.TopK == 0 {
		cfg.Retriever.TopK = 5
	}
	if cfg.Generator.BaseURL == "" {
		cfg.Generator.BaseURL = "https://api.groq.com/openai/v1"
	}
	if cfg.Generator.APIKeyEnv == "" {
		cfg.Generator.APIKeyEnv = "GROQ_API_KEY"
	}
	if cfg.Generator.Model == "" {
		cfg.Generator.Model = "llama-3.3-70b-versatile"
	}
	if cfg.Generator.Temperature == 0 {
		cfg.Generator.Temperature = 0.3
	}
	if cfg.Generator.MaxTokens == 0 {
		cfg.Generator.MaxTokens = 2000
	}
	if cfg.Generator.TimeoutSecs == 0 {
		cfg.Generator.TimeoutSecs = 30
	}
}
