// Package file loads tool configuration from a TOML file with environment
// variable overrides.
package file

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/docsage-ai/docsage-cli/internal/logger"
)

// Provider names for embedding and generation backends.
const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

// Config is the full tool configuration.
type Config struct {
	// Provider selects the embedding/generation backend: "openai" or
	// "ollama". Empty means pick by credentials at load time.
	Provider string `toml:"provider"`

	// DataDir is where the knowledge database lives.
	// Defaults to ~/.docsage/data.
	DataDir string `toml:"data_dir"`

	Crawler   CrawlerConfig   `toml:"crawler"`
	Ingestion IngestionConfig `toml:"ingestion"`
	OpenAI    OpenAIConfig    `toml:"openai"`
	Ollama    OllamaConfig    `toml:"ollama"`
}

// CrawlerConfig configures the documentation crawler.
type CrawlerConfig struct {
	// MaxDepth bounds recursive crawling (default: 3).
	MaxDepth int `toml:"max_depth"`

	// RequestsPerSecond throttles outgoing fetches (default: 2).
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// IngestionConfig configures text chunking.
type IngestionConfig struct {
	// ChunkSize is the character threshold above which inputs are split
	// (default: 512).
	ChunkSize int `toml:"chunk_size"`

	// Overlap is the number of characters shared between consecutive
	// chunks (default: 20).
	Overlap int `toml:"overlap"`
}

// OpenAIConfig configures the remote provider.
type OpenAIConfig struct {
	// APIKey falls back to the OPENAI_API_KEY environment variable.
	APIKey string `toml:"api_key"`

	BaseURL        string `toml:"base_url"`
	EmbeddingModel string `toml:"embedding_model"`
	ChatModel      string `toml:"chat_model"`
}

// OllamaConfig configures the local provider.
type OllamaConfig struct {
	BaseURL        string `toml:"base_url"`
	EmbeddingModel string `toml:"embedding_model"`
}

// Load reads configuration from the given path. A missing file is not an
// error; defaults and environment variables apply either way. If path is
// empty, ~/.docsage/config.toml is used.
func Load(path string) (*Config, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		path = filepath.Join(home, ".docsage", "config.toml")
	}

	cfg := &Config{}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// No config file yet - defaults apply
	default:
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overlays environment variables onto file values.
func (c *Config) applyEnv() {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" && c.OpenAI.APIKey == "" {
		c.OpenAI.APIKey = key
	}
	if url := os.Getenv("OLLAMA_HOST"); url != "" && c.Ollama.BaseURL == "" {
		c.Ollama.BaseURL = url
	}
}

// applyDefaults fills unset values. Provider selection is explicit and
// logged: an OpenAI key means the remote provider, otherwise local Ollama.
func (c *Config) applyDefaults() {
	if c.Provider == "" {
		if c.OpenAI.APIKey != "" {
			c.Provider = ProviderOpenAI
		} else {
			c.Provider = ProviderOllama
		}
		logger.Info("No provider configured, selected %q", c.Provider)
	}
	if c.Crawler.MaxDepth == 0 {
		c.Crawler.MaxDepth = 3
	}
	if c.Crawler.RequestsPerSecond == 0 {
		c.Crawler.RequestsPerSecond = 2
	}
	if c.Ingestion.ChunkSize == 0 {
		c.Ingestion.ChunkSize = 512
	}
	if c.Ingestion.Overlap == 0 {
		c.Ingestion.Overlap = 20
	}
}

// validate rejects configurations the runtime cannot honour.
func (c *Config) validate() error {
	switch c.Provider {
	case ProviderOpenAI:
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("provider %q requires an API key (set OPENAI_API_KEY or openai.api_key)", c.Provider)
		}
	case ProviderOllama:
		// Local provider needs no credentials
	default:
		return fmt.Errorf("unknown provider %q (want %q or %q)", c.Provider, ProviderOpenAI, ProviderOllama)
	}

	if c.Ingestion.Overlap >= c.Ingestion.ChunkSize {
		return fmt.Errorf("ingestion overlap %d must be smaller than chunk size %d",
			c.Ingestion.Overlap, c.Ingestion.ChunkSize)
	}
	return nil
}

// Save writes the configuration to the given path with restricted
// permissions, creating parent directories as needed.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}

	return os.WriteFile(path, data, 0600)
}
