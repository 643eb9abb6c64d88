// Package cli implements the docsage command-line interface.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	configfile "github.com/docsage-ai/docsage-cli/internal/adapters/driven/config/file"
	ollamaembed "github.com/docsage-ai/docsage-cli/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/docsage-ai/docsage-cli/internal/adapters/driven/embedding/openai"
	"github.com/docsage-ai/docsage-cli/internal/adapters/driven/llm/disabled"
	openaillm "github.com/docsage-ai/docsage-cli/internal/adapters/driven/llm/openai"
	"github.com/docsage-ai/docsage-cli/internal/adapters/driven/storage/memory"
	"github.com/docsage-ai/docsage-cli/internal/adapters/driven/storage/sqlite"
	"github.com/docsage-ai/docsage-cli/internal/chunker"
	"github.com/docsage-ai/docsage-cli/internal/core/domain"
	"github.com/docsage-ai/docsage-cli/internal/core/ports/driven"
	"github.com/docsage-ai/docsage-cli/internal/core/services"
	"github.com/docsage-ai/docsage-cli/internal/logger"
)

// version is set from main via Execute.
var version = "dev"

// Persistent flags.
var (
	flagVerbose bool
	flagConfig  string
	flagDataDir string
)

// memoryDataDir selects the in-memory store instead of SQLite on disk.
const memoryDataDir = ":memory:"

// Wired services, built once per invocation by initServices.
var (
	cfg               *configfile.Config
	store             driven.KnowledgeStore
	embeddingService  driven.EmbeddingService
	generationService driven.GenerationService
	runtime           *services.AgentRuntime
)

var rootCmd = &cobra.Command{
	Use:   "docsage",
	Short: "Ask questions about documentation from your terminal",
	Long: `docsage crawls documentation sites, stores their content with vector
embeddings in a local SQLite database, and answers questions about them
using retrieval-augmented generation.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logger.SetVerbose(flagVerbose)

		// version and help need no services
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}
		return initServices(cmd)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file (default ~/.docsage/config.toml)")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", `path to data directory (default ~/.docsage/data, ":memory:" for ephemeral)`)
}

// Execute runs the CLI with the given version string.
func Execute(v string) error {
	version = v
	defer closeServices()

	if err := rootCmd.Execute(); err != nil {
		return fmt.Errorf("docsage: %w", err)
	}
	return nil
}

// initServices loads configuration and wires the runtime.
func initServices(cmd *cobra.Command) error {
	var err error
	cfg, err = configfile.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	dataDir := flagDataDir
	if dataDir == "" {
		dataDir = cfg.DataDir
	}

	store, err = openKnowledgeStore(dataDir)
	if err != nil {
		return fmt.Errorf("opening knowledge store: %w", err)
	}

	embeddingService, err = buildEmbeddingService(cfg)
	if err != nil {
		return err
	}
	generationService = buildGenerationService(cfg)

	splitter := chunker.New(
		chunker.WithChunkSize(cfg.Ingestion.ChunkSize),
		chunker.WithOverlap(cfg.Ingestion.Overlap),
	)
	ingestor := services.NewIngestionService(embeddingService, splitter)

	runtime = services.NewAgentRuntime(store, embeddingService, generationService, ingestor)
	if err := runtime.Initialize(cmd.Context()); err != nil {
		return fmt.Errorf("initialising runtime: %w", err)
	}

	location := "in-memory"
	if s, ok := store.(*sqlite.Store); ok {
		location = s.Path()
	}
	logger.Debug("Services ready: provider=%s, db=%s", cfg.Provider, location)
	return nil
}

// openKnowledgeStore selects the storage backend for a data directory.
// The ":memory:" sentinel keeps knowledge in process memory for
// throwaway sessions; anything else opens SQLite on disk.
func openKnowledgeStore(dataDir string) (driven.KnowledgeStore, error) {
	if dataDir == memoryDataDir {
		return memory.NewStore(), nil
	}
	return sqlite.NewStore(dataDir)
}

// buildEmbeddingService selects the embedding backend per configuration.
// Construction failures carry domain.ErrEmbeddingUnavailable so callers
// can tell a missing backend from a transient one.
func buildEmbeddingService(cfg *configfile.Config) (driven.EmbeddingService, error) {
	switch cfg.Provider {
	case configfile.ProviderOpenAI:
		svc, err := openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:  cfg.OpenAI.APIKey,
			BaseURL: cfg.OpenAI.BaseURL,
			Model:   cfg.OpenAI.EmbeddingModel,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrEmbeddingUnavailable, err)
		}
		return svc, nil
	case configfile.ProviderOllama:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL: cfg.Ollama.BaseURL,
			Model:   cfg.Ollama.EmbeddingModel,
		}), nil
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", domain.ErrEmbeddingUnavailable, cfg.Provider)
	}
}

// buildGenerationService uses the OpenAI chat API whenever a key is
// available; otherwise generation is disabled and callers degrade.
func buildGenerationService(cfg *configfile.Config) driven.GenerationService {
	if cfg.OpenAI.APIKey == "" {
		logger.Info("No generation credentials, answers disabled")
		return disabled.NewGenerationService()
	}

	svc, err := openaillm.NewGenerationService(openaillm.Config{
		APIKey:  cfg.OpenAI.APIKey,
		BaseURL: cfg.OpenAI.BaseURL,
		Model:   cfg.OpenAI.ChatModel,
	})
	if err != nil {
		logger.Warn("Generation service unavailable: %v", err)
		return disabled.NewGenerationService()
	}
	return svc
}

// closeServices releases wired resources.
func closeServices() {
	if embeddingService != nil {
		embeddingService.Close() //nolint:errcheck
	}
	if generationService != nil {
		generationService.Close() //nolint:errcheck
	}
	if store != nil {
		store.Close() //nolint:errcheck
	}
}
