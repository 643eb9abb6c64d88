package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/docsage-ai/docsage-cli/internal/core/domain"
	"github.com/docsage-ai/docsage-cli/internal/core/ports/driven"
	"github.com/docsage-ai/docsage-cli/internal/core/ports/driving"
	"github.com/docsage-ai/docsage-cli/internal/logger"
)

// Ensure AgentRuntime implements the interface.
var _ driving.AgentRuntime = (*AgentRuntime)(nil)

// Retrieval and generation parameters.
const (
	// retrievalTopK is how many documents are pulled per query.
	retrievalTopK = 20

	// maxContextLen caps the retrieval context when summarisation fails
	// and raw truncation has to stand in.
	maxContextLen = 5000

	// generateAttempts is the number of generation tries before giving up.
	generateAttempts = 5

	// initialBackoff is the delay before the second attempt; it doubles
	// each retry.
	initialBackoff = time.Second
)

// User-facing degradation messages. GenerateResponse never surfaces raw
// errors to the caller.
const (
	malformedQueryMessage = "I couldn't make sense of that question. Could you rephrase it?"
	apologyMessage        = "I'm sorry, I wasn't able to generate a response right now. Please try again in a moment."
)

// responsePrompt assembles retrieved context, recent conversation and the
// user query into one generation prompt.
const responsePrompt = `You are a helpful assistant answering questions about a documentation corpus. Use the context below to answer; if the context does not contain the answer, say so.

Context:
%s

Recent conversation:
%s

Question: %s

Answer:`

// runtimeState tracks runtime initialisation.
type runtimeState int

const (
	stateUninitialized runtimeState = iota
	stateInitializing
	stateRuntimeReady
	stateRuntimeFailed
)

// AgentRuntime orchestrates retrieval-augmented generation: embed the
// query, retrieve similar documents, condense them and generate an answer.
type AgentRuntime struct {
	store     driven.KnowledgeStore
	embedder  driven.EmbeddingService
	generator driven.GenerationService
	ingestor  driving.Ingestor

	// sleep is swappable so tests can observe backoff without waiting.
	sleep func(time.Duration)

	mu      sync.Mutex
	state   runtimeState
	initErr error
}

// RuntimeOption configures an AgentRuntime.
type RuntimeOption func(*AgentRuntime)

// WithSleep replaces the backoff sleep function.
func WithSleep(sleep func(time.Duration)) RuntimeOption {
	return func(r *AgentRuntime) {
		r.sleep = sleep
	}
}

// NewAgentRuntime creates a runtime. Initialize must be called before use.
func NewAgentRuntime(
	store driven.KnowledgeStore,
	embedder driven.EmbeddingService,
	generator driven.GenerationService,
	ingestor driving.Ingestor,
	opts ...RuntimeOption,
) *AgentRuntime {
	r := &AgentRuntime{
		store:     store,
		embedder:  embedder,
		generator: generator,
		ingestor:  ingestor,
		sleep:     time.Sleep,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Initialize prepares the knowledge store. Safe to call more than once;
// a previous failure is returned again rather than retried silently.
func (r *AgentRuntime) Initialize(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch r.state {
	case stateRuntimeReady:
		return nil
	case stateRuntimeFailed:
		return fmt.Errorf("runtime initialisation previously failed: %w", r.initErr)
	case stateInitializing:
		return domain.ErrNotReady
	}

	r.state = stateInitializing

	if err := r.store.Init(ctx); err != nil {
		r.state = stateRuntimeFailed
		r.initErr = err
		return fmt.Errorf("initialising knowledge store: %w", err)
	}

	r.state = stateRuntimeReady
	logger.Info("Agent runtime initialised")
	return nil
}

// ready gates operations on initialisation.
func (r *AgentRuntime) ready() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != stateRuntimeReady {
		return domain.ErrNotReady
	}
	return nil
}

// AddKnowledge ingests raw inputs and stores the produced documents.
// An empty input list is a no-op. Per-input failures are reported through
// the returned report; a storage failure propagates as an error.
func (r *AgentRuntime) AddKnowledge(ctx context.Context, knowledge []string) (*domain.IngestReport, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	if len(knowledge) == 0 {
		return &domain.IngestReport{}, nil
	}

	report := r.ingestor.Ingest(ctx, knowledge)

	if len(report.Succeeded) > 0 {
		if err := r.store.AddKnowledge(ctx, report.Succeeded); err != nil {
			return report, fmt.Errorf("storing knowledge: %w", err)
		}
	}

	return report, nil
}

// SearchByText performs a lexical lookup against stored knowledge.
func (r *AgentRuntime) SearchByText(ctx context.Context, query string, topK int) ([]domain.Document, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	return r.store.SearchKnowledge(ctx, query, topK)
}

// GenerateResponse answers a query with retrieval-augmented generation.
// It never fails toward the caller: retrieval problems degrade to answering
// without context and generation problems degrade to an apology.
func (r *AgentRuntime) GenerateResponse(ctx context.Context, query string, recentContext []string) string {
	if err := r.ready(); err != nil {
		logger.Warn("GenerateResponse before initialisation: %v", err)
		return apologyMessage
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return malformedQueryMessage
	}

	logger.Section("Response Generation")
	logger.Debug("Query: %q", query)

	knowledge := r.retrieveContext(ctx, query)
	condensed := r.condenseContext(ctx, knowledge)

	prompt := fmt.Sprintf(responsePrompt, condensed, strings.Join(recentContext, "\n"), query)

	response, err := r.generateWithRetry(ctx, prompt)
	if err != nil {
		logger.Error("generation failed: %v", err)
		return apologyMessage
	}
	return response
}

// retrieveContext embeds the query and pulls the most similar documents.
// Any failure degrades to an empty context rather than an error.
func (r *AgentRuntime) retrieveContext(ctx context.Context, query string) string {
	embedding, err := r.embedder.Embed(ctx, query)
	if err != nil {
		logger.Warn("Query embedding failed, answering without context: %v", err)
		return ""
	}

	docs, err := r.store.SearchByEmbedding(ctx, embedding, retrievalTopK)
	if err != nil {
		logger.Warn("Retrieval failed, answering without context: %v", err)
		return ""
	}

	logger.Debug("Retrieved %d documents", len(docs))
	return domain.JoinContents(docs, "\n\n")
}

// condenseContext summarises retrieved context, falling back to plain
// truncation when summarisation is unavailable or fails. The summariser
// receives the full joined contents; it windows long input itself.
func (r *AgentRuntime) condenseContext(ctx context.Context, knowledge string) string {
	if knowledge == "" {
		return ""
	}

	summary, err := r.generator.Summarise(ctx, knowledge)
	if err != nil {
		logger.Warn("Summarisation failed, truncating context: %v", err)
		return truncateAtWord(knowledge, maxContextLen)
	}
	return summary
}

// generateWithRetry calls the generation service with exponential backoff:
// up to five attempts, starting at one second and doubling.
func (r *AgentRuntime) generateWithRetry(ctx context.Context, prompt string) (string, error) {
	backoff := initialBackoff

	var lastErr error
	for attempt := 1; attempt <= generateAttempts; attempt++ {
		response, err := r.generator.Generate(ctx, prompt, driven.GenerateOptions{})
		if err == nil {
			return response, nil
		}
		lastErr = err

		if attempt < generateAttempts {
			logger.Warn("Generation attempt %d/%d failed: %v (retrying in %s)",
				attempt, generateAttempts, err, backoff)
			r.sleep(backoff)
			backoff *= 2
		}
	}

	return "", fmt.Errorf("generation failed after %d attempts: %w", generateAttempts, lastErr)
}

// truncateAtWord shortens text to at most maxLen runes, cutting at the
// last word boundary inside the limit when one exists. Cutting by runes
// keeps multibyte sequences intact.
func truncateAtWord(text string, maxLen int) string {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}

	cut := string(runes[:maxLen])
	if idx := strings.LastIndexAny(cut, " \t\n"); idx > 0 {
		cut = cut[:idx]
	}
	return cut
}
