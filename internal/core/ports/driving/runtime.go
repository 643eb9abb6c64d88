package driving

import (
	"context"

	"github.com/docsage-ai/docsage-cli/internal/core/domain"
)

// AgentRuntime is the query and knowledge ingress consumed by host glue
// (CLI commands, an HTTP endpoint, a chat frontend).
type AgentRuntime interface {
	// Initialize prepares the runtime for use. Operations are rejected
	// with domain.ErrNotReady until initialisation has completed.
	Initialize(ctx context.Context) error

	// AddKnowledge ingests the given raw text blobs (or file paths) and
	// stores the resulting documents. An empty list is a no-op. A total
	// storage failure after ingestion propagates; individual input
	// failures are reported through the returned report only.
	AddKnowledge(ctx context.Context, knowledge []string) (*domain.IngestReport, error)

	// GenerateResponse answers a user query with retrieval-augmented
	// generation. It never fails toward the caller: internal errors
	// degrade to an apologetic response string.
	GenerateResponse(ctx context.Context, query string, recentContext []string) string

	// SearchByText performs a lexical lookup against stored knowledge.
	SearchByText(ctx context.Context, query string, topK int) ([]domain.Document, error)
}

// Ingestor turns raw inputs into embedded documents.
type Ingestor interface {
	// Ingest resolves each input (literal text or file path), embeds it
	// and returns the produced documents plus per-input failures.
	// Individual failures never abort the run.
	Ingest(ctx context.Context, inputs []string) *domain.IngestReport
}
