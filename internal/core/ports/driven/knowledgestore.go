package driven

import (
	"context"

	"github.com/docsage-ai/docsage-cli/internal/core/domain"
)

// KnowledgeStore persists documents with their embeddings and supports both
// lexical and vector-similarity lookup. Backed by SQLite.
//
// A store instance holds embeddings of exactly one dimensionality, fixed by
// whichever embedding provider produced them. Mixing providers within one
// store is undefined behaviour and is prevented by configuration, not by
// runtime checks.
type KnowledgeStore interface {
	// Init prepares the store (creates the schema, runs migrations).
	Init(ctx context.Context) error

	// AddKnowledge stores the given documents. Documents are immutable
	// after creation; AddKnowledge is insert-only.
	AddKnowledge(ctx context.Context, docs []domain.Document) error

	// SearchKnowledge performs a lexical (non-vector) match against
	// document content, returning up to topK documents. This is the
	// fallback path when only text search is needed.
	SearchKnowledge(ctx context.Context, query string, topK int) ([]domain.Document, error)

	// SearchByEmbedding ranks every stored document by cosine similarity
	// to the query vector and returns the top K by descending similarity.
	// Ties are broken by insertion order (earlier wins).
	SearchByEmbedding(ctx context.Context, query []float32, topK int) ([]domain.Document, error)

	// DeleteDocument removes a document. Deleting a full-text document
	// cascades deletion of its chunks.
	DeleteDocument(ctx context.Context, id string) error

	// Close releases resources.
	Close() error
}
