// Package memory implements the knowledge store in process memory.
// Useful for tests and throwaway sessions; mirrors the SQLite store's
// semantics, including cascade deletion and tie ordering.
package memory

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/docsage-ai/docsage-cli/internal/core/domain"
	"github.com/docsage-ai/docsage-cli/internal/core/ports/driven"
)

var _ driven.KnowledgeStore = (*Store)(nil)

// Store is an in-memory knowledge store.
type Store struct {
	mu   sync.RWMutex
	docs []domain.Document // insertion order
	ids  map[string]int    // id -> index into docs
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{ids: make(map[string]int)}
}

// Init is a no-op; there is no schema to prepare.
func (s *Store) Init(context.Context) error {
	return nil
}

// AddKnowledge stores documents in insertion order.
func (s *Store) AddKnowledge(_ context.Context, docs []domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, doc := range docs {
		if doc.ID == "" || doc.Content == "" {
			return domain.ErrInvalidInput
		}
		s.ids[doc.ID] = len(s.docs)
		s.docs = append(s.docs, doc)
	}
	return nil
}

// SearchKnowledge performs a case-sensitive substring match.
func (s *Store) SearchKnowledge(_ context.Context, query string, topK int) ([]domain.Document, error) {
	if topK <= 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []domain.Document
	for _, doc := range s.docs {
		if strings.Contains(doc.Content, query) {
			results = append(results, doc)
			if len(results) == topK {
				break
			}
		}
	}
	return results, nil
}

// SearchByEmbedding ranks all documents by cosine similarity. Ties keep
// insertion order.
func (s *Store) SearchByEmbedding(_ context.Context, query []float32, topK int) ([]domain.Document, error) {
	if topK <= 0 || len(query) == 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	type scored struct {
		doc   domain.Document
		score float64
	}

	candidates := make([]scored, 0, len(s.docs))
	for _, doc := range s.docs {
		if len(doc.Embedding) != len(query) {
			continue
		}
		candidates = append(candidates, scored{doc: doc, score: cosineSimilarity(query, doc.Embedding)})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	if topK > len(candidates) {
		topK = len(candidates)
	}

	results := make([]domain.Document, topK)
	for i := range results {
		results[i] = candidates[i].doc
	}
	return results, nil
}

// DeleteDocument removes a document and, for full-text documents, every
// chunk whose ParentID references it.
func (s *Store) DeleteDocument(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.ids[id]; !ok {
		return domain.ErrNotFound
	}

	kept := s.docs[:0]
	for _, doc := range s.docs {
		if doc.ID == id || (doc.ParentID != nil && *doc.ParentID == id) {
			continue
		}
		kept = append(kept, doc)
	}
	s.docs = kept

	s.ids = make(map[string]int, len(s.docs))
	for i, doc := range s.docs {
		s.ids[doc.ID] = i
	}
	return nil
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}

func cosineSimilarity(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
