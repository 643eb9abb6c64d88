package services

import (
	"context"
	"strings"
	"sync"

	"github.com/docsage-ai/docsage-cli/internal/core/domain"
	"github.com/docsage-ai/docsage-cli/internal/core/ports/driven"
)

// mockEmbedder returns a fixed vector, or fails when embedErr is set.
type mockEmbedder struct {
	mu        sync.Mutex
	embedErr  error
	vector    []float32
	calls     int
	seenTexts []string
}

var _ driven.EmbeddingService = (*mockEmbedder)(nil)

func newMockEmbedder() *mockEmbedder {
	return &mockEmbedder{vector: []float32{1, 0, 0}}
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.seenTexts = append(m.seenTexts, text)
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return m.vector, nil
}

func (m *mockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := m.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (m *mockEmbedder) Dimensions() int            { return len(m.vector) }
func (m *mockEmbedder) ModelName() string          { return "mock-embed" }
func (m *mockEmbedder) Ping(context.Context) error { return nil }
func (m *mockEmbedder) Close() error               { return nil }

// mockGenerator scripts generation outcomes per call and records backoff
// behaviour through the runtime's injected sleep.
type mockGenerator struct {
	mu sync.Mutex

	// generateErrs is consumed one per Generate call; nil entries succeed.
	generateErrs []error
	response     string

	summariseErr    error
	summary         string
	summariseInputs []string

	generateCalls int
	prompts       []string
}

var _ driven.GenerationService = (*mockGenerator)(nil)

func newMockGenerator() *mockGenerator {
	return &mockGenerator{response: "generated answer", summary: "a summary"}
}

func (m *mockGenerator) Generate(_ context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.generateCalls++
	m.prompts = append(m.prompts, prompt)
	if len(m.generateErrs) > 0 {
		err := m.generateErrs[0]
		m.generateErrs = m.generateErrs[1:]
		if err != nil {
			return "", err
		}
	}
	return m.response, nil
}

func (m *mockGenerator) Summarise(_ context.Context, content string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.summariseInputs = append(m.summariseInputs, content)
	if m.summariseErr != nil {
		return "", m.summariseErr
	}
	return m.summary, nil
}

func (m *mockGenerator) ModelName() string          { return "mock-llm" }
func (m *mockGenerator) Ping(context.Context) error { return nil }
func (m *mockGenerator) Close() error               { return nil }

// mockStore is an in-memory knowledge store recording calls.
type mockStore struct {
	mu sync.Mutex

	initErr   error
	addErr    error
	searchErr error

	docs     []domain.Document
	addCalls int
}

var _ driven.KnowledgeStore = (*mockStore)(nil)

func (m *mockStore) Init(context.Context) error { return m.initErr }

func (m *mockStore) AddKnowledge(_ context.Context, docs []domain.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.addCalls++
	if m.addErr != nil {
		return m.addErr
	}
	m.docs = append(m.docs, docs...)
	return nil
}

func (m *mockStore) SearchKnowledge(_ context.Context, query string, topK int) ([]domain.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	var out []domain.Document
	for _, doc := range m.docs {
		if strings.Contains(doc.Content, query) && len(out) < topK {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (m *mockStore) SearchByEmbedding(_ context.Context, _ []float32, topK int) ([]domain.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if topK > len(m.docs) {
		topK = len(m.docs)
	}
	return m.docs[:topK], nil
}

func (m *mockStore) DeleteDocument(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, doc := range m.docs {
		if doc.ID == id {
			m.docs = append(m.docs[:i], m.docs[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *mockStore) Close() error { return nil }
