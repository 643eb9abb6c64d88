package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docsage-ai/docsage-cli/internal/core/domain"
)

func newTestRuntime(t *testing.T, store *mockStore, embedder *mockEmbedder, generator *mockGenerator) (*AgentRuntime, *[]time.Duration) {
	t.Helper()

	var delays []time.Duration
	r := NewAgentRuntime(store, embedder, generator,
		NewIngestionService(embedder, nil),
		WithSleep(func(d time.Duration) { delays = append(delays, d) }),
	)
	require.NoError(t, r.Initialize(context.Background()))
	return r, &delays
}

func TestInitialize(t *testing.T) {
	t.Run("gates operations until called", func(t *testing.T) {
		r := NewAgentRuntime(&mockStore{}, newMockEmbedder(), newMockGenerator(), nil)

		_, err := r.AddKnowledge(context.Background(), []string{"text"})
		require.ErrorIs(t, err, domain.ErrNotReady)

		_, err = r.SearchByText(context.Background(), "q", 5)
		require.ErrorIs(t, err, domain.ErrNotReady)

		assert.Equal(t, apologyMessage, r.GenerateResponse(context.Background(), "q", nil))
	})

	t.Run("idempotent once ready", func(t *testing.T) {
		r := NewAgentRuntime(&mockStore{}, newMockEmbedder(), newMockGenerator(), nil)
		require.NoError(t, r.Initialize(context.Background()))
		require.NoError(t, r.Initialize(context.Background()))
	})

	t.Run("failure sticks", func(t *testing.T) {
		store := &mockStore{initErr: errors.New("disk full")}
		r := NewAgentRuntime(store, newMockEmbedder(), newMockGenerator(), nil)

		require.Error(t, r.Initialize(context.Background()))

		err := r.Initialize(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "previously failed")
	})
}

func TestAddKnowledge(t *testing.T) {
	t.Run("stores ingested documents", func(t *testing.T) {
		store := &mockStore{}
		r, _ := newTestRuntime(t, store, newMockEmbedder(), newMockGenerator())

		report, err := r.AddKnowledge(context.Background(), []string{"the install guide"})
		require.NoError(t, err)
		assert.True(t, report.AllSucceeded())
		assert.Len(t, store.docs, 1)
	})

	t.Run("empty list is a no-op", func(t *testing.T) {
		store := &mockStore{}
		r, _ := newTestRuntime(t, store, newMockEmbedder(), newMockGenerator())

		report, err := r.AddKnowledge(context.Background(), nil)
		require.NoError(t, err)
		assert.True(t, report.AllSucceeded())
		assert.Zero(t, store.addCalls)
	})

	t.Run("storage failure propagates with report", func(t *testing.T) {
		store := &mockStore{addErr: errors.New("locked")}
		r, _ := newTestRuntime(t, store, newMockEmbedder(), newMockGenerator())

		report, err := r.AddKnowledge(context.Background(), []string{"text"})
		require.Error(t, err)
		require.NotNil(t, report)
		assert.Len(t, report.Succeeded, 1)
	})

	t.Run("per-input failures stay in the report", func(t *testing.T) {
		store := &mockStore{}
		r, _ := newTestRuntime(t, store, newMockEmbedder(), newMockGenerator())

		report, err := r.AddKnowledge(context.Background(), []string{"/missing/file.md", "fine"})
		require.NoError(t, err)
		assert.Len(t, report.Failed, 1)
		assert.Len(t, store.docs, 1)
	})
}

func TestGenerateResponse(t *testing.T) {
	t.Run("happy path uses summarised context", func(t *testing.T) {
		store := &mockStore{docs: []domain.Document{
			{ID: "d1", Content: "install with apt", Embedding: []float32{1, 0, 0}},
		}}
		generator := newMockGenerator()
		r, _ := newTestRuntime(t, store, newMockEmbedder(), generator)

		out := r.GenerateResponse(context.Background(), "how do I install?", []string{"earlier turn"})
		assert.Equal(t, "generated answer", out)

		require.Len(t, generator.prompts, 1)
		assert.Contains(t, generator.prompts[0], "a summary")
		assert.Contains(t, generator.prompts[0], "earlier turn")
		assert.Contains(t, generator.prompts[0], "how do I install?")
	})

	t.Run("blank query", func(t *testing.T) {
		r, _ := newTestRuntime(t, &mockStore{}, newMockEmbedder(), newMockGenerator())
		assert.Equal(t, malformedQueryMessage, r.GenerateResponse(context.Background(), "   ", nil))
	})

	t.Run("embedding failure degrades to no context", func(t *testing.T) {
		embedder := newMockEmbedder()
		embedder.embedErr = errors.New("offline")
		generator := newMockGenerator()
		r, _ := newTestRuntime(t, &mockStore{}, embedder, generator)

		out := r.GenerateResponse(context.Background(), "anything?", nil)
		assert.Equal(t, "generated answer", out)
		assert.Equal(t, 1, generator.generateCalls)
	})

	t.Run("summariser receives the full joined context", func(t *testing.T) {
		long := strings.Repeat("word ", 2400) // 12000 chars of context
		store := &mockStore{docs: []domain.Document{
			{ID: "d1", Content: long, Embedding: []float32{1, 0, 0}},
		}}
		generator := newMockGenerator()
		r, _ := newTestRuntime(t, store, newMockEmbedder(), generator)

		out := r.GenerateResponse(context.Background(), "q", nil)
		assert.Equal(t, "generated answer", out)

		require.Len(t, generator.summariseInputs, 1)
		assert.Equal(t, long, generator.summariseInputs[0])
	})

	t.Run("summarise failure truncates instead", func(t *testing.T) {
		long := strings.Repeat("word ", 2400) // 12000 chars of context
		store := &mockStore{docs: []domain.Document{
			{ID: "d1", Content: long, Embedding: []float32{1, 0, 0}},
		}}
		generator := newMockGenerator()
		generator.summariseErr = errors.New("no summariser")
		r, _ := newTestRuntime(t, store, newMockEmbedder(), generator)

		out := r.GenerateResponse(context.Background(), "q", nil)
		assert.Equal(t, "generated answer", out)

		// The fallback cuts the joined context at a word boundary just
		// under maxContextLen, not further.
		require.Len(t, generator.prompts, 1)
		assert.Contains(t, generator.prompts[0], truncateAtWord(long, maxContextLen))
		assert.Less(t, len(generator.prompts[0]), len(long))
	})

	t.Run("retries with doubling backoff", func(t *testing.T) {
		generator := newMockGenerator()
		fail := errors.New("overloaded")
		generator.generateErrs = []error{fail, fail, fail, fail, nil}

		r, delays := newTestRuntime(t, &mockStore{}, newMockEmbedder(), generator)

		out := r.GenerateResponse(context.Background(), "q", nil)
		assert.Equal(t, "generated answer", out)
		assert.Equal(t, 5, generator.generateCalls)
		assert.Equal(t, []time.Duration{
			1 * time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second,
		}, *delays)
	})

	t.Run("apology after five failures", func(t *testing.T) {
		generator := newMockGenerator()
		fail := errors.New("overloaded")
		generator.generateErrs = []error{fail, fail, fail, fail, fail}

		r, delays := newTestRuntime(t, &mockStore{}, newMockEmbedder(), generator)

		out := r.GenerateResponse(context.Background(), "q", nil)
		assert.Equal(t, apologyMessage, out)
		assert.Equal(t, 5, generator.generateCalls)
		assert.Len(t, *delays, 4) // no sleep after the last attempt
	})
}

func TestSearchByText(t *testing.T) {
	store := &mockStore{docs: []domain.Document{
		{ID: "d1", Content: "install guide"},
		{ID: "d2", Content: "api reference"},
	}}
	r, _ := newTestRuntime(t, store, newMockEmbedder(), newMockGenerator())

	docs, err := r.SearchByText(context.Background(), "install", 10)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "d1", docs[0].ID)
}

func TestTruncateAtWord(t *testing.T) {
	assert.Equal(t, "short", truncateAtWord("short", 100))
	assert.Equal(t, "one two", truncateAtWord("one two three", 10))

	// No boundary inside the limit: hard cut
	assert.Equal(t, "aaaaa", truncateAtWord("aaaaaaaaaa", 5))

	// The limit counts runes, so multibyte text is never split mid-sequence.
	assert.Equal(t, "héllø", truncateAtWord("héllø wörld", 7))
	got := truncateAtWord(strings.Repeat("é", 10), 5)
	assert.Equal(t, "ééééé", got)
	assert.True(t, utf8.ValidString(got))
}
