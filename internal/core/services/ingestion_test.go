package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docsage-ai/docsage-cli/internal/chunker"
)

func TestIngest_ShortInputSingleDocument(t *testing.T) {
	svc := NewIngestionService(newMockEmbedder(), nil)

	report := svc.Ingest(context.Background(), []string{strings.Repeat("a", 100)})

	require.True(t, report.AllSucceeded())
	require.Len(t, report.Succeeded, 1)

	doc := report.Succeeded[0]
	assert.True(t, doc.IsFullText)
	assert.Nil(t, doc.ParentID)
	assert.NotEmpty(t, doc.ID)
	assert.Equal(t, []float32{1, 0, 0}, doc.Embedding)
}

func TestIngest_LongInputChunked(t *testing.T) {
	svc := NewIngestionService(newMockEmbedder(), nil)

	content := strings.Repeat("some words to embed ", 75) // 1500 chars
	report := svc.Ingest(context.Background(), []string{content})

	require.True(t, report.AllSucceeded())
	require.GreaterOrEqual(t, len(report.Succeeded), 4) // full text + >=3 chunks
	assert.Equal(t, 1, report.FullTextCount())

	full := report.Succeeded[0]
	assert.True(t, full.IsFullText)
	assert.Equal(t, content, full.Content)

	for _, chunk := range report.Succeeded[1:] {
		require.NotNil(t, chunk.ParentID)
		assert.Equal(t, full.ID, *chunk.ParentID)
		assert.True(t, chunk.IsChunk())
		assert.NotEmpty(t, chunk.Embedding)
	}
}

func TestIngest_ReadsFilePaths(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.md")
	require.NoError(t, os.WriteFile(path, []byte("notes from a file"), 0600))

	svc := NewIngestionService(newMockEmbedder(), nil)
	report := svc.Ingest(context.Background(), []string{path})

	require.True(t, report.AllSucceeded())
	require.Len(t, report.Succeeded, 1)
	assert.Equal(t, "notes from a file", report.Succeeded[0].Content)
}

func TestIngest_MissingFileReported(t *testing.T) {
	svc := NewIngestionService(newMockEmbedder(), nil)

	report := svc.Ingest(context.Background(), []string{
		"/does/not/exist.md",
		"but this literal text works",
	})

	require.Len(t, report.Failed, 1)
	assert.Contains(t, report.Failed[0].Input, "/does/not/exist.md")
	require.Len(t, report.Succeeded, 1)
	assert.Equal(t, "but this literal text works", report.Succeeded[0].Content)
}

func TestIngest_EmbeddingFailureReported(t *testing.T) {
	embedder := newMockEmbedder()
	embedder.embedErr = errors.New("model offline")

	svc := NewIngestionService(embedder, nil)
	report := svc.Ingest(context.Background(), []string{"some text"})

	require.Len(t, report.Failed, 1)
	assert.ErrorContains(t, report.Failed[0].Err, "model offline")
	assert.Empty(t, report.Succeeded)
}

func TestIngest_EmptyInputs(t *testing.T) {
	svc := NewIngestionService(newMockEmbedder(), nil)

	report := svc.Ingest(context.Background(), nil)
	assert.True(t, report.AllSucceeded())
	assert.Empty(t, report.Succeeded)

	report = svc.Ingest(context.Background(), []string{"   "})
	require.Len(t, report.Failed, 1)
}

func TestIngest_DocumentOrderFollowsInputOrder(t *testing.T) {
	svc := NewIngestionService(newMockEmbedder(), chunker.New(
		chunker.WithChunkSize(1000),
	))

	report := svc.Ingest(context.Background(), []string{"first", "second", "third"})

	require.True(t, report.AllSucceeded())
	require.Len(t, report.Succeeded, 3)
	assert.Equal(t, "first", report.Succeeded[0].Content)
	assert.Equal(t, "second", report.Succeeded[1].Content)
	assert.Equal(t, "third", report.Succeeded[2].Content)
}

func TestIngest_TruncatesLongFailedInput(t *testing.T) {
	embedder := newMockEmbedder()
	embedder.embedErr = errors.New("down")

	svc := NewIngestionService(embedder, nil)
	report := svc.Ingest(context.Background(), []string{strings.Repeat("x", 500)})

	require.Len(t, report.Failed, 1)
	assert.LessOrEqual(t, len(report.Failed[0].Input), failureInputMaxLen+3)
}
