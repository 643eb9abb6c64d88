package services

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/docsage-ai/docsage-cli/internal/chunker"
	"github.com/docsage-ai/docsage-cli/internal/core/domain"
	"github.com/docsage-ai/docsage-cli/internal/core/ports/driven"
	"github.com/docsage-ai/docsage-cli/internal/core/ports/driving"
	"github.com/docsage-ai/docsage-cli/internal/logger"
)

// Ensure IngestionService implements the interface.
var _ driving.Ingestor = (*IngestionService)(nil)

// ingestWorkers bounds concurrent embedding of inputs.
const ingestWorkers = 4

// failureInputMaxLen truncates failed inputs in reports.
const failureInputMaxLen = 80

// IngestionService turns raw inputs into embedded documents. Inputs that
// look like file paths are read from disk; everything else is treated as
// literal text. Inputs longer than the chunk threshold produce a full-text
// document plus overlapping chunks linked to it.
type IngestionService struct {
	embedder driven.EmbeddingService
	splitter *chunker.Splitter
}

// NewIngestionService creates an ingestion service. A nil splitter gets the
// default chunking parameters.
func NewIngestionService(embedder driven.EmbeddingService, splitter *chunker.Splitter) *IngestionService {
	if splitter == nil {
		splitter = chunker.New()
	}
	return &IngestionService{
		embedder: embedder,
		splitter: splitter,
	}
}

// Ingest processes every input concurrently and returns the produced
// documents plus per-input failures. Individual failures never abort the
// run; document order follows input order.
func (s *IngestionService) Ingest(ctx context.Context, inputs []string) *domain.IngestReport {
	report := &domain.IngestReport{}
	if len(inputs) == 0 {
		return report
	}

	logger.Section("Ingestion")
	logger.Debug("Ingesting %d inputs", len(inputs))

	type outcome struct {
		docs []domain.Document
		err  error
	}

	outcomes := make([]outcome, len(inputs))
	sem := make(chan struct{}, ingestWorkers)

	var wg sync.WaitGroup
	for i, input := range inputs {
		wg.Add(1)
		go func(i int, input string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			docs, err := s.ingestOne(ctx, input)
			outcomes[i] = outcome{docs: docs, err: err}
		}(i, input)
	}
	wg.Wait()

	for i, out := range outcomes {
		if out.err != nil {
			logger.Warn("Input %d failed: %v", i, out.err)
			report.Failed = append(report.Failed, domain.IngestFailure{
				Input: truncateInput(inputs[i]),
				Err:   out.err,
			})
			continue
		}
		report.Succeeded = append(report.Succeeded, out.docs...)
	}

	logger.Info("Ingested %d documents (%d inputs failed)", len(report.Succeeded), len(report.Failed))
	return report
}

// ingestOne resolves, chunks and embeds a single input.
func (s *IngestionService) ingestOne(ctx context.Context, input string) ([]domain.Document, error) {
	content, err := resolveInput(input)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	fullText := domain.Document{
		ID:         uuid.NewString(),
		Content:    content,
		CreatedAt:  now,
		IsFullText: true,
	}

	chunks := s.splitter.Split(content)
	if len(chunks) <= 1 {
		// Short input: the full text is the only document
		embedding, err := s.embedder.Embed(ctx, content)
		if err != nil {
			return nil, fmt.Errorf("embed content: %w", err)
		}
		fullText.Embedding = embedding
		return []domain.Document{fullText}, nil
	}

	// Long input: embed the full text and every chunk in one batch
	texts := append([]string{content}, chunks...)
	embeddings, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed content: %w", err)
	}
	if len(embeddings) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: got %d, want %d", len(embeddings), len(texts))
	}

	fullText.Embedding = embeddings[0]
	docs := make([]domain.Document, 0, len(chunks)+1)
	docs = append(docs, fullText)

	for i, chunk := range chunks {
		parentID := fullText.ID
		docs = append(docs, domain.Document{
			ID:        uuid.NewString(),
			Content:   chunk,
			Embedding: embeddings[i+1],
			CreatedAt: now,
			ParentID:  &parentID,
		})
	}

	logger.Debug("Split input into %d chunks", len(chunks))
	return docs, nil
}

// resolveInput turns an input into text content. Inputs that look like
// paths are read from disk; anything else passes through as literal text.
func resolveInput(input string) (string, error) {
	if looksLikePath(input) {
		data, err := os.ReadFile(input)
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", input, err)
		}
		input = string(data)
	}

	if strings.TrimSpace(input) == "" {
		return "", domain.ErrInvalidInput
	}
	return input, nil
}

// looksLikePath reports whether the input should be treated as a file path
// rather than literal text.
func looksLikePath(input string) bool {
	return strings.HasPrefix(input, "/") ||
		strings.HasPrefix(input, "./") ||
		strings.HasPrefix(input, "../")
}

// truncateInput shortens an input for failure reporting.
func truncateInput(input string) string {
	if len(input) <= failureInputMaxLen {
		return input
	}
	return input[:failureInputMaxLen] + "..."
}
