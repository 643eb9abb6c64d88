package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotReady indicates the runtime has not finished initialising.
	// Operations are gated until initialisation completes.
	ErrNotReady = errors.New("runtime not ready")

	// ErrEmbeddingNotReady indicates the local embedding model is still
	// loading. Callers should retry once the model has warmed up.
	ErrEmbeddingNotReady = errors.New("embedding model not yet initialised")

	// ErrEmbeddingUnavailable indicates the embedding service is not
	// configured or failed. Retrieval degrades to an empty result set.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrGenerationUnavailable indicates the generation service is not
	// configured. Summarisation degrades to truncation.
	ErrGenerationUnavailable = errors.New("generation service unavailable")
)

// CrawlError describes a failure to acquire one resource.
// Crawl errors are isolated: a multi-URL run logs and skips them.
type CrawlError struct {
	// URL is the resource that failed.
	URL string

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *CrawlError) Error() string {
	return fmt.Sprintf("crawl %s: %v", e.URL, e.Err)
}

// Unwrap returns the underlying cause.
func (e *CrawlError) Unwrap() error {
	return e.Err
}
