package driven

import "context"

// EmbeddingService generates vector embeddings from text.
//
// Two implementations exist, selected at construction by explicit
// configuration (never by sniffing credentials at call time):
//   - OpenAI (remote API)
//   - Ollama (local model, loaded asynchronously at startup)
//
// The local implementation returns domain.ErrEmbeddingNotReady until its
// model has finished loading. Embedding failures are not retried here;
// callers treat a failed embedding as an empty retrieval, not a fatal error.
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts efficiently.
	// This is more efficient than calling Embed in a loop for large batches.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g., 768, 1536).
	// This is determined by the model and must match the store contents.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight
	// test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
