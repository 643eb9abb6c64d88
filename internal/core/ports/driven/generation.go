package driven

import "context"

// GenerationService provides text generation and summarisation.
// Setups without generation credentials wire a disabled implementation
// that fails every call with domain.ErrGenerationUnavailable;
// summarisation then degrades to truncation and answers to an apology.
//
// Generation is an opaque text-in/text-out call. Retry and backoff around
// flaky providers belong to the caller, not the adapter.
type GenerationService interface {
	// Generate produces a text completion from a prompt.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// Summarise condenses long content. Implementations split the content
	// into chunks, summarise them concurrently and join the partial
	// summaries. Failures should be treated by callers as a signal to
	// fall back to truncation; summarisation is a quality enhancement,
	// not a correctness requirement.
	Summarise(ctx context.Context, content string) (string, error)

	// ModelName returns the name of the generation model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight
	// test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerateOptions configures text generation behaviour.
type GenerateOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64
}
