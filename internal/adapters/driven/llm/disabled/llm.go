// Package disabled provides a generation service stand-in for setups
// without generation credentials. Every call reports
// domain.ErrGenerationUnavailable so callers degrade gracefully:
// summarisation falls back to truncation and answers to an apology.
package disabled

import (
	"context"

	"github.com/docsage-ai/docsage-cli/internal/core/domain"
	"github.com/docsage-ai/docsage-cli/internal/core/ports/driven"
)

var _ driven.GenerationService = (*GenerationService)(nil)

// GenerationService rejects every generation request.
type GenerationService struct{}

// NewGenerationService creates a disabled generation service.
func NewGenerationService() *GenerationService {
	return &GenerationService{}
}

// Generate always fails with domain.ErrGenerationUnavailable.
func (s *GenerationService) Generate(context.Context, string, driven.GenerateOptions) (string, error) {
	return "", domain.ErrGenerationUnavailable
}

// Summarise always fails with domain.ErrGenerationUnavailable.
func (s *GenerationService) Summarise(context.Context, string) (string, error) {
	return "", domain.ErrGenerationUnavailable
}

// ModelName returns a placeholder name.
func (s *GenerationService) ModelName() string {
	return "disabled"
}

// Ping always fails with domain.ErrGenerationUnavailable.
func (s *GenerationService) Ping(context.Context) error {
	return domain.ErrGenerationUnavailable
}

// Close releases nothing.
func (s *GenerationService) Close() error {
	return nil
}
