package crawler

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// execRunner runs commands via os/exec. It is the default CommandRunner.
type execRunner struct{}

// Run executes the named command and returns its standard output.
func (r *execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// extractPDF downloads a PDF to a scoped temporary file and extracts its
// text with pdftotext. The download must complete with a successful status
// and the extraction must yield text, otherwise the crawl of this URL fails.
func (c *Crawler) extractPDF(ctx context.Context, rawURL string) (string, error) {
	body, err := c.fetch(ctx, rawURL)
	if err != nil {
		return "", fmt.Errorf("download PDF: %w", err)
	}

	tmp, err := os.CreateTemp("", "docsage-crawl-*.pdf")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp file: %w", err)
	}

	// The file is fully written and closed before extraction starts.
	out, err := c.runner.Run(ctx, "pdftotext", "-layout", tmpPath, "-")
	if err != nil {
		return "", fmt.Errorf("pdftotext: %w", err)
	}

	text := strings.TrimSpace(string(out))
	if text == "" {
		return "", fmt.Errorf("no text could be extracted from the PDF")
	}
	return text, nil
}
