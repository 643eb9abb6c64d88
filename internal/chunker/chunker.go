// Package chunker provides a boundary-aware overlapping text splitter.
package chunker

import "strings"

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 512

// DefaultOverlap is the default number of overlapping characters.
const DefaultOverlap = 20

// Splitter splits text into overlapping chunks sized for embedding.
// Chunks prefer to end at a paragraph, line or word boundary.
type Splitter struct {
	chunkSize int
	overlap   int
}

// Option configures the splitter.
type Option func(*Splitter)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(s *Splitter) {
		if size > 0 {
			s.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(s *Splitter) {
		if overlap >= 0 {
			s.overlap = overlap
		}
	}
}

// New creates a new splitter with the given options.
func New(opts ...Option) *Splitter {
	s := &Splitter{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultOverlap,
	}

	for _, opt := range opts {
		opt(s)
	}

	// Ensure overlap doesn't exceed chunk size
	if s.overlap >= s.chunkSize {
		s.overlap = s.chunkSize / 4
	}

	return s
}

// Split divides content into chunks of at most chunkSize characters with
// the configured overlap between consecutive chunks. Content no longer than
// one chunk is returned as a single chunk.
func (s *Splitter) Split(content string) []string {
	if content == "" {
		return nil
	}

	contentLen := len(content)
	if contentLen <= s.chunkSize {
		return []string{content}
	}

	estimated := (contentLen / (s.chunkSize - s.overlap)) + 1
	chunks := make([]string, 0, estimated)

	start := 0
	for start < contentLen {
		end := start + s.chunkSize
		if end >= contentLen {
			chunks = append(chunks, content[start:])
			break
		}

		end = s.cutPoint(content, start, end)
		chunks = append(chunks, content[start:end])

		next := end - s.overlap
		if next <= start {
			// Guarantee forward progress on pathological input
			next = start + 1
		}
		start = next
	}

	return chunks
}

// cutPoint finds the boundary to end a chunk at. It searches backwards from
// the window end for a paragraph break, then a newline, then a space, but
// never gives up more than a quarter of the window. Without a usable
// boundary the chunk is cut hard at the window end.
func (s *Splitter) cutPoint(content string, start, end int) int {
	window := content[start:end]
	limit := len(window) - s.chunkSize/4

	for _, sep := range []string{"\n\n", "\n", " "} {
		if i := strings.LastIndex(window, sep); i > 0 && i >= limit {
			return start + i + len(sep)
		}
	}
	return end
}
