package domain

import "time"

// Document represents a stored unit of ingested knowledge with its embedding.
// It is the canonical representation after ingestion: either the full text of
// one input, or a chunk split out of a longer input.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// Content is the text content.
	Content string

	// Embedding is the vector representation for similarity search.
	// All documents in one store share the dimensionality of whichever
	// embedding provider produced them.
	Embedding []float32

	// CreatedAt is when the document was ingested.
	CreatedAt time.Time

	// ParentID links a chunk to its full-text document.
	// Nil for full-text documents, always set for chunks.
	ParentID *string

	// IsFullText distinguishes the complete input text from its chunks.
	IsFullText bool
}

// IsChunk reports whether the document is a chunk of a larger document.
func (d *Document) IsChunk() bool {
	return !d.IsFullText && d.ParentID != nil
}

// JoinContents concatenates the contents of the given documents with the
// separator. Used to assemble retrieved context before summarisation.
func JoinContents(docs []Document, separator string) string {
	if len(docs) == 0 {
		return ""
	}
	total := 0
	for i := range docs {
		total += len(docs[i].Content) + len(separator)
	}
	buf := make([]byte, 0, total)
	for i := range docs {
		if i > 0 {
			buf = append(buf, separator...)
		}
		buf = append(buf, docs[i].Content...)
	}
	return string(buf)
}
