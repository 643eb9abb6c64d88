package domain

// IngestFailure records one input that could not be ingested.
type IngestFailure struct {
	// Input is the failed input, truncated for reporting.
	Input string

	// Err is the reason the input failed.
	Err error
}

// IngestReport is the structured result of an ingestion run.
// Individual input failures never abort the run; callers inspect Failed to
// react to partial failures.
type IngestReport struct {
	// Succeeded holds every document produced, full-text and chunks.
	Succeeded []Document

	// Failed lists inputs that produced no documents, with reasons.
	Failed []IngestFailure
}

// AllSucceeded reports whether every input was ingested.
func (r *IngestReport) AllSucceeded() bool {
	return len(r.Failed) == 0
}

// FullTextCount returns the number of full-text documents produced.
func (r *IngestReport) FullTextCount() int {
	n := 0
	for i := range r.Succeeded {
		if r.Succeeded[i].IsFullText {
			n++
		}
	}
	return n
}
