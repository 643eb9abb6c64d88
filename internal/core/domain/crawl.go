package domain

// CrawlResult pairs a crawled URL with its extracted text content.
// Results are ordered by discovery (depth-first in document order).
type CrawlResult struct {
	// URL is the resource the content was extracted from.
	URL string

	// Content is the normalised text.
	Content string
}

// MergeCrawlResults combines the results of multiple pattern runs into one
// list deduplicated by URL. Later runs win on conflicting URLs; the position
// of a URL in the output is the position of its first appearance.
func MergeCrawlResults(runs ...[]CrawlResult) []CrawlResult {
	merged := make([]CrawlResult, 0)
	index := make(map[string]int)

	for _, run := range runs {
		for _, r := range run {
			if i, seen := index[r.URL]; seen {
				merged[i] = r
				continue
			}
			index[r.URL] = len(merged)
			merged = append(merged, r)
		}
	}
	return merged
}
