// Package crawler fetches and normalises text from remote resources.
//
// It handles HTML pages, Markdown files and PDFs, discovers same-domain
// links matching a seed pattern and recurses to a bounded depth. Crawl
// state (visited set, base URL, pattern) is scoped to one recursive run;
// a Crawler is not safe for concurrent use.
package crawler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/docsage-ai/docsage-cli/internal/core/domain"
	"github.com/docsage-ai/docsage-cli/internal/core/ports/driven"
	"github.com/docsage-ai/docsage-cli/internal/logger"
)

// Default configuration values.
const (
	DefaultTimeout  = 30 * time.Second
	DefaultMaxDepth = 3

	// DefaultRequestsPerSecond bounds the fetch rate per crawler.
	DefaultRequestsPerSecond = 4
)

// Crawler extracts text content from web pages, Markdown files and PDFs.
type Crawler struct {
	client  *http.Client
	limiter *rate.Limiter
	runner  driven.CommandRunner

	// Per-run state, reset by CrawlRecursively and ResetState.
	visited map[string]struct{}
	baseURL string
	pattern string
}

// Option configures the crawler.
type Option func(*Crawler)

// WithHTTPClient sets the HTTP client used for fetching.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Crawler) {
		if client != nil {
			c.client = client
		}
	}
}

// WithRequestsPerSecond sets the politeness rate limit.
func WithRequestsPerSecond(rps float64) Option {
	return func(c *Crawler) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// WithRunner sets the command runner used for PDF text extraction.
func WithRunner(runner driven.CommandRunner) Option {
	return func(c *Crawler) {
		if runner != nil {
			c.runner = runner
		}
	}
}

// New creates a new crawler with the given options.
func New(opts ...Option) *Crawler {
	c := &Crawler{
		client:  &http.Client{Timeout: DefaultTimeout},
		limiter: rate.NewLimiter(rate.Limit(DefaultRequestsPerSecond), 1),
		runner:  &execRunner{},
		visited: make(map[string]struct{}),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Crawl fetches a single URL and returns its text content.
// Dispatch is by file extension: .pdf is downloaded and extracted, .md is
// fetched verbatim, anything else is parsed as HTML.
func (c *Crawler) Crawl(ctx context.Context, rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", &domain.CrawlError{URL: rawURL, Err: err}
	}

	var text string
	switch strings.ToLower(path.Ext(u.Path)) {
	case ".pdf":
		text, err = c.extractPDF(ctx, rawURL)
	case ".md":
		text, err = c.extractMarkdown(ctx, rawURL)
	default:
		text, err = c.extractWebpage(ctx, rawURL)
	}

	if err != nil {
		return "", &domain.CrawlError{URL: rawURL, Err: err}
	}
	return text, nil
}

// frame is one frontier entry of a recursive crawl.
type frame struct {
	url   string
	depth int
}

// CrawlRecursively crawls the seed URL and every same-domain link matching
// the seed pattern, to a bounded depth. The seed is depth 0; links found on
// a page at depth d are crawled at depth d+1 only while d < maxDepth.
//
// Traversal is depth-first in document order of discovered links, driven by
// an explicit frontier so arbitrarily deep sites cannot exhaust the stack.
// A per-URL failure is logged and skipped; it never aborts the run.
func (c *Crawler) CrawlRecursively(ctx context.Context, seedURL string, maxDepth int) ([]domain.CrawlResult, error) {
	seed, err := url.Parse(seedURL)
	if err != nil {
		return nil, fmt.Errorf("parse seed URL %q: %w", seedURL, err)
	}
	if seed.Scheme == "" || seed.Host == "" {
		return nil, fmt.Errorf("seed URL %q: missing scheme or host", seedURL)
	}
	if maxDepth < 0 {
		maxDepth = DefaultMaxDepth
	}

	c.ResetState()
	c.baseURL = seed.Scheme + "://" + seed.Host
	c.pattern = seedURL

	// A wildcard seed is a pattern, not a fetchable URL; crawling starts
	// at the prefix it covers.
	startURL := strings.TrimSuffix(seedURL, "*")

	logger.Section("Recursive Crawl")
	logger.Info("Seed: %s", seedURL)
	logger.Debug("Base URL: %s, pattern: %s, max depth: %d", c.baseURL, c.pattern, maxDepth)

	var results []domain.CrawlResult
	frontier := []frame{{url: startURL, depth: 0}}

	for len(frontier) > 0 {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		// Pop the most recently pushed frame (depth-first)
		f := frontier[len(frontier)-1]
		frontier = frontier[:len(frontier)-1]

		if _, seen := c.visited[f.url]; seen {
			continue
		}
		if !c.shouldCrawl(f.url) {
			continue
		}
		c.visited[f.url] = struct{}{}

		logger.Debug("Crawling (depth %d): %s", f.depth, f.url)

		content, err := c.Crawl(ctx, f.url)
		if err != nil {
			logger.Warn("Skipping %s: %v", f.url, err)
			continue
		}
		results = append(results, domain.CrawlResult{URL: f.url, Content: content})

		if f.depth >= maxDepth {
			continue
		}

		links, err := c.discoverLinks(ctx, f.url)
		if err != nil {
			logger.Warn("Link discovery failed for %s: %v", f.url, err)
			continue
		}
		logger.Debug("Found %d matching links on %s", len(links), f.url)

		// Push in reverse so links are visited in document order
		for i := len(links) - 1; i >= 0; i-- {
			frontier = append(frontier, frame{url: links[i], depth: f.depth + 1})
		}
	}

	logger.Info("Crawl complete: %d pages", len(results))
	return results, nil
}

// ResetState clears the visited set, base URL and pattern.
// Call between independent crawl runs.
func (c *Crawler) ResetState() {
	c.visited = make(map[string]struct{})
	c.baseURL = ""
	c.pattern = ""
}

// shouldCrawl reports whether a URL falls under the crawl pattern.
//
// A pattern ending in "*" matches by prefix against the pattern with the
// marker stripped. Any other pattern requires equality, either raw or with
// both sides normalised to a trailing slash. Discovered-link filtering and
// the top-level pattern check deliberately share both code paths.
func (c *Crawler) shouldCrawl(u string) bool {
	if strings.HasSuffix(c.pattern, "*") {
		return strings.HasPrefix(u, strings.TrimSuffix(c.pattern, "*"))
	}

	normalisedURL := ensureTrailingSlash(u)
	normalisedPattern := ensureTrailingSlash(c.pattern)
	return u == c.pattern || normalisedURL == normalisedPattern
}

func ensureTrailingSlash(s string) string {
	if strings.HasSuffix(s, "/") {
		return s
	}
	return s + "/"
}

// fetch performs a rate-limited GET and returns the response body.
func (c *Crawler) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

// extractMarkdown fetches a Markdown file and returns its content verbatim.
func (c *Crawler) extractMarkdown(ctx context.Context, rawURL string) (string, error) {
	body, err := c.fetch(ctx, rawURL)
	if err != nil {
		return "", err
	}
	if len(body) == 0 {
		return "", fmt.Errorf("no content found in Markdown file")
	}
	return string(body), nil
}
