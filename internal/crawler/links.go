package crawler

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// anchorHref extracts href attributes from anchor elements.
var anchorHref = regexp.MustCompile(`(?is)<a\s[^>]*?href\s*=\s*["']([^"']+)["']`)

// discoverLinks fetches a page and returns the same-domain links on it that
// match the crawl pattern, in document order, deduplicated.
func (c *Crawler) discoverLinks(ctx context.Context, pageURL string) ([]string, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parse page URL: %w", err)
	}

	body, err := c.fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	var links []string
	seen := make(map[string]struct{})

	for _, m := range anchorHref.FindAllStringSubmatch(string(body), -1) {
		href := m[1]

		// Drop the fragment before resolution
		if i := strings.IndexByte(href, '#'); i >= 0 {
			href = href[:i]
		}
		if href == "" {
			continue
		}

		resolved := c.resolveLink(base, href)
		if resolved == "" {
			continue
		}
		if _, dup := seen[resolved]; dup {
			continue
		}
		seen[resolved] = struct{}{}

		if _, visited := c.visited[resolved]; visited {
			continue
		}
		if !c.shouldCrawl(resolved) {
			continue
		}
		links = append(links, resolved)
	}

	return links, nil
}

// resolveLink resolves an href against the page URL and filters out
// non-HTTP(S) schemes and cross-domain targets. Protocol-relative,
// root-relative and path-relative hrefs all resolve against the page.
// Returns "" for links that must be discarded.
func (c *Crawler) resolveLink(base *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if ref.Scheme != "" && ref.Scheme != "http" && ref.Scheme != "https" {
		return "" // mailto:, tel:, javascript: and friends
	}

	resolved := base.ResolveReference(ref)
	resolved.Fragment = ""

	abs := resolved.String()
	if !strings.HasPrefix(abs, c.baseURL) {
		return "" // cross-domain
	}
	return abs
}
