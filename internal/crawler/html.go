package crawler

import (
	"context"
	"fmt"
	"html"
	"regexp"
	"strings"
)

// Pre-compiled regular expressions for HTML text extraction.
var (
	scriptTag    = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleTag     = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	noscriptTag  = regexp.MustCompile(`(?is)<noscript[^>]*>.*?</noscript>`)
	headTag      = regexp.MustCompile(`(?is)<head[^>]*>.*?</head>`)
	svgTag       = regexp.MustCompile(`(?is)<svg[^>]*>.*?</svg>`)
	navTag       = regexp.MustCompile(`(?is)<nav[^>]*>.*?</nav>`)
	headerTag    = regexp.MustCompile(`(?is)<header[^>]*>.*?</header>`)
	footerTag    = regexp.MustCompile(`(?is)<footer[^>]*>.*?</footer>`)
	htmlComments = regexp.MustCompile(`(?s)<!--.*?-->`)
	allTags      = regexp.MustCompile(`<[^>]+>`)
	whitespace   = regexp.MustCompile(`\s+`)

	// Content-bearing containers, preferred over the full body.
	mainTag        = regexp.MustCompile(`(?is)<main[^>]*>(.*)</main>`)
	articleTag     = regexp.MustCompile(`(?is)<article[^>]*>(.*)</article>`)
	contentRoleTag = regexp.MustCompile(`(?is)<(?:div|section)[^>]+(?:id|class)\s*=\s*["'][^"']*(?:\bcontent\b|main-content)[^"']*["'][^>]*>(.*)</(?:div|section)>`)
	bodyTag        = regexp.MustCompile(`(?is)<body[^>]*>(.*)</body>`)
)

// extractWebpage fetches a page and extracts its readable text.
func (c *Crawler) extractWebpage(ctx context.Context, rawURL string) (string, error) {
	body, err := c.fetch(ctx, rawURL)
	if err != nil {
		return "", err
	}

	text := extractText(string(body))
	if text == "" {
		return "", fmt.Errorf("no text content found on the webpage")
	}
	return text, nil
}

// extractText strips chrome and markup from an HTML document.
// Script, style, navigation, header and footer elements are removed first.
// Main/article/content-role containers are preferred; the full body is the
// fallback when none is present.
func extractText(content string) string {
	content = scriptTag.ReplaceAllString(content, "")
	content = styleTag.ReplaceAllString(content, "")
	content = noscriptTag.ReplaceAllString(content, "")
	content = headTag.ReplaceAllString(content, "")
	content = svgTag.ReplaceAllString(content, "")
	content = navTag.ReplaceAllString(content, "")
	content = headerTag.ReplaceAllString(content, "")
	content = footerTag.ReplaceAllString(content, "")
	content = htmlComments.ReplaceAllString(content, "")

	if main := firstSubmatch(content, mainTag, articleTag, contentRoleTag); main != "" {
		content = main
	} else if body := firstSubmatch(content, bodyTag); body != "" {
		content = body
	}

	content = allTags.ReplaceAllString(content, " ")
	content = html.UnescapeString(content)
	content = whitespace.ReplaceAllString(content, " ")

	return strings.TrimSpace(content)
}

// firstSubmatch returns the capture of the first expression that matches
// and yields non-blank text.
func firstSubmatch(content string, exprs ...*regexp.Regexp) string {
	for _, expr := range exprs {
		m := expr.FindStringSubmatch(content)
		if len(m) > 1 && strings.TrimSpace(allTags.ReplaceAllString(m[1], " ")) != "" {
			return m[1]
		}
	}
	return ""
}
