package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/docsage-ai/docsage-cli/internal/core/domain"
	"github.com/docsage-ai/docsage-cli/internal/crawler"
)

// crawlTimeout bounds one crawl run end to end.
const crawlTimeout = 10 * time.Minute

var (
	crawlMaxDepth int
	crawlIngest   bool
)

var crawlCmd = &cobra.Command{
	Use:   "crawl [url...]",
	Short: "Crawl documentation pages",
	Long: `Recursively crawls the given URLs and extracts their text content.

Each URL doubles as the crawl pattern: a URL ending in "*" matches every
page under that prefix, any other URL is crawled exactly. Links are only
followed on the same domain and within the pattern, to a bounded depth.
HTML pages are stripped to their main content, Markdown files are taken
verbatim and PDFs are extracted with pdftotext.

With --ingest the crawled content is chunked, embedded and stored in the
knowledge database.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCrawl,
}

func init() {
	crawlCmd.Flags().IntVar(&crawlMaxDepth, "max-depth", 0, "maximum crawl depth (default from config)")
	crawlCmd.Flags().BoolVar(&crawlIngest, "ingest", false, "ingest crawled content into the knowledge store")
	rootCmd.AddCommand(crawlCmd)
}

func runCrawl(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), crawlTimeout)
	defer cancel()

	maxDepth := crawlMaxDepth
	if maxDepth <= 0 {
		maxDepth = cfg.Crawler.MaxDepth
	}

	c := crawler.New(crawler.WithRequestsPerSecond(cfg.Crawler.RequestsPerSecond))

	// One recursive run per pattern, merged and deduplicated by URL
	runs := make([][]domain.CrawlResult, 0, len(args))
	for _, seed := range args {
		results, err := c.CrawlRecursively(ctx, seed, maxDepth)
		if err != nil {
			return fmt.Errorf("crawling %s: %w", seed, err)
		}
		runs = append(runs, results)
	}
	merged := domain.MergeCrawlResults(runs...)

	if len(merged) == 0 {
		cmd.Println("No pages crawled.")
		return nil
	}

	cmd.Printf("Crawled %d pages:\n", len(merged))
	for _, r := range merged {
		cmd.Printf("  %s (%d chars)\n", r.URL, len(r.Content))
	}

	if !crawlIngest {
		return nil
	}

	contents := make([]string, len(merged))
	for i, r := range merged {
		contents[i] = r.Content
	}

	report, err := runtime.AddKnowledge(ctx, contents)
	if err != nil {
		return fmt.Errorf("ingesting crawled content: %w", err)
	}

	printIngestReport(cmd, report)
	return nil
}

// printIngestReport summarises an ingestion run for the user.
func printIngestReport(cmd *cobra.Command, report *domain.IngestReport) {
	cmd.Printf("Stored %d documents (%d full texts).\n",
		len(report.Succeeded), report.FullTextCount())

	for _, failure := range report.Failed {
		cmd.Printf("  failed: %q: %v\n", failure.Input, failure.Err)
	}
}
