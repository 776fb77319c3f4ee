// Package scrape drives the search → fetch → extract → analyze pipeline.
//
// Each URL moves through a fixed sequence: a failed fetch is terminal for
// that page, while a failed analysis only leaves the analysis column
// empty. Bulk runs collect successful pages into a [report.Table] in
// input order; failures are logged and dropped, never written as rows.
//
// Stages return typed errors instead of swallowing them — the driver is
// the single place that decides between abort (missing credentials) and
// log-and-continue (per-page transport failures).
package scrape

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/charmbracelet/log"

	"github.com/pagesift/pagesift/extract"
	"github.com/pagesift/pagesift/report"
	"github.com/pagesift/pagesift/search"
)

// Searcher turns a query into ordered search results.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]search.Result, error)
}

// Fetcher retrieves the raw body of a page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Analyzer answers an instruction prompt about page content.
type Analyzer interface {
	Analyze(ctx context.Context, content, prompt string) (string, error)
}

// Scraper composes the pipeline stages. Construct it with [New];
// the zero value is not usable.
type Scraper struct {
	searcher Searcher
	fetcher  Fetcher
	analyzer Analyzer
	workers  int
	progress bool
}

// Option configures a [Scraper].
type Option func(*Scraper)

// WithWorkers sets the number of concurrent scrape workers. The default
// of 1 keeps the pipeline strictly sequential; higher values share the
// fetcher's rate gate.
func WithWorkers(workers int) Option {
	return func(s *Scraper) {
		if workers > 0 {
			s.workers = workers
		}
	}
}

// WithProgress enables a terminal spinner during bulk runs.
func WithProgress(enabled bool) Option {
	return func(s *Scraper) {
		s.progress = enabled
	}
}

// New returns a [Scraper] over the given stages. searcher may be nil when
// only [Scraper.ScrapeWebsite] and [Scraper.BulkScrape] are used.
func New(searcher Searcher, fetcher Fetcher, analyzer Analyzer, opts ...Option) *Scraper {
	s := &Scraper{
		searcher: searcher,
		fetcher:  fetcher,
		analyzer: analyzer,
		workers:  1,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ScrapeWebsite runs one URL through the pipeline:
// fetch → extract emails → extract text → analyze.
//
// A fetch failure is terminal and yields a failure result. Emails are
// extracted from the raw markup before any text extraction, so mailto:
// links and attribute values are caught. An analysis failure leaves the
// analysis empty but the page still succeeds.
func (s *Scraper) ScrapeWebsite(ctx context.Context, url, prompt string) report.PageResult {
	body, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		log.Error("fetch failed", "url", url, "error", err)
		return report.Failure(url, err)
	}

	emails := extract.Emails(body)

	text, err := extract.Markdown(body)
	if err != nil {
		log.Debug("markdown conversion failed, falling back to plain text", "url", url, "error", err)
		text = extract.Text(body)
	}

	analysis, err := s.analyzer.Analyze(ctx, text, prompt)
	if err != nil {
		log.Warn("analysis failed, keeping page without analysis", "url", url, "error", err)
		analysis = ""
	}

	log.Debug("page scraped", "url", url, "emails", len(emails))
	return report.Success(url, emails, analysis)
}

// BulkScrape runs every URL through the pipeline and returns the table of
// successful results in input order. Failed URLs are logged and dropped
// from the table. With more than one worker the fetcher's shared rate
// gate still bounds the overall request rate.
func (s *Scraper) BulkScrape(ctx context.Context, urls []string, prompt string) *report.Table {
	table := report.NewTable()
	if len(urls) == 0 {
		return table
	}

	var spin *spinner.Spinner
	if s.progress {
		spin = spinner.New(spinner.CharSets[9], 100*time.Millisecond)
		spin.Suffix = fmt.Sprintf(" scraping %d pages...", len(urls))
		spin.Start()
		defer spin.Stop()
	}

	results := make([]report.PageResult, len(urls))
	if s.workers <= 1 {
		for i, url := range urls {
			results[i] = s.ScrapeWebsite(ctx, url, prompt)
		}
	} else {
		s.scrapeParallel(ctx, urls, prompt, results)
	}

	for _, r := range results {
		if !r.Success {
			log.Error("dropping failed URL from results", "url", r.URL, "error", r.Err)
			continue
		}
		table.Append(r)
	}

	log.Info("bulk scrape complete", "urls", len(urls), "rows", table.Len())
	return table
}

// scrapeParallel fans urls out over the worker pool, writing each result
// to its input index so output order is stable.
func (s *Scraper) scrapeParallel(ctx context.Context, urls []string, prompt string, results []report.PageResult) {
	workers := s.workers
	if workers > len(urls) {
		workers = len(urls)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = s.ScrapeWebsite(ctx, urls[i], prompt)
			}
		}()
	}

	for i := range urls {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
}

// SearchAndAnalyze composes the full pipeline: search the web, then bulk
// scrape the result URLs. A search transport failure degrades to an empty
// table; zero search results short-circuit before any fetch is attempted.
func (s *Scraper) SearchAndAnalyze(ctx context.Context, query, prompt string, maxResults int) (*report.Table, error) {
	if s.searcher == nil {
		return nil, fmt.Errorf("scrape: no searcher configured")
	}

	results, err := s.searcher.Search(ctx, query, maxResults)
	if err != nil {
		log.Error("search failed", "query", query, "error", err)
		return report.NewTable(), nil
	}

	urls := search.URLs(results)
	if len(urls) == 0 {
		log.Warn("no search results found", "query", query)
		return report.NewTable(), nil
	}

	log.Info("search returned results", "query", query, "urls", len(urls))
	return s.BulkScrape(ctx, urls, prompt), nil
}
