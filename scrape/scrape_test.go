package scrape

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagesift/pagesift/report"
	"github.com/pagesift/pagesift/search"
)

const fixturePage = `<html><body>
	<h1>Acme Corp</h1>
	<p>Contact info@acme.example for details.</p>
	<a href="mailto:jobs@acme.example">Careers</a>
</body></html>`

type fakeSearcher struct {
	results []search.Result
	err     error
	calls   int
}

func (f *fakeSearcher) Search(_ context.Context, _ string, _ int) ([]search.Result, error) {
	f.calls++
	return f.results, f.err
}

type fakeFetcher struct {
	mu      sync.Mutex
	pages   map[string]string
	errs    map[string]error
	calls   int
	fetched []string
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.fetched = append(f.fetched, url)
	if err, ok := f.errs[url]; ok {
		return "", err
	}
	if body, ok := f.pages[url]; ok {
		return body, nil
	}
	return "", errors.New("unknown url")
}

type fakeAnalyzer struct {
	answer string
	err    error
}

func (f *fakeAnalyzer) Analyze(_ context.Context, _, _ string) (string, error) {
	return f.answer, f.err
}

func TestScrapeWebsite(t *testing.T) {
	t.Run("success builds a full result", func(t *testing.T) {
		fetcher := &fakeFetcher{pages: map[string]string{"https://acme.example": fixturePage}}
		s := New(nil, fetcher, &fakeAnalyzer{answer: "A robotics company."})

		r := s.ScrapeWebsite(context.Background(), "https://acme.example", "Describe this company")
		require.True(t, r.Success)
		assert.Equal(t, "https://acme.example", r.URL)
		assert.Equal(t, report.EmailList{"info@acme.example", "jobs@acme.example"}, r.Emails)
		assert.Equal(t, "A robotics company.", r.Analysis)
	})

	t.Run("fetch failure is terminal", func(t *testing.T) {
		fetcher := &fakeFetcher{errs: map[string]error{"https://down.example": errors.New("connection refused")}}
		s := New(nil, fetcher, &fakeAnalyzer{answer: "never used"})

		r := s.ScrapeWebsite(context.Background(), "https://down.example", "prompt")
		assert.False(t, r.Success)
		assert.Contains(t, r.Err, "connection refused")
	})

	t.Run("analysis failure keeps the page with empty analysis", func(t *testing.T) {
		fetcher := &fakeFetcher{pages: map[string]string{"https://acme.example": fixturePage}}
		s := New(nil, fetcher, &fakeAnalyzer{err: errors.New("model unavailable")})

		r := s.ScrapeWebsite(context.Background(), "https://acme.example", "prompt")
		assert.True(t, r.Success)
		assert.Empty(t, r.Analysis)
		assert.Equal(t, report.EmailList{"info@acme.example", "jobs@acme.example"}, r.Emails)
	})
}

func TestBulkScrape(t *testing.T) {
	t.Run("failed URLs produce no rows and processing continues", func(t *testing.T) {
		fetcher := &fakeFetcher{
			pages: map[string]string{
				"https://a.example": fixturePage,
				"https://c.example": fixturePage,
			},
			errs: map[string]error{"https://b.example": errors.New("timeout")},
		}
		s := New(nil, fetcher, &fakeAnalyzer{answer: "ok"})

		table := s.BulkScrape(context.Background(),
			[]string{"https://a.example", "https://b.example", "https://c.example"}, "prompt")

		require.Equal(t, 2, table.Len())
		rows := table.Rows()
		assert.Equal(t, "https://a.example", rows[0].URL)
		assert.Equal(t, "https://c.example", rows[1].URL)
		assert.Equal(t, 3, fetcher.calls)
		assert.Equal(t, []string{"https://a.example", "https://b.example", "https://c.example"}, fetcher.fetched)
	})

	t.Run("empty input yields an empty table", func(t *testing.T) {
		fetcher := &fakeFetcher{}
		s := New(nil, fetcher, &fakeAnalyzer{answer: "ok"})

		table := s.BulkScrape(context.Background(), nil, "prompt")
		assert.Equal(t, 0, table.Len())
		assert.Equal(t, 0, fetcher.calls)
	})

	t.Run("worker pool preserves input order", func(t *testing.T) {
		urls := []string{
			"https://a.example", "https://b.example", "https://c.example",
			"https://d.example", "https://e.example",
		}
		pages := make(map[string]string, len(urls))
		for _, u := range urls {
			pages[u] = fixturePage
		}
		fetcher := &fakeFetcher{pages: pages}
		s := New(nil, fetcher, &fakeAnalyzer{answer: "ok"}, WithWorkers(3))

		table := s.BulkScrape(context.Background(), urls, "prompt")
		require.Equal(t, len(urls), table.Len())
		for i, r := range table.Rows() {
			assert.Equal(t, urls[i], r.URL)
		}
	})
}

func TestSearchAndAnalyze(t *testing.T) {
	t.Run("zero search results short-circuit without fetching", func(t *testing.T) {
		searcher := &fakeSearcher{}
		fetcher := &fakeFetcher{}
		s := New(searcher, fetcher, &fakeAnalyzer{answer: "ok"})

		table, err := s.SearchAndAnalyze(context.Background(), "obscure query", "prompt", 5)
		require.NoError(t, err)
		assert.Equal(t, 0, table.Len())
		assert.Equal(t, 1, searcher.calls)
		assert.Equal(t, 0, fetcher.calls)
	})

	t.Run("search transport failure degrades to an empty table", func(t *testing.T) {
		searcher := &fakeSearcher{err: errors.New("503 from provider")}
		fetcher := &fakeFetcher{}
		s := New(searcher, fetcher, &fakeAnalyzer{answer: "ok"})

		table, err := s.SearchAndAnalyze(context.Background(), "query", "prompt", 5)
		require.NoError(t, err)
		assert.Equal(t, 0, table.Len())
		assert.Equal(t, 0, fetcher.calls)
	})

	t.Run("full pipeline produces one row per successful URL", func(t *testing.T) {
		searcher := &fakeSearcher{results: []search.Result{
			{Link: "https://a.example"},
			{Link: "https://b.example"},
			{Link: "https://a.example"}, // provider duplicate
		}}
		fetcher := &fakeFetcher{pages: map[string]string{
			"https://a.example": fixturePage,
			"https://b.example": `<p>no emails here</p>`,
		}}
		s := New(searcher, fetcher, &fakeAnalyzer{answer: "the analysis"})

		table, err := s.SearchAndAnalyze(context.Background(), "acme", "prompt", 5)
		require.NoError(t, err)
		require.Equal(t, 2, table.Len())

		rows := table.Rows()
		assert.Equal(t, "https://a.example", rows[0].URL)
		assert.Equal(t, report.EmailList{"info@acme.example", "jobs@acme.example"}, rows[0].Emails)
		assert.Equal(t, "the analysis", rows[0].Analysis)
		assert.Empty(t, rows[1].Emails)

		// Duplicate search hits are fetched once.
		assert.Equal(t, 2, fetcher.calls)
	})

	t.Run("nil searcher is an error", func(t *testing.T) {
		s := New(nil, &fakeFetcher{}, &fakeAnalyzer{})
		_, err := s.SearchAndAnalyze(context.Background(), "q", "p", 5)
		require.Error(t, err)
	})
}
