// Package search provides a Google Custom Search client used to turn a
// natural-language query into an ordered list of result URLs.
//
// The main entry point is [New], which fails fast when the required
// credentials are missing, followed by [Client.Search]. A response without
// an "items" array is a valid empty result, not an error; only transport
// failures and non-2xx statuses are reported as errors so the caller can
// decide between aborting and degrading to an empty result set.
package search

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pagesift/pagesift/internal/utils"
)

const (
	defaultBaseURL = "https://www.googleapis.com"

	// MaxResultsPerCall is the Custom Search API per-call result cap.
	MaxResultsPerCall = 10

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second
)

// ErrMissingCredentials is returned by [New] when the API key or the search
// engine identifier is empty.
var ErrMissingCredentials = errors.New("search: Custom Search API key and search engine ID are required")

// Client calls the Google Custom Search JSON API.
type Client struct {
	apiKey     string
	engineID   string
	baseURL    string
	httpClient *http.Client
}

// Option configures a [Client].
type Option func(*Client)

// WithBaseURL overrides the API base URL. Intended for tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithTimeout sets the HTTP request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// New returns a [Client] for the given API key and search engine (cx)
// identifier. It returns [ErrMissingCredentials] when either is empty, so
// a misconfigured run aborts before any network activity.
func New(apiKey, engineID string, opts ...Option) (*Client, error) {
	if apiKey == "" || engineID == "" {
		return nil, ErrMissingCredentials
	}

	c := &Client{
		apiKey:     apiKey,
		engineID:   engineID,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Result holds a single search hit.
type Result struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet,omitempty"`
}

// apiResponse mirrors the Custom Search JSON API response shape. Only the
// fields the pipeline consumes are mapped; "items" is absent entirely when
// the query matched nothing.
type apiResponse struct {
	Items []apiItem `json:"items"`
}

type apiItem struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

// Search runs query against the Custom Search API and returns the ordered
// results. maxResults is clamped to [MaxResultsPerCall]; non-positive
// values request the cap. A response with no items yields an empty slice
// and a nil error.
func (c *Client) Search(ctx context.Context, query string, maxResults int) ([]Result, error) {
	if query == "" {
		return nil, fmt.Errorf("search: query cannot be empty")
	}

	count := maxResults
	if count <= 0 || count > MaxResultsPerCall {
		count = MaxResultsPerCall
	}

	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("cx", c.engineID)
	params.Set("q", query)
	params.Set("num", strconv.Itoa(count))

	fullURL := fmt.Sprintf("%s/customsearch/v1?%s", c.baseURL, params.Encode())

	// Credentials travel in the query string, so no bearer token is set.
	_, resp, err := utils.DoGetJSON[apiResponse](ctx, c.httpClient, fullURL, "")
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	results := make([]Result, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.Link == "" {
			continue
		}
		results = append(results, Result{
			Title:   item.Title,
			Link:    item.Link,
			Snippet: item.Snippet,
		})
	}
	return results, nil
}

// URLs flattens results into their links, preserving order and dropping
// duplicates.
func URLs(results []Result) []string {
	seen := make(map[string]bool, len(results))
	urls := make([]string, 0, len(results))
	for _, r := range results {
		if seen[r.Link] {
			continue
		}
		seen[r.Link] = true
		urls = append(urls, r.Link)
	}
	return urls
}
