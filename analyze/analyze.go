// Package analyze sends page text to an OpenAI-compatible chat endpoint
// and returns the model's free-text answer to a caller-supplied prompt.
//
// Content is truncated to a fixed character budget before the request is
// built, so oversized pages never trip the model's input limits. There
// are no retries: one failed call marks that page's analysis as absent
// and the caller moves on.
package analyze

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"github.com/pagesift/pagesift/internal/utils"
)

const (
	// DefaultModel is the chat model used when none is configured.
	DefaultModel = openai.GPT4oMini

	// DefaultMaxChars is the default truncation budget for page content.
	DefaultMaxChars = 4000

	// systemPrompt frames every analysis request.
	systemPrompt = "You are a content analyzer. You examine web page content and answer the user's instructions about it accurately and concisely."
)

// ErrMissingAPIKey is returned by [New] when no API key is provided.
var ErrMissingAPIKey = errors.New("analyze: OpenAI API key is required")

// Analyzer issues chat-completion requests for page analysis.
type Analyzer struct {
	client   *openai.Client
	model    string
	maxChars int

	baseURL    string
	httpClient *http.Client
}

// Option configures an [Analyzer].
type Option func(*Analyzer)

// WithModel overrides [DefaultModel].
func WithModel(model string) Option {
	return func(a *Analyzer) {
		if model != "" {
			a.model = model
		}
	}
}

// WithBaseURL points the client at an OpenAI-compatible endpoint, e.g. a
// proxy or a test server. The path must include the API version prefix
// ("/v1").
func WithBaseURL(baseURL string) Option {
	return func(a *Analyzer) {
		a.baseURL = baseURL
	}
}

// WithMaxChars sets the truncation budget for page content. Non-positive
// values keep [DefaultMaxChars].
func WithMaxChars(maxChars int) Option {
	return func(a *Analyzer) {
		if maxChars > 0 {
			a.maxChars = maxChars
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(a *Analyzer) {
		a.httpClient = httpClient
	}
}

// New returns an [Analyzer] for the given API key. It returns
// [ErrMissingAPIKey] when the key is empty, so a misconfigured run aborts
// before any network activity.
func New(apiKey string, opts ...Option) (*Analyzer, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	a := &Analyzer{
		model:    DefaultModel,
		maxChars: DefaultMaxChars,
	}
	for _, opt := range opts {
		opt(a)
	}

	cfg := openai.DefaultConfig(apiKey)
	if a.baseURL != "" {
		cfg.BaseURL = a.baseURL
	}
	if a.httpClient != nil {
		cfg.HTTPClient = a.httpClient
	}
	a.client = openai.NewClientWithConfig(cfg)

	return a, nil
}

// MaxChars returns the configured truncation budget.
func (a *Analyzer) MaxChars() int {
	return a.maxChars
}

// Analyze sends content and the instruction prompt to the model and
// returns the first choice's text. Content beyond the character budget is
// cut before the request is built, so the outgoing payload never exceeds
// it. A failed call returns an error; the analysis for that page is
// simply absent.
func (a *Analyzer) Analyze(ctx context.Context, content, prompt string) (string, error) {
	truncated := utils.TruncateRunes(content, a.maxChars)

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: fmt.Sprintf("%s\n\nContent: %s", prompt, truncated),
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("analyze: chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("analyze: no choices in response")
	}

	return resp.Choices[0].Message.Content, nil
}
