// Package config provides environment-sourced configuration for pagesift.
//
// All settings have working defaults except the external API credentials,
// which are validated by the components that need them. [Load] reads the
// process environment; a .env file can be loaded beforehand (the pagesift
// binary does this automatically via godotenv).
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Environment variable names read by [Load].
const (
	EnvOpenAIAPIKey      = "OPENAI_API_KEY"
	EnvOpenAIBaseURL     = "OPENAI_API_BASE_URL"
	EnvOpenAIModel       = "OPENAI_MODEL"
	EnvSearchAPIKey      = "CUSTOM_SEARCH_API_KEY"
	EnvSearchEngineID    = "SEARCH_ENGINE_ID"
	EnvRequestsPerSecond = "MAX_REQUESTS_PER_SECOND"
	EnvTimeoutSeconds    = "TIMEOUT_SECONDS"
	EnvOutputDir         = "OUTPUT_DIR"
	EnvCSVFilename       = "CSV_FILENAME"
	EnvMaxAnalysisChars  = "MAX_ANALYSIS_CHARS"
	EnvWorkers           = "SCRAPE_WORKERS"
)

// Config holds every runtime setting of the scrape pipeline.
type Config struct {
	// OpenAIAPIKey authenticates chat-completion requests.
	OpenAIAPIKey string
	// OpenAIBaseURL overrides the OpenAI API endpoint (empty = api.openai.com).
	OpenAIBaseURL string
	// Model is the chat model identifier (empty = the analyzer's default).
	Model string
	// SearchAPIKey authenticates Google Custom Search requests.
	SearchAPIKey string
	// SearchEngineID is the Custom Search engine (cx) identifier.
	SearchEngineID string
	// RequestsPerSecond bounds outbound page fetches (default: 2).
	RequestsPerSecond float64
	// Timeout is the per-request HTTP timeout (default: 30s).
	Timeout time.Duration
	// OutputDir is the directory the result table is written to.
	OutputDir string
	// CSVFilename is the name of the CSV artifact inside OutputDir.
	CSVFilename string
	// MaxAnalysisChars is the character budget of page text forwarded to
	// the model (default: 4000).
	MaxAnalysisChars int
	// Workers is the number of concurrent scrape workers; 1 keeps the
	// pipeline strictly sequential.
	Workers int
}

// Default returns a Config with every setting at its documented default and
// no credentials.
func Default() *Config {
	return &Config{
		RequestsPerSecond: 2,
		Timeout:           30 * time.Second,
		OutputDir:         "output",
		CSVFilename:       "scraped_data.csv",
		MaxAnalysisChars:  4000,
		Workers:           1,
	}
}

// Load builds a Config from the process environment, falling back to
// [Default] values for anything unset or unparsable.
func Load() *Config {
	cfg := Default()

	cfg.OpenAIAPIKey = os.Getenv(EnvOpenAIAPIKey)
	cfg.OpenAIBaseURL = os.Getenv(EnvOpenAIBaseURL)
	cfg.Model = os.Getenv(EnvOpenAIModel)
	cfg.SearchAPIKey = os.Getenv(EnvSearchAPIKey)
	cfg.SearchEngineID = os.Getenv(EnvSearchEngineID)

	if v, ok := envFloat(EnvRequestsPerSecond); ok && v > 0 {
		cfg.RequestsPerSecond = v
	}
	if v, ok := envInt(EnvTimeoutSeconds); ok && v > 0 {
		cfg.Timeout = time.Duration(v) * time.Second
	}
	if v := os.Getenv(EnvOutputDir); v != "" {
		cfg.OutputDir = v
	}
	if v := os.Getenv(EnvCSVFilename); v != "" {
		cfg.CSVFilename = v
	}
	if v, ok := envInt(EnvMaxAnalysisChars); ok && v > 0 {
		cfg.MaxAnalysisChars = v
	}
	if v, ok := envInt(EnvWorkers); ok && v > 0 {
		cfg.Workers = v
	}

	return cfg
}

// CSVPath returns the full path of the CSV artifact.
func (c *Config) CSVPath() string {
	return filepath.Join(c.OutputDir, c.CSVFilename)
}

func envFloat(name string) (float64, bool) {
	raw := os.Getenv(name)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func envInt(name string) (int, bool) {
	raw := os.Getenv(name)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}
