package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 2.0, cfg.RequestsPerSecond)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, "output", cfg.OutputDir)
	assert.Equal(t, "scraped_data.csv", cfg.CSVFilename)
	assert.Equal(t, 4000, cfg.MaxAnalysisChars)
	assert.Equal(t, 1, cfg.Workers)
}

func TestLoad(t *testing.T) {
	t.Run("empty environment keeps defaults", func(t *testing.T) {
		for _, name := range []string{
			EnvOpenAIAPIKey, EnvOpenAIBaseURL, EnvOpenAIModel,
			EnvSearchAPIKey, EnvSearchEngineID,
			EnvRequestsPerSecond, EnvTimeoutSeconds, EnvOutputDir,
			EnvCSVFilename, EnvMaxAnalysisChars, EnvWorkers,
		} {
			t.Setenv(name, "")
		}

		cfg := Load()
		assert.Equal(t, Default(), cfg)
	})

	t.Run("environment overrides defaults", func(t *testing.T) {
		t.Setenv(EnvOpenAIAPIKey, "sk-test")
		t.Setenv(EnvSearchAPIKey, "search-key")
		t.Setenv(EnvSearchEngineID, "engine-123")
		t.Setenv(EnvRequestsPerSecond, "0.5")
		t.Setenv(EnvTimeoutSeconds, "10")
		t.Setenv(EnvOutputDir, "results")
		t.Setenv(EnvCSVFilename, "pages.csv")
		t.Setenv(EnvMaxAnalysisChars, "1000")
		t.Setenv(EnvWorkers, "4")

		cfg := Load()
		assert.Equal(t, "sk-test", cfg.OpenAIAPIKey)
		assert.Equal(t, "search-key", cfg.SearchAPIKey)
		assert.Equal(t, "engine-123", cfg.SearchEngineID)
		assert.Equal(t, 0.5, cfg.RequestsPerSecond)
		assert.Equal(t, 10*time.Second, cfg.Timeout)
		assert.Equal(t, "results", cfg.OutputDir)
		assert.Equal(t, "pages.csv", cfg.CSVFilename)
		assert.Equal(t, 1000, cfg.MaxAnalysisChars)
		assert.Equal(t, 4, cfg.Workers)
	})

	t.Run("unparsable numbers fall back to defaults", func(t *testing.T) {
		t.Setenv(EnvRequestsPerSecond, "fast")
		t.Setenv(EnvTimeoutSeconds, "soon")
		t.Setenv(EnvWorkers, "-3")

		cfg := Load()
		assert.Equal(t, 2.0, cfg.RequestsPerSecond)
		assert.Equal(t, 30*time.Second, cfg.Timeout)
		assert.Equal(t, 1, cfg.Workers)
	})
}

func TestCSVPath(t *testing.T) {
	cfg := Default()
	assert.Equal(t, filepath.Join("output", "scraped_data.csv"), cfg.CSVPath())
}
