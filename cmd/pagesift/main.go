// Package main provides the pagesift binary entry point.
// Pagesift searches the web, scrapes the result pages under a shared rate
// limit, extracts contact emails, analyzes each page with a language
// model, and writes the results to a CSV table.
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/pagesift/pagesift/analyze"
	"github.com/pagesift/pagesift/config"
	"github.com/pagesift/pagesift/fetch"
	"github.com/pagesift/pagesift/report"
	"github.com/pagesift/pagesift/scrape"
	"github.com/pagesift/pagesift/search"
)

const (
	Version = "0.1.0"
	appName = "pagesift"
)

func main() {
	// .env is optional; deployed environments set variables directly.
	_ = godotenv.Load()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   appName,
		Short: "AI-assisted web page harvesting",
		Long: appName + ` searches the web for a query, fetches each result page
under a shared rate limit, extracts contact emails from the raw markup,
analyzes the page text with a language model, and writes the successful
results to a CSV table.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				log.SetLevel(log.DebugLevel)
			}
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(searchCmd())
	cmd.AddCommand(scrapeCmd())
	cmd.AddCommand(versionCmd())

	return cmd
}

func searchCmd() *cobra.Command {
	var (
		prompt     string
		maxResults int
		output     string
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the web and analyze the result pages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if output != "" {
				cfg.OutputDir = ""
				cfg.CSVFilename = output
			}

			scraper, err := newScraper(cfg, true)
			if err != nil {
				return err
			}

			table, err := scraper.SearchAndAnalyze(cmd.Context(), args[0], prompt, maxResults)
			if err != nil {
				return err
			}

			return persistAndPrint(table, cfg)
		},
	}

	cmd.Flags().StringVarP(&prompt, "prompt", "p", defaultPrompt, "instruction prompt for the analysis model")
	cmd.Flags().IntVarP(&maxResults, "max-results", "n", 5, "maximum number of search results to process")
	cmd.Flags().StringVarP(&output, "output", "o", "", "CSV output path (overrides OUTPUT_DIR/CSV_FILENAME)")

	return cmd
}

func scrapeCmd() *cobra.Command {
	var (
		prompt string
		output string
	)

	cmd := &cobra.Command{
		Use:   "scrape <url>...",
		Short: "Scrape and analyze explicit URLs without searching",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if output != "" {
				cfg.OutputDir = ""
				cfg.CSVFilename = output
			}

			scraper, err := newScraper(cfg, false)
			if err != nil {
				return err
			}

			table := scraper.BulkScrape(cmd.Context(), args, prompt)
			return persistAndPrint(table, cfg)
		},
	}

	cmd.Flags().StringVarP(&prompt, "prompt", "p", defaultPrompt, "instruction prompt for the analysis model")
	cmd.Flags().StringVarP(&output, "output", "o", "", "CSV output path (overrides OUTPUT_DIR/CSV_FILENAME)")

	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s %s\n", appName, Version)
		},
	}
}

const defaultPrompt = `Analyze this content and identify:
1. The type of business or organization
2. Key contact persons and their roles
3. Contact information
Format your response as short markdown.`

// newScraper wires the pipeline from configuration. Missing credentials
// abort here, before any network activity. withSearch controls whether
// search credentials are required.
func newScraper(cfg *config.Config, withSearch bool) (*scrape.Scraper, error) {
	var searcher scrape.Searcher
	if withSearch {
		client, err := search.New(cfg.SearchAPIKey, cfg.SearchEngineID, search.WithTimeout(cfg.Timeout))
		if err != nil {
			return nil, err
		}
		searcher = client
	}

	analyzerOpts := []analyze.Option{
		analyze.WithModel(cfg.Model),
		analyze.WithMaxChars(cfg.MaxAnalysisChars),
	}
	if cfg.OpenAIBaseURL != "" {
		analyzerOpts = append(analyzerOpts, analyze.WithBaseURL(cfg.OpenAIBaseURL))
	}
	analyzer, err := analyze.New(cfg.OpenAIAPIKey, analyzerOpts...)
	if err != nil {
		return nil, err
	}

	fetcher := fetch.New(
		fetch.WithRequestsPerSecond(cfg.RequestsPerSecond),
		fetch.WithTimeout(cfg.Timeout),
	)

	return scrape.New(searcher, fetcher, analyzer,
		scrape.WithWorkers(cfg.Workers),
		scrape.WithProgress(true),
	), nil
}

// persistAndPrint writes the table to the configured CSV path and prints
// a per-row summary to stdout.
func persistAndPrint(table *report.Table, cfg *config.Config) error {
	path := cfg.CSVPath()
	if err := table.WriteCSV(path); err != nil {
		return err
	}
	log.Info("results written", "path", path, "rows", table.Len())

	if table.Len() == 0 {
		fmt.Println("No results found.")
		return nil
	}

	for _, row := range table.Rows() {
		fmt.Printf("\nURL: %s\n", row.URL)
		fmt.Printf("Emails found: %s\n", row.Emails)
		fmt.Printf("Analysis:\n%s\n", row.Analysis)
		fmt.Println("--------------------------------------------------------------------------------")
	}
	return nil
}
