// Package report models per-page scrape results and materializes them
// into tabular output files.
//
// A [Table] collects the successful [PageResult] values of one run in
// order and writes them once, overwriting any previous artifact at the
// same path. Failed pages never become rows; surfacing them is the
// driver's logging concern.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gocarina/gocsv"
)

// EmailList is a set of email addresses that serializes as a single
// "; "-joined CSV cell.
type EmailList []string

// MarshalCSV implements the gocsv marshaller.
func (e EmailList) MarshalCSV() (string, error) {
	return strings.Join(e, "; "), nil
}

// UnmarshalCSV implements the gocsv unmarshaller.
func (e *EmailList) UnmarshalCSV(csv string) error {
	if strings.TrimSpace(csv) == "" {
		*e = nil
		return nil
	}
	parts := strings.Split(csv, ";")
	emails := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			emails = append(emails, p)
		}
	}
	*e = emails
	return nil
}

// PageResult is the outcome of scraping a single URL. It is immutable
// once built; failures are discarded by the driver instead of becoming
// table rows.
type PageResult struct {
	URL      string    `csv:"url" json:"url"`
	Emails   EmailList `csv:"emails" json:"emails"`
	Analysis string    `csv:"analysis" json:"analysis,omitempty"`
	Success  bool      `csv:"success" json:"success"`
	Err      string    `csv:"-" json:"error,omitempty"`
}

// Success builds a successful result. An empty analysis means the model
// call failed for this page; the page itself still counts as scraped.
func Success(url string, emails []string, analysis string) PageResult {
	return PageResult{
		URL:      url,
		Emails:   EmailList(emails),
		Analysis: analysis,
		Success:  true,
	}
}

// Failure builds a terminal failure result for a URL that produced no row.
func Failure(url string, err error) PageResult {
	r := PageResult{URL: url}
	if err != nil {
		r.Err = err.Error()
	}
	return r
}

// Table is the ordered sequence of successful results of one run.
type Table struct {
	rows []PageResult
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{}
}

// Append adds a result to the table. Callers are expected to filter out
// failures first; Append does not second-guess them.
func (t *Table) Append(r PageResult) {
	t.rows = append(t.rows, r)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Rows returns a copy of the table's rows in insertion order.
func (t *Table) Rows() []PageResult {
	rows := make([]PageResult, len(t.rows))
	copy(rows, t.rows)
	return rows
}

// WriteCSV materializes the table to path as CSV with columns
// {url, emails, analysis, success}, creating the parent directory and
// overwriting any existing file. An empty table still writes the header
// row.
func (t *Table) WriteCSV(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("report: creating output directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("report: creating %s: %w", path, err)
	}
	defer f.Close()

	rows := t.Rows()
	if err := gocsv.MarshalFile(&rows, f); err != nil {
		return fmt.Errorf("report: writing CSV: %w", err)
	}
	return nil
}

// WriteJSON materializes the table to path as indented JSON, creating the
// parent directory and overwriting any existing file.
func (t *Table) WriteJSON(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("report: creating output directory: %w", err)
	}

	data, err := json.MarshalIndent(t.Rows(), "", "  ")
	if err != nil {
		return fmt.Errorf("report: marshaling JSON: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("report: writing %s: %w", path, err)
	}
	return nil
}
