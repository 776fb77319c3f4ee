// Package extract pulls contact emails and readable text out of raw HTML.
//
// [Emails] deliberately scans the unmodified markup rather than the
// visible text, so addresses inside mailto: links and element attributes
// are caught too. [Text] and [Markdown] produce the page content that is
// forwarded to the analysis model; both ignore script, style, and
// noscript content.
package extract

import (
	"regexp"
	"sort"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"golang.org/x/net/html"
)

// emailPattern matches standard email addresses. The pattern is
// intentionally permissive; deduplication happens afterwards.
var emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)

// Emails returns the set of distinct email addresses found in raw markup,
// sorted for deterministic output. It must be fed the original source,
// not extracted text: mailto: hrefs and data attributes only survive in
// the raw document.
func Emails(raw string) []string {
	matches := emailPattern.FindAllString(raw, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(matches))
	emails := make([]string, 0, len(matches))
	for _, m := range matches {
		if seen[m] {
			continue
		}
		seen[m] = true
		emails = append(emails, m)
	}
	sort.Strings(emails)
	return emails
}

// Text returns the visible text of an HTML document, with script, style,
// and noscript content skipped and whitespace collapsed to single spaces.
// Malformed markup degrades gracefully: html.Parse repairs what it can.
func Text(raw string) string {
	doc, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return ""
	}

	var builder strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript":
				return
			}
		}
		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				if builder.Len() > 0 {
					builder.WriteString(" ")
				}
				builder.WriteString(text)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return builder.String()
}

// Markdown converts an HTML document to Markdown. Markdown keeps document
// structure (headings, lists, links) that plain text loses, which gives
// the analysis model more to work with.
func Markdown(raw string) (string, error) {
	return htmltomarkdown.ConvertString(raw)
}
