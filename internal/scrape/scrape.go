package scrape

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"
)

const (
	// MaxBodySize caps the fetched page body (10MB).
	MaxBodySize = 10 * 1024 * 1024

	defaultTimeout = 10 * time.Second
	defaultMaxRows = 100

	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	triggerDomain = "wikipedia.org"
	triggerToken  = "scrape"
)

// Table holds the headers and rows extracted from the first qualifying
// table on the fetched page. Rows never exceed the configured cap.
type Table struct {
	SourceURL string
	Headers   []string
	Rows      [][]string
}

// Empty reports whether extraction found nothing usable.
func (t Table) Empty() bool {
	return len(t.Headers) == 0 && len(t.Rows) == 0
}

// Text serializes the table as comma-joined lines prefixed with the source
// URL, ready for embedding into a prompt.
func (t Table) Text() string {
	var b strings.Builder
	b.WriteString("Source: ")
	b.WriteString(t.SourceURL)
	b.WriteString("\n")
	if len(t.Headers) > 0 {
		b.WriteString(strings.Join(t.Headers, ","))
		b.WriteString("\n")
	}
	for _, row := range t.Rows {
		b.WriteString(strings.Join(row, ","))
		b.WriteString("\n")
	}
	return b.String()
}

// Scraper fetches and extracts tabular data referenced by request text.
// Failures are always soft: the returned payload carries a human-readable
// error string instead, so the pipeline degrades gracefully.
type Scraper struct {
	client  *http.Client
	maxRows int
}

// Option configures a Scraper.
type Option func(*Scraper)

// WithTimeout bounds the fetch; non-positive values keep the default.
func WithTimeout(d time.Duration) Option {
	return func(s *Scraper) {
		if d > 0 {
			s.client.Timeout = d
		}
	}
}

// WithMaxRows caps extracted rows; non-positive values keep the default.
func WithMaxRows(n int) Option {
	return func(s *Scraper) {
		if n > 0 {
			s.maxRows = n
		}
	}
}

// WithHTTPClient swaps the underlying client, mainly for tests.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Scraper) {
		if c != nil {
			s.client = c
		}
	}
}

// New constructs a Scraper with a bounded-timeout HTTP client.
func New(opts ...Option) *Scraper {
	s := &Scraper{
		client:  &http.Client{Timeout: defaultTimeout},
		maxRows: defaultMaxRows,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ShouldScrape reports whether the request text asks for live data: either
// it names the scrapable domain (case-sensitive) or contains the word
// "scrape" in any casing.
func ShouldScrape(questions string) bool {
	if strings.Contains(questions, triggerDomain) {
		return true
	}
	return strings.Contains(strings.ToLower(questions), triggerToken)
}

// FirstURL extracts the first http(s) URL-shaped substring from text,
// earliest by position regardless of scheme.
func FirstURL(text string) (string, bool) {
	start := -1
	for _, scheme := range []string{"https://", "http://"} {
		if idx := strings.Index(text, scheme); idx >= 0 && (start < 0 || idx < start) {
			start = idx
		}
	}
	if start < 0 {
		return "", false
	}
	rest := text[start:]
	if end := strings.IndexFunc(rest, isSpace); end >= 0 {
		rest = rest[:end]
	}
	return rest, true
}

func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r':
		return true
	}
	return false
}

// Collect inspects the request text and, when triggered, fetches and
// extracts the referenced table. The returned string is the scraped-data
// block for the prompt: table text on success, an error description on
// fetch failure, and "" when scraping does not apply.
func (s *Scraper) Collect(ctx context.Context, questions string) string {
	if !ShouldScrape(questions) {
		return ""
	}
	url, ok := FirstURL(questions)
	if !ok {
		// Trigger without a URL is not an error; scraping is skipped.
		return ""
	}

	table, err := s.Fetch(ctx, url)
	if err != nil {
		return fmt.Sprintf("Scraping %s failed: %v", url, err)
	}
	if table.Empty() {
		return ""
	}
	return table.Text()
}

// Fetch issues a single GET and extracts the first qualifying table.
func (s *Scraper) Fetch(ctx context.Context, url string) (Table, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Table{}, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return Table{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Table{}, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	table, err := ExtractTable(io.LimitReader(resp.Body, MaxBodySize), s.maxRows)
	if err != nil {
		return Table{}, err
	}
	table.SourceURL = url
	return table, nil
}

// ExtractTable performs a single-pass traversal of the HTML body, locating
// the first table whose class marks it as a wiki-style/sortable table. The
// first row supplies headers; subsequent non-empty rows supply data rows,
// truncated at maxRows.
func ExtractTable(body io.Reader, maxRows int) (Table, error) {
	if maxRows <= 0 {
		maxRows = defaultMaxRows
	}

	var table Table
	z := html.NewTokenizer(body)

	inTable := false
	inCell := false
	depth := 0
	var row []string
	var cell strings.Builder
	sawHeader := false

	flushCell := func() {
		if inCell {
			row = append(row, strings.TrimSpace(cell.String()))
			cell.Reset()
			inCell = false
		}
	}
	flushRow := func() {
		flushCell()
		if len(row) == 0 {
			return
		}
		if !sawHeader {
			table.Headers = row
			sawHeader = true
		} else if len(table.Rows) < maxRows {
			table.Rows = append(table.Rows, row)
		}
		row = nil
	}

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				return table, nil
			}
			return Table{}, z.Err()

		case html.StartTagToken:
			tn, hasAttr := z.TagName()
			tag := string(tn)
			switch tag {
			case "table":
				if inTable {
					depth++
					continue
				}
				if hasAttr && hasTableMarker(z) {
					inTable = true
					depth = 1
				}
			case "tr":
				if inTable && depth == 1 {
					flushRow()
				}
			case "th", "td":
				if inTable && depth == 1 {
					flushCell()
					inCell = true
				}
			}

		case html.EndTagToken:
			tn, _ := z.TagName()
			switch string(tn) {
			case "table":
				if inTable {
					depth--
					if depth == 0 {
						flushRow()
						return table, nil
					}
				}
			case "tr":
				if inTable && depth == 1 {
					flushRow()
				}
			case "th", "td":
				if inTable && depth == 1 {
					flushCell()
				}
			}

		case html.TextToken:
			if inCell {
				cell.Write(z.Text())
			}
		}
	}
}

func hasTableMarker(z *html.Tokenizer) bool {
	for {
		key, val, more := z.TagAttr()
		if string(key) == "class" {
			classes := strings.ToLower(string(val))
			if strings.Contains(classes, "wikitable") || strings.Contains(classes, "sortable") {
				return true
			}
		}
		if !more {
			return false
		}
	}
}
