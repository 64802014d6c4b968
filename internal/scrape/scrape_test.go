package scrape

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const sampleTable = `<html><body>
<p>Intro text</p>
<table class="plain"><tr><td>ignored</td></tr></table>
<table class="wikitable sortable">
<tr><th> Rank </th><th>Name</th><th>Value</th></tr>
<tr><td>1</td><td>Alpha</td><td> 10 </td></tr>
<tr></tr>
<tr><td>2</td><td>Beta</td><td>20</td></tr>
</table>
</body></html>`

func TestExtractTableHeadersAndRows(t *testing.T) {
	table, err := ExtractTable(strings.NewReader(sampleTable), 100)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	wantHeaders := []string{"Rank", "Name", "Value"}
	if len(table.Headers) != len(wantHeaders) {
		t.Fatalf("expected %d headers, got %v", len(wantHeaders), table.Headers)
	}
	for i, h := range wantHeaders {
		if table.Headers[i] != h {
			t.Fatalf("header %d: expected %q, got %q", i, h, table.Headers[i])
		}
	}
	if len(table.Rows) != 2 {
		t.Fatalf("expected 2 rows (empty row skipped), got %d: %v", len(table.Rows), table.Rows)
	}
	if table.Rows[0][2] != "10" {
		t.Fatalf("expected trimmed cell %q, got %q", "10", table.Rows[0][2])
	}
	if table.Rows[1][1] != "Beta" {
		t.Fatalf("expected %q, got %q", "Beta", table.Rows[1][1])
	}
}

func TestExtractTableRowCap(t *testing.T) {
	var b strings.Builder
	b.WriteString(`<table class="wikitable"><tr><th>N</th></tr>`)
	for i := 0; i < 50; i++ {
		fmt.Fprintf(&b, "<tr><td>%d</td></tr>", i)
	}
	b.WriteString(`</table>`)

	table, err := ExtractTable(strings.NewReader(b.String()), 10)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(table.Rows) != 10 {
		t.Fatalf("expected rows truncated at 10, got %d", len(table.Rows))
	}
}

func TestExtractTableNoQualifyingTable(t *testing.T) {
	in := `<html><body><table class="plain"><tr><td>x</td></tr></table></body></html>`
	table, err := ExtractTable(strings.NewReader(in), 100)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if !table.Empty() {
		t.Fatalf("expected empty table, got %+v", table)
	}
}

func TestShouldScrape(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"compare populations from https://en.wikipedia.org/wiki/List", true},
		{"please SCRAPE https://example.org/data", true},
		{"Scrape this page", true},
		{"analyze the attached CSV", false},
		{"visit Wikipedia.org for details", false}, // domain match is case-sensitive
	}
	for _, tc := range cases {
		if got := ShouldScrape(tc.in); got != tc.want {
			t.Fatalf("ShouldScrape(%q): expected %v, got %v", tc.in, tc.want, got)
		}
	}
}

func TestFirstURL(t *testing.T) {
	url, ok := FirstURL("scrape https://example.org/table and compute the average")
	if !ok {
		t.Fatalf("expected a URL")
	}
	if url != "https://example.org/table" {
		t.Fatalf("expected %q, got %q", "https://example.org/table", url)
	}

	if _, ok := FirstURL("scrape the usual page"); ok {
		t.Fatalf("expected no URL")
	}
}

func TestFirstURLEarliestWinsAcrossSchemes(t *testing.T) {
	url, ok := FirstURL("scrape http://first.example/a then see https://second.example/b")
	if !ok {
		t.Fatalf("expected a URL")
	}
	if url != "http://first.example/a" {
		t.Fatalf("expected earliest URL by position, got %q", url)
	}

	url, ok = FirstURL("see https://first.example/a before http://second.example/b")
	if !ok {
		t.Fatalf("expected a URL")
	}
	if url != "https://first.example/a" {
		t.Fatalf("expected earliest URL by position, got %q", url)
	}
}

type failRoundTripper struct{ t *testing.T }

func (f failRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	f.t.Fatalf("unexpected network fetch")
	return nil, nil
}

func TestCollectTriggerWithoutURLSkipsFetch(t *testing.T) {
	s := New(WithHTTPClient(&http.Client{Transport: failRoundTripper{t}}))
	got := s.Collect(context.Background(), "scrape the table mentioned earlier")
	if got != "" {
		t.Fatalf("expected empty scraped data, got %q", got)
	}
}

func TestCollectNoTriggerSkipsFetch(t *testing.T) {
	s := New(WithHTTPClient(&http.Client{Transport: failRoundTripper{t}}))
	got := s.Collect(context.Background(), "average of column X in https://example.org/data.csv")
	if got != "" {
		t.Fatalf("expected empty scraped data, got %q", got)
	}
}

func TestCollectFetchFailureIsSoft(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close() // connection refused from here on

	s := New(WithTimeout(2 * time.Second))
	got := s.Collect(context.Background(), "scrape "+url+" and compute the average of column X")
	if got == "" {
		t.Fatalf("expected an error description, got empty")
	}
	if !strings.Contains(got, url) || !strings.Contains(got, "failed") {
		t.Fatalf("expected soft failure text naming the URL, got %q", got)
	}
}

func TestCollectStatusFailureIsSoft(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	s := New()
	got := s.Collect(context.Background(), "scrape "+srv.URL)
	if !strings.Contains(got, "403") {
		t.Fatalf("expected status in failure text, got %q", got)
	}
}

func TestCollectExtractsAndSerializes(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		fmt.Fprint(w, sampleTable)
	}))
	defer srv.Close()

	s := New(WithMaxRows(50))
	got := s.Collect(context.Background(), "scrape "+srv.URL+" and summarize")
	if !strings.HasPrefix(got, "Source: "+srv.URL) {
		t.Fatalf("expected source prefix, got %q", got)
	}
	lines := strings.Split(strings.TrimRight(got, "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected source + header + 2 rows, got %d lines: %q", len(lines), got)
	}
	if lines[1] != "Rank,Name,Value" {
		t.Fatalf("expected comma-joined headers, got %q", lines[1])
	}
	if lines[2] != "1,Alpha,10" {
		t.Fatalf("expected comma-joined row, got %q", lines[2])
	}
	if !strings.Contains(gotUA, "Mozilla") {
		t.Fatalf("expected browser User-Agent, got %q", gotUA)
	}
}

func TestCollectNoTableYieldsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><body><p>no tables here</p></body></html>")
	}))
	defer srv.Close()

	s := New()
	if got := s.Collect(context.Background(), "scrape "+srv.URL); got != "" {
		t.Fatalf("expected empty scraped data, got %q", got)
	}
}
