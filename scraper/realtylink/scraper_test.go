package realtylink

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"realtylink-scraper/config"
	"realtylink-scraper/utils"
)

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		BaseURL:        baseURL,
		SearchPath:     "/en/properties~for-rent",
		PageStride:     20,
		MaxConcurrency: 4,
		MaxRetries:     1,
		RetryBaseDelay: time.Millisecond,
		FetchTimeout:   5 * time.Second,
		UserAgent:      "test-agent",
	}
}

func TestScrapeEndToEnd(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/en/rent/1", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(listingPage("First")))
	})
	mux.HandleFunc("/en/rent/2", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(listingPage("Second")))
	})
	mux.HandleFunc("/en/rent/3", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "removed", http.StatusGone)
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	driver := &fixtureDriver{pages: map[int]string{
		0:  resultsPage("/en/rent/1", "/en/rent/2", "/en/rent/1"),
		20: resultsPage("/en/rent/3"),
		40: resultsPage(),
	}}

	s, err := New(testConfig(ts.URL), driver, NewHTTPFetcher(5*time.Second), utils.NewDiscardLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	listings, summary, err := s.Scrape(context.Background())
	if err != nil {
		t.Fatalf("Scrape: %v", err)
	}
	if summary.Discovered != 3 || summary.Attempted != 3 || summary.Succeeded != 2 || summary.FetchFailed != 1 {
		t.Errorf("summary: %+v", summary)
	}

	var titles []string
	for _, l := range listings {
		if !strings.HasPrefix(l.Link, ts.URL) {
			t.Errorf("link not absolute: %s", l.Link)
		}
		titles = append(titles, l.Title)
	}
	sort.Strings(titles)
	if len(titles) != 2 || titles[0] != "First" || titles[1] != "Second" {
		t.Errorf("titles: got %v", titles)
	}
}

func TestScrapeDiscoveryFailureAborts(t *testing.T) {
	driver := &fixtureDriver{failures: map[int]error{0: errors.New("browser gone")}}

	s, err := New(testConfig("https://realtylink.org"), driver, NewHTTPFetcher(time.Second), utils.NewDiscardLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	listings, _, err := s.Scrape(context.Background())
	var de *DiscoveryError
	if !errors.As(err, &de) {
		t.Fatalf("expected DiscoveryError, got %v", err)
	}
	if listings != nil {
		t.Errorf("expected no listings, got %d", len(listings))
	}
}
