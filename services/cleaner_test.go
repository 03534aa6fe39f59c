package services

import (
	"testing"
	"time"

	"realtylink-scraper/models"
	"realtylink-scraper/utils"
)

func newTestLogger() *utils.Logger { return utils.NewDiscardLogger() }

func TestCleanerDropsEmptyLink(t *testing.T) {
	c := NewCleaner(newTestLogger())
	raw := []*models.Listing{
		{Title: "No link", Link: "  "},
		{Title: "Has link", Link: "https://realtylink.org/en/1", CollectedAt: time.Now()},
	}

	cleaned := c.Clean(raw)
	if len(cleaned) != 1 {
		t.Errorf("expected 1 listing after dropping empty link, got %d", len(cleaned))
	}
}

func TestCleanerDeduplicatesLink(t *testing.T) {
	c := NewCleaner(newTestLogger())
	raw := []*models.Listing{
		{Title: "A", Link: "https://realtylink.org/en/1"},
		{Title: "B", Link: "https://realtylink.org/en/1"},
		nil,
	}

	cleaned := c.Clean(raw)
	if len(cleaned) != 1 {
		t.Fatalf("expected 1 listing after deduplication, got %d", len(cleaned))
	}
	if cleaned[0].Title != "A" {
		t.Errorf("first record should win, got %q", cleaned[0].Title)
	}
}

func TestCleanerNormalisesAndSorts(t *testing.T) {
	c := NewCleaner(newTestLogger())
	raw := []*models.Listing{
		{Link: "https://realtylink.org/en/b", Description: "  Two\n\tlines  ", Photos: []string{"p2", "p1"}},
		{Link: "https://realtylink.org/en/a", Title: "Big   loft"},
	}

	cleaned := c.Clean(raw)
	if cleaned[0].Link != "https://realtylink.org/en/a" {
		t.Errorf("not sorted by link: %q first", cleaned[0].Link)
	}
	if cleaned[0].Title != "Big loft" {
		t.Errorf("Title: got %q", cleaned[0].Title)
	}
	if cleaned[1].Description != "Two lines" {
		t.Errorf("Description: got %q", cleaned[1].Description)
	}
	if cleaned[0].Photos == nil {
		t.Error("Photos should be an empty slice, not nil")
	}
	if cleaned[1].Photos[0] != "p2" {
		t.Error("photo order must be preserved")
	}
}
