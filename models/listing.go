package models

import "time"

// Listing is one rental advert scraped from a detail page.
// Link is the natural key; it is unique within a run's output.
type Listing struct {
	Link        string    `json:"link"`
	Title       string    `json:"title"`
	Region      string    `json:"region"`
	Address     string    `json:"address"`
	Description string    `json:"description"`
	Price       string    `json:"price"`
	Bedrooms    int       `json:"bedrooms"`
	Area        string    `json:"area"`
	Photos      []string  `json:"photos"`
	CollectedAt time.Time `json:"collected_at"`
}

// RunSummary counts what happened during one collection run.
type RunSummary struct {
	RunID       string
	Discovered  int
	Attempted   int
	Succeeded   int
	FetchFailed int
	ParseFailed int
	StartedAt   time.Time
	FinishedAt  time.Time
}

// Failed is the number of attempted units that produced no record.
func (s RunSummary) Failed() int {
	return s.Attempted - s.Succeeded
}

// InsightReport holds the computed analytics over the collected dataset.
type InsightReport struct {
	Summary          RunSummary
	TotalListings    int
	WithPhotos       int
	WithPrice        int
	TotalPhotos      int
	AverageBedrooms  float64
	ListingsByRegion map[string]int
	BedroomHistogram map[int]int
	MostPhotographed *Listing
}
