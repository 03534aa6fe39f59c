package realtylink

import (
	"context"
	"fmt"
	"time"

	"realtylink-scraper/config"
	"realtylink-scraper/models"
	"realtylink-scraper/utils"
)

// Scraper runs discovery then collection for one run.
type Scraper struct {
	walker    *PaginationWalker
	collector *Collector
	logger    *utils.Logger
}

// New wires a Scraper from cfg around the given page driver and detail fetcher.
func New(cfg *config.Config, driver PageDriver, fetcher *HTTPFetcher, logger *utils.Logger) (*Scraper, error) {
	extractor, err := NewLinkExtractor(cfg.BaseURL, DefaultDetailLinkSelector)
	if err != nil {
		return nil, fmt.Errorf("realtylink: base url: %w", err)
	}

	walker := NewPaginationWalker(driver, extractor, WalkerOptions{
		Stride:         cfg.PageStride,
		MaxLinks:       cfg.MaxLinks,
		SkipPageErrors: cfg.SkipPageErrors,
	}, logger)

	photos := NewPhotoCollector(fetcher.Client(), cfg.PhotoEndpoint, cfg.Headers(), logger)
	collector := NewCollector(fetcher, NewRecordBuilder(photos), CollectorOptions{
		Concurrency:    cfg.MaxConcurrency,
		Headers:        cfg.Headers(),
		MaxAttempts:    cfg.MaxRetries,
		RetryBaseDelay: cfg.RetryBaseDelay,
	}, logger)

	return &Scraper{walker: walker, collector: collector, logger: logger}, nil
}

// Scrape discovers detail links and collects a Listing for each. A discovery
// failure aborts the run; per-listing failures only show up in the summary.
func (s *Scraper) Scrape(ctx context.Context) ([]*models.Listing, models.RunSummary, error) {
	started := time.Now()
	s.logger.Info("[realtylink] Discovering detail links")

	links, err := s.walker.DiscoverLinks(ctx)
	if err != nil {
		return nil, models.RunSummary{StartedAt: started, FinishedAt: time.Now()}, err
	}
	s.logger.Info("[realtylink] Discovered %d unique detail links", len(links))

	listings, summary := s.collector.Collect(ctx, links)
	summary.Discovered = len(links)
	summary.StartedAt = started
	return listings, summary, nil
}
