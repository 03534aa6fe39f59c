package realtylink

import (
	"context"
	"errors"
	"sync"
	"time"

	"realtylink-scraper/models"
	"realtylink-scraper/utils"
)

// Collector fans fetch-then-build units out over a bounded worker pool.
type Collector struct {
	fetcher     DetailFetcher
	builder     *RecordBuilder
	headers     map[string]string
	concurrency int
	retry       *utils.RetryConfig
	logger      *utils.Logger
}

// CollectorOptions tunes a Collector.
type CollectorOptions struct {
	Concurrency int
	Headers     map[string]string
	// MaxAttempts per detail fetch. Only *FetchError is retried.
	MaxAttempts    int
	RetryBaseDelay time.Duration
}

func NewCollector(fetcher DetailFetcher, builder *RecordBuilder, opts CollectorOptions, logger *utils.Logger) *Collector {
	return &Collector{
		fetcher:     fetcher,
		builder:     builder,
		headers:     opts.Headers,
		concurrency: opts.Concurrency,
		retry: &utils.RetryConfig{
			MaxAttempts: opts.MaxAttempts,
			BaseDelay:   opts.RetryBaseDelay,
			Logger:      logger,
			Retryable:   isFetchError,
		},
		logger: logger,
	}
}

// Collect fetches and builds a Listing for every link. Failed units are
// logged, counted and left out; the returned order is unspecified.
func (c *Collector) Collect(ctx context.Context, links []string) ([]*models.Listing, models.RunSummary) {
	summary := models.RunSummary{StartedAt: time.Now()}

	var (
		mu       sync.Mutex
		listings = make([]*models.Listing, 0, len(links))
		done     = utils.NewURLSet()
	)

	pool := utils.NewWorkerPool(c.concurrency)
	for _, link := range links {
		if !done.Add(link) {
			c.logger.Debug("[collect] Duplicate link skipped: %s", link)
			continue
		}
		mu.Lock()
		summary.Attempted++
		mu.Unlock()

		pool.Submit(func() {
			listing, err := c.collectOne(ctx, link)

			mu.Lock()
			defer mu.Unlock()

			var fe *FetchError
			switch {
			case err == nil:
				listings = append(listings, listing)
				summary.Succeeded++
			case errors.As(err, &fe):
				summary.FetchFailed++
				c.logger.Warn("[collect] Dropping %s: %v", link, err)
			default:
				summary.ParseFailed++
				c.logger.Warn("[collect] Dropping %s: %v", link, err)
			}
		})
	}
	pool.Wait()

	summary.FinishedAt = time.Now()
	c.logger.Info("[collect] %d attempted, %d succeeded, %d fetch failures, %d parse failures",
		summary.Attempted, summary.Succeeded, summary.FetchFailed, summary.ParseFailed)
	return listings, summary
}

func (c *Collector) collectOne(ctx context.Context, link string) (*models.Listing, error) {
	var html string
	err := c.retry.Do(ctx, "fetch "+link, func() error {
		var err error
		html, err = c.fetcher.Fetch(ctx, link, c.headers)
		return err
	})
	if err != nil {
		if !isFetchError(err) {
			err = &FetchError{URL: link, Err: err}
		}
		return nil, err
	}

	return c.builder.Build(ctx, link, html)
}
