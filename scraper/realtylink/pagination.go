package realtylink

import (
	"context"
	"errors"

	"realtylink-scraper/utils"
)

const maxConsecutivePageErrors = 3

// WalkerOptions tunes a PaginationWalker.
type WalkerOptions struct {
	// Stride is the offset increment between result pages.
	Stride int
	// MaxLinks stops discovery once this many links are known. 0 means no cap.
	MaxLinks int
	// SkipPageErrors logs and skips a page that fails to render instead of
	// aborting. A run of maxConsecutivePageErrors failures still aborts.
	SkipPageErrors bool
}

// PaginationWalker drives a PageDriver across result pages and accumulates
// detail links.
type PaginationWalker struct {
	driver    PageDriver
	extractor *LinkExtractor
	opts      WalkerOptions
	logger    *utils.Logger
}

func NewPaginationWalker(driver PageDriver, extractor *LinkExtractor, opts WalkerOptions, logger *utils.Logger) *PaginationWalker {
	if opts.Stride < 1 {
		opts.Stride = 1
	}
	return &PaginationWalker{driver: driver, extractor: extractor, opts: opts, logger: logger}
}

// DiscoverLinks walks result pages from offset 0 until a page contributes no
// new links or the driver reports ErrNoMorePages. The result is sorted.
//
// A page that is legitimately empty mid-listing ends the walk early; the site
// is assumed not to produce gaps.
func (w *PaginationWalker) DiscoverLinks(ctx context.Context) ([]string, error) {
	links := utils.NewURLSet()
	failures := 0

	for offset := 0; ; offset += w.opts.Stride {
		if err := ctx.Err(); err != nil {
			return nil, &DiscoveryError{Offset: offset, Err: err}
		}

		html, err := w.driver.Render(ctx, offset)
		if errors.Is(err, ErrNoMorePages) {
			w.logger.Info("[discovery] No page at offset %d, stopping", offset)
			break
		}
		if err != nil {
			failures++
			if !w.opts.SkipPageErrors || failures >= maxConsecutivePageErrors {
				return nil, &DiscoveryError{Offset: offset, Err: err}
			}
			w.logger.Warn("[discovery] Skipping offset %d after render failure: %v", offset, err)
			continue
		}
		failures = 0

		found := w.extractor.Extract(html)
		added := 0
		for _, link := range found {
			if links.Add(link) {
				added++
			}
			if w.opts.MaxLinks > 0 && links.Size() >= w.opts.MaxLinks {
				w.logger.Info("[discovery] Reached link cap of %d at offset %d", w.opts.MaxLinks, offset)
				return links.Sorted(), nil
			}
		}

		w.logger.Info("[discovery] Offset %d: %d links on page, %d new, %d total",
			offset, len(found), added, links.Size())

		if added == 0 {
			break
		}
	}

	return links.Sorted(), nil
}
