package realtylink

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/chromedp/chromedp"

	"realtylink-scraper/config"
	"realtylink-scraper/utils"
)

// PageDriver renders one search-results page for a pagination offset.
// It returns ErrNoMorePages when offset is beyond the last page.
type PageDriver interface {
	Render(ctx context.Context, offset int) (string, error)
}

const nextButtonSelector = `li.next a`

// ChromeDriver is a PageDriver backed by a headless Chrome session. The site
// paginates by clicking "next", so offset 0 must come first and later offsets
// must move forward in whole strides.
type ChromeDriver struct {
	searchURL string
	stride    int
	wait      time.Duration
	timeout   time.Duration
	logger    *utils.Logger

	cancelAlloc   context.CancelFunc
	cancelBrowser context.CancelFunc
	browserCtx    context.Context

	mu      sync.Mutex
	current int
}

// NewChromeDriver starts a headless browser configured from cfg.
func NewChromeDriver(cfg *config.Config, logger *utils.Logger) (*ChromeDriver, error) {
	chromeBin := cfg.ChromeBin
	if chromeBin == "" {
		chromeBin = findChromeBinary()
	}
	logger.Info("[driver] Using browser binary: %s", chromeBin)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.UserAgent(cfg.UserAgent),
	)
	if chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(chromeBin))
	}

	stride := cfg.PageStride
	if stride < 1 {
		stride = 1
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)

	// Suppress chromedp log noise
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))

	// Start the browser now so a missing binary fails here, not mid-walk.
	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, fmt.Errorf("chrome driver: start browser: %w", err)
	}

	return &ChromeDriver{
		searchURL:     cfg.SearchURL(),
		stride:        stride,
		wait:          cfg.PageWait,
		timeout:       cfg.PageTimeout,
		logger:        logger,
		cancelAlloc:   cancelAlloc,
		cancelBrowser: cancelBrowser,
		browserCtx:    browserCtx,
		current:       -1,
	}, nil
}

// Render returns the outer HTML of the results page at offset.
func (d *ChromeDriver) Render(ctx context.Context, offset int) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	runCtx, cancel := context.WithTimeout(d.browserCtx, d.timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	var html string
	switch {
	case offset == 0:
		err := chromedp.Run(runCtx,
			chromedp.Navigate(d.searchURL),
			chromedp.WaitReady("body", chromedp.ByQuery),
			chromedp.Sleep(d.wait),
			chromedp.OuterHTML("html", &html, chromedp.ByQuery),
		)
		if err != nil {
			return "", fmt.Errorf("chrome driver: load %s: %w", d.searchURL, err)
		}

	case d.current >= 0 && offset > d.current && (offset-d.current)%d.stride == 0:
		for d.current < offset {
			if err := d.clickNext(runCtx); err != nil {
				return "", err
			}
			d.current += d.stride
		}
		if err := chromedp.Run(runCtx,
			chromedp.WaitReady("body", chromedp.ByQuery),
			chromedp.OuterHTML("html", &html, chromedp.ByQuery),
		); err != nil {
			return "", fmt.Errorf("chrome driver: page at offset %d: %w", offset, err)
		}

	default:
		return "", fmt.Errorf("chrome driver: cannot move from offset %d to %d", d.current, offset)
	}

	d.current = offset
	d.logger.Debug("[driver] Rendered offset %d (%d bytes)", offset, len(html))
	return html, nil
}

// clickNext advances the results listing by one page.
func (d *ChromeDriver) clickNext(ctx context.Context) error {
	var hasNext bool
	if err := chromedp.Run(ctx, chromedp.Evaluate(`
		(function() {
			var a = document.querySelector('`+nextButtonSelector+`');
			if (!a) return false;
			var li = a.closest('li');
			return !(li && (li.classList.contains('inactive') || li.classList.contains('disabled')));
		})()
	`, &hasNext)); err != nil {
		return fmt.Errorf("chrome driver: probe next button: %w", err)
	}
	if !hasNext {
		return ErrNoMorePages
	}

	if err := chromedp.Run(ctx,
		chromedp.Click(nextButtonSelector, chromedp.ByQuery),
		chromedp.Sleep(d.wait),
	); err != nil {
		return fmt.Errorf("chrome driver: click next: %w", err)
	}
	return nil
}

// Close shuts the browser down.
func (d *ChromeDriver) Close() error {
	d.cancelBrowser()
	d.cancelAlloc()
	return nil
}

// findChromeBinary locates Chrome/Chromium binary.
func findChromeBinary() string {
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
