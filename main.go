package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"realtylink-scraper/config"
	"realtylink-scraper/scraper/realtylink"
	"realtylink-scraper/services"
	"realtylink-scraper/storage"
	"realtylink-scraper/utils"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg := config.Load()
	runID := uuid.NewString()
	logger := utils.NewLoggerWithOptions(utils.LoggerOptions{
		Level: utils.ParseLevel(cfg.LogLevel),
		Color: cfg.LogColor,
	}).With("run_id", runID)

	logger.Info("=== Realtylink rental collector starting ===")
	logger.Info("Config: search %s | stride %d | concurrency %d | retries %d | link cap %d",
		cfg.SearchURL(), cfg.PageStride, cfg.MaxConcurrency, cfg.MaxRetries, cfg.MaxLinks)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	jsonWriter, err := storage.NewJSONWriter(cfg.JSONOutputPath)
	if err != nil {
		logger.Error("Failed to prepare JSON output: %v", err)
		return 1
	}
	writers := []storage.ListingWriter{jsonWriter}
	var reader storage.ListingReader = jsonWriter

	if cfg.CSVOutputPath != "" {
		csvWriter, err := storage.NewCSVWriter(cfg.CSVOutputPath)
		if err != nil {
			logger.Error("Failed to create CSV writer: %v", err)
			return 1
		}
		writers = append(writers, csvWriter)
	}

	if cfg.PostgresEnabled {
		pgWriter, err := storage.NewPostgresWriter(cfg.DSN(), runID)
		if err != nil {
			logger.Error("Failed to connect to PostgreSQL: %v", err)
			return 1
		}
		writers = append(writers, pgWriter)
		reader = pgWriter
	}
	defer func() {
		for _, w := range writers {
			if err := w.Close(); err != nil {
				logger.Warn("Closing writer: %v", err)
			}
		}
	}()

	driver, err := realtylink.NewChromeDriver(cfg, logger)
	if err != nil {
		logger.Error("Failed to start browser: %v", err)
		return 1
	}
	defer driver.Close()

	scraper, err := realtylink.New(cfg, driver, realtylink.NewHTTPFetcher(cfg.FetchTimeout), logger)
	if err != nil {
		logger.Error("Failed to set up scraper: %v", err)
		return 1
	}

	listings, summary, err := scraper.Scrape(ctx)
	summary.RunID = runID
	if err != nil {
		logger.Error("Discovery failed, aborting run: %v", err)
		return 1
	}

	logger.Info("Collected %d of %d listings (%d failed)", summary.Succeeded, summary.Attempted, summary.Failed())

	clean := services.NewCleaner(logger).Clean(listings)
	if len(clean) == 0 {
		logger.Error("No listings were collected. Exiting.")
		return 1
	}

	for _, w := range writers {
		if err := w.Write(clean); err != nil {
			logger.Error("Write failed (%T): %v", w, err)
			return 1
		}
	}
	logger.Info("Listings saved to %s", cfg.JSONOutputPath)

	stored, err := reader.FetchAll()
	if err != nil {
		logger.Warn("Failed to read listings back for insights: %v", err)
		stored = clean
	}

	insightSvc := services.NewInsightService(logger)
	insightSvc.Print(insightSvc.Generate(stored, summary))

	fmt.Printf("  Done. %d listings → %s\n\n", len(clean), cfg.JSONOutputPath)
	return 0
}
