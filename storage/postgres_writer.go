package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"realtylink-scraper/models"
)

const listingColumns = 11

// PostgresWriter persists listings to PostgreSQL, one row per link.
type PostgresWriter struct {
	db    *sql.DB
	runID string
}

// NewPostgresWriter opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresWriter. Rows written are tagged with runID.
func NewPostgresWriter(dsn, runID string) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	pw := &PostgresWriter{db: db, runID: runID}
	if err := pw.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return pw, nil
}

func (pw *PostgresWriter) migrate() error {
	_, err := pw.db.Exec(`
		CREATE TABLE IF NOT EXISTS rental_listings (
			id           SERIAL PRIMARY KEY,
			link         TEXT        UNIQUE NOT NULL,
			title        TEXT        NOT NULL DEFAULT '',
			region       TEXT        NOT NULL DEFAULT '',
			address      TEXT        NOT NULL DEFAULT '',
			description  TEXT        NOT NULL DEFAULT '',
			price        TEXT        NOT NULL DEFAULT '',
			bedrooms     INTEGER     NOT NULL DEFAULT 0,
			area         TEXT        NOT NULL DEFAULT '',
			photos       TEXT[]      NOT NULL DEFAULT '{}',
			collected_at TIMESTAMPTZ NOT NULL,
			run_id       TEXT        NOT NULL DEFAULT ''
		);

		CREATE INDEX IF NOT EXISTS idx_rental_listings_region   ON rental_listings(region);
		CREATE INDEX IF NOT EXISTS idx_rental_listings_bedrooms ON rental_listings(bedrooms);
		CREATE INDEX IF NOT EXISTS idx_rental_listings_run      ON rental_listings(run_id);
	`)
	return err
}

// Write upserts listings in batches, keyed on link.
func (pw *PostgresWriter) Write(listings []*models.Listing) error {
	if len(listings) == 0 {
		return nil
	}

	const batchSize = 50
	for i := 0; i < len(listings); i += batchSize {
		end := i + batchSize
		if end > len(listings) {
			end = len(listings)
		}
		if err := pw.insertBatch(listings[i:end]); err != nil {
			return err
		}
	}
	return nil
}

func (pw *PostgresWriter) insertBatch(batch []*models.Listing) error {
	query, args := buildUpsert(batch, pw.runID)
	if _, err := pw.db.Exec(query, args...); err != nil {
		return fmt.Errorf("postgres: upsert batch: %w", err)
	}
	return nil
}

func buildUpsert(batch []*models.Listing, runID string) (string, []interface{}) {
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*listingColumns)

	for idx, l := range batch {
		base := idx * listingColumns
		placeholders := make([]string, listingColumns)
		for c := range placeholders {
			placeholders[c] = fmt.Sprintf("$%d", base+c+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(placeholders, ",")+")")

		photos := l.Photos
		if photos == nil {
			photos = []string{}
		}
		valueArgs = append(valueArgs,
			l.Link, l.Title, l.Region, l.Address, l.Description, l.Price,
			l.Bedrooms, l.Area, pq.Array(photos), l.CollectedAt, runID)
	}

	query := fmt.Sprintf(`
		INSERT INTO rental_listings
			(link, title, region, address, description, price, bedrooms, area, photos, collected_at, run_id)
		VALUES %s
		ON CONFLICT (link) DO UPDATE SET
			title        = EXCLUDED.title,
			region       = EXCLUDED.region,
			address      = EXCLUDED.address,
			description  = EXCLUDED.description,
			price        = EXCLUDED.price,
			bedrooms     = EXCLUDED.bedrooms,
			area         = EXCLUDED.area,
			photos       = EXCLUDED.photos,
			collected_at = EXCLUDED.collected_at,
			run_id       = EXCLUDED.run_id
	`, strings.Join(valueStrings, ","))

	return query, valueArgs
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}

// FetchAll retrieves the listings stored by this run, used by the insight service.
func (pw *PostgresWriter) FetchAll() ([]*models.Listing, error) {
	rows, err := pw.db.Query(`
		SELECT link, title, region, address, description, price, bedrooms, area, photos, collected_at
		FROM rental_listings
		WHERE run_id = $1
		ORDER BY link
	`, pw.runID)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch all: %w", err)
	}
	defer rows.Close()

	var listings []*models.Listing
	for rows.Next() {
		l := &models.Listing{}
		if err := rows.Scan(
			&l.Link, &l.Title, &l.Region, &l.Address, &l.Description,
			&l.Price, &l.Bedrooms, &l.Area, pq.Array(&l.Photos), &l.CollectedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan row: %w", err)
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}
