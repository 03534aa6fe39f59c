package storage

import "realtylink-scraper/models"

// ListingWriter is the interface any storage backend must satisfy.
type ListingWriter interface {
	Write(listings []*models.Listing) error
	Close() error
}

// ListingReader loads previously persisted listings.
type ListingReader interface {
	FetchAll() ([]*models.Listing, error)
}
