package realtylink

import (
	"errors"
	"fmt"
)

// ErrNoMorePages is returned by a PageDriver when the requested offset is past
// the last renderable results page.
var ErrNoMorePages = errors.New("no more result pages")

// DiscoveryError aborts link discovery. Offset is the page that failed.
type DiscoveryError struct {
	Offset int
	Err    error
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("discovery failed at offset %d: %v", e.Offset, e.Err)
}

func (e *DiscoveryError) Unwrap() error { return e.Err }

// FetchError is a failed detail-page request. StatusCode is 0 when no
// response was received.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError means a detail page could not be read as markup at all.
type ParseError struct {
	URL string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.URL, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func isFetchError(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}
