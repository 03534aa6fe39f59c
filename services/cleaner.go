package services

import (
	"sort"
	"strings"
	"unicode"

	"realtylink-scraper/models"
	"realtylink-scraper/utils"
)

// Cleaner normalises collected listings before they are persisted.
type Cleaner struct {
	logger *utils.Logger
}

// NewCleaner creates a Cleaner with the given logger.
func NewCleaner(logger *utils.Logger) *Cleaner {
	return &Cleaner{logger: logger}
}

// Clean collapses whitespace in free-text fields, drops records without a
// link, keeps the first record per link and sorts the result by link.
func (c *Cleaner) Clean(raw []*models.Listing) []*models.Listing {
	seen := make(map[string]struct{})
	result := make([]*models.Listing, 0, len(raw))

	for _, r := range raw {
		if r == nil {
			continue
		}
		link := strings.TrimSpace(r.Link)
		if link == "" {
			c.logger.Warn("[cleaner] Dropping listing with empty link: %s", r.Title)
			continue
		}

		if _, dup := seen[link]; dup {
			c.logger.Debug("[cleaner] Duplicate link skipped: %s", link)
			continue
		}
		seen[link] = struct{}{}

		photos := r.Photos
		if photos == nil {
			photos = []string{}
		}

		result = append(result, &models.Listing{
			Link:        link,
			Title:       normaliseText(r.Title),
			Region:      normaliseText(r.Region),
			Address:     normaliseText(r.Address),
			Description: normaliseText(r.Description),
			Price:       r.Price,
			Bedrooms:    r.Bedrooms,
			Area:        normaliseText(r.Area),
			Photos:      photos,
			CollectedAt: r.CollectedAt,
		})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Link < result[j].Link
	})

	c.logger.Info("[cleaner] Cleaned %d → %d listings (dropped %d)",
		len(raw), len(result), len(raw)-len(result))
	return result
}

// normaliseText strips leading/trailing whitespace and collapses internal whitespace.
func normaliseText(s string) string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r)
	})
	return strings.Join(fields, " ")
}
