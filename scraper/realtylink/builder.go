package realtylink

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/PuerkitoBio/goquery"

	"realtylink-scraper/models"
)

// Detail page selectors.
const (
	titleSelector       = `span[data-id="PageTitle"]`
	addressSelector     = `h2[itemprop="address"]`
	descriptionSelector = `div[itemprop="description"]`
	priceSelector       = `div.price`
	bedroomsSelector    = `div.col-lg-3.col-sm-6.cac`
	areaSelector        = `div.carac-value`
)

// RecordBuilder turns a detail page into a Listing.
type RecordBuilder struct {
	photos *PhotoCollector
	now    func() time.Time
}

func NewRecordBuilder(photos *PhotoCollector) *RecordBuilder {
	return &RecordBuilder{photos: photos, now: time.Now}
}

// Build extracts a Listing from html. Missing fields get zero values; only
// a document that cannot be parsed at all produces a *ParseError.
func (b *RecordBuilder) Build(ctx context.Context, link, html string) (*models.Listing, error) {
	if strings.TrimSpace(html) == "" {
		return nil, &ParseError{URL: link, Err: errors.New("empty document")}
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, &ParseError{URL: link, Err: err}
	}

	address := text(doc, addressSelector)
	listing := &models.Listing{
		Link:        link,
		Title:       text(doc, titleSelector),
		Address:     address,
		Region:      regionOf(address),
		Description: text(doc, descriptionSelector),
		Price:       normalisePrice(text(doc, priceSelector)),
		Bedrooms:    leadingInt(text(doc, bedroomsSelector)),
		Area:        text(doc, areaSelector),
		Photos:      []string{},
	}
	if b.photos != nil {
		listing.Photos = b.photos.Collect(ctx, link, doc)
	}
	listing.CollectedAt = b.now()

	return listing, nil
}

func text(doc *goquery.Document, selector string) string {
	return strings.TrimSpace(doc.Find(selector).First().Text())
}

// regionOf keeps the last two comma-separated parts of an address,
// e.g. "123 Rue X, Montréal, Quebec" -> "Montréal, Quebec".
func regionOf(address string) string {
	if address == "" {
		return ""
	}
	parts := strings.Split(address, ",")
	if len(parts) > 2 {
		parts = parts[len(parts)-2:]
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return strings.Join(parts, ", ")
}

// normalisePrice drops whitespace and any label before the first currency
// symbol or digit: "For rent  $1 850 /month" -> "$1850/month".
func normalisePrice(raw string) string {
	compact := strings.Join(strings.Fields(raw), "")
	idx := strings.IndexFunc(compact, func(r rune) bool {
		return unicode.IsDigit(r) || unicode.Is(unicode.Sc, r)
	})
	if idx < 0 {
		return ""
	}
	return compact[idx:]
}

// leadingInt parses the digits at the start of s, returning 0 if there are none.
func leadingInt(s string) int {
	end := strings.IndexFunc(s, func(r rune) bool { return r < '0' || r > '9' })
	if end < 0 {
		end = len(s)
	}
	if end == 0 {
		return 0
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil || n < 0 {
		return 0
	}
	return n
}
