package realtylink

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// DefaultDetailLinkSelector matches the "more details" anchor on each result card.
const DefaultDetailLinkSelector = "a.a-more-detail"

// LinkExtractor pulls detail-page URLs out of a results page.
type LinkExtractor struct {
	base     *url.URL
	selector string
}

// NewLinkExtractor resolves relative hrefs against baseURL. An empty
// selector means DefaultDetailLinkSelector.
func NewLinkExtractor(baseURL, selector string) (*LinkExtractor, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	if selector == "" {
		selector = DefaultDetailLinkSelector
	}
	return &LinkExtractor{base: base, selector: selector}, nil
}

// Extract returns the unique absolute detail URLs on the page, in document
// order. Unparseable markup yields an empty result.
func (e *LinkExtractor) Extract(html string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	seen := make(map[string]struct{})
	var links []string
	doc.Find(e.selector).Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok {
			return
		}
		abs, ok := resolveURL(e.base, href)
		if !ok {
			return
		}
		if _, dup := seen[abs]; dup {
			return
		}
		seen[abs] = struct{}{}
		links = append(links, abs)
	})
	return links
}

// resolveURL turns href into an absolute http(s) URL without fragment.
func resolveURL(base *url.URL, href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return "", false
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	abs := ref
	if base != nil {
		abs = base.ResolveReference(ref)
	}
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return "", false
	}
	abs.Fragment = ""
	return abs.String(), true
}
