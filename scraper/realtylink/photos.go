package realtylink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"realtylink-scraper/utils"
)

// DefaultGallerySelector matches photo elements embedded in a detail page.
const DefaultGallerySelector = ".photo-gallery img, .gallery img, #gallery img"

var (
	thumbWidthRe  = regexp.MustCompile(`([?&]w=)\d+`)
	thumbHeightRe = regexp.MustCompile(`([?&]h=)\d+`)
)

type photoViewerRequest struct {
	Lang                   string `json:"lang"`
	CentrisNo              string `json:"centrisNo"`
	Track                  string `json:"track"`
	AuthorizationMediaCode string `json:"authorizationMediaCode"`
}

type photoViewerResponse struct {
	PhotoList []struct {
		UrlThumb string `json:"UrlThumb"`
	} `json:"PhotoList"`
}

// PhotoCollector gathers the photo URLs for one listing, first from the
// gallery endpoint and otherwise from the page's own gallery markup.
type PhotoCollector struct {
	client   *http.Client
	endpoint string
	headers  map[string]string
	selector string
	logger   *utils.Logger
}

// NewPhotoCollector returns a collector. An empty endpoint disables the
// gallery request and only the DOM is mined.
func NewPhotoCollector(client *http.Client, endpoint string, headers map[string]string, logger *utils.Logger) *PhotoCollector {
	if client == nil {
		client = http.DefaultClient
	}
	return &PhotoCollector{
		client:   client,
		endpoint: endpoint,
		headers:  headers,
		selector: DefaultGallerySelector,
		logger:   logger,
	}
}

// Collect returns absolute photo URLs in presentation order. It never fails;
// an empty slice is a valid result.
func (p *PhotoCollector) Collect(ctx context.Context, pageURL string, doc *goquery.Document) []string {
	if id := strings.TrimSpace(doc.Find("span#ListingId").First().Text()); id != "" && p.endpoint != "" {
		photos, err := p.fromGallery(ctx, id)
		if err != nil {
			p.logger.Warn("[photos] Gallery request for %s failed: %v", id, err)
		} else if len(photos) > 0 {
			return photos
		}
	}
	return p.fromDocument(pageURL, doc)
}

func (p *PhotoCollector) fromGallery(ctx context.Context, listingID string) ([]string, error) {
	body, err := json.Marshal(photoViewerRequest{
		Lang:                   "en",
		CentrisNo:              listingID,
		Track:                  "true",
		AuthorizationMediaCode: "995",
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	for k, v := range p.headers {
		req.Header.Set(k, v)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("gallery status %d", resp.StatusCode)
	}

	var data photoViewerResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode gallery: %w", err)
	}

	photos := make([]string, 0, len(data.PhotoList))
	for _, ph := range data.PhotoList {
		if ph.UrlThumb == "" {
			continue
		}
		photos = append(photos, upsizeThumb(ph.UrlThumb))
	}
	return photos, nil
}

func (p *PhotoCollector) fromDocument(pageURL string, doc *goquery.Document) []string {
	base, _ := url.Parse(pageURL)

	seen := make(map[string]struct{})
	photos := []string{}
	doc.Find(p.selector).Each(func(_ int, s *goquery.Selection) {
		src := s.AttrOr("data-src", "")
		if strings.TrimSpace(src) == "" {
			src = s.AttrOr("src", "")
		}
		abs, ok := resolveURL(base, src)
		if !ok {
			return
		}
		if _, dup := seen[abs]; dup {
			return
		}
		seen[abs] = struct{}{}
		photos = append(photos, abs)
	})
	return photos
}

// upsizeThumb rewrites a gallery thumbnail URL to the 640x480 rendition.
func upsizeThumb(thumb string) string {
	thumb = thumbWidthRe.ReplaceAllString(thumb, "${1}640")
	return thumbHeightRe.ReplaceAllString(thumb, "${1}480")
}
