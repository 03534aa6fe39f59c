package realtylink

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"golang.org/x/net/html/charset"
)

const maxBodyBytes = 10 << 20

// DetailFetcher performs one GET for a detail page.
type DetailFetcher interface {
	Fetch(ctx context.Context, url string, headers map[string]string) (string, error)
}

// HTTPFetcher is a DetailFetcher over net/http. It never retries.
type HTTPFetcher struct {
	client *http.Client
}

// NewHTTPFetcher builds a fetcher whose requests time out after timeout.
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 20,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	return &HTTPFetcher{
		client: &http.Client{Transport: transport, Timeout: timeout},
	}
}

// Client exposes the underlying HTTP client so other requests to the same
// site can share its connection pool.
func (f *HTTPFetcher) Client() *http.Client {
	return f.client
}

// Fetch returns the page body decoded to UTF-8. Any failure is a *FetchError.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string, headers map[string]string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", &FetchError{URL: url, Err: err}
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return "", &FetchError{URL: url, StatusCode: resp.StatusCode, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", &FetchError{URL: url, StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return "", &FetchError{URL: url, StatusCode: resp.StatusCode, Err: errors.New("empty body")}
	}

	return decodeUTF8(data, resp.Header.Get("Content-Type")), nil
}

func decodeUTF8(data []byte, contentType string) string {
	enc, _, _ := charset.DetermineEncoding(data, contentType)
	decoded, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return string(data)
	}
	return string(decoded)
}
