package realtylink

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestFetchSendsHeadersAndReturnsBody(t *testing.T) {
	var gotUA string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<html><title>ok</title></html>"))
	}))
	defer ts.Close()

	f := NewHTTPFetcher(5 * time.Second)
	body, err := f.Fetch(context.Background(), ts.URL, map[string]string{"User-Agent": "test-agent"})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if !strings.Contains(body, "<title>ok</title>") {
		t.Errorf("body: got %q", body)
	}
	if gotUA != "test-agent" {
		t.Errorf("User-Agent: got %q", gotUA)
	}
}

func TestFetchDecodesLatin1(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		_, _ = w.Write([]byte("<p>Montr\xe9al</p>"))
	}))
	defer ts.Close()

	body, err := NewHTTPFetcher(5*time.Second).Fetch(context.Background(), ts.URL, nil)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if !strings.Contains(body, "Montréal") {
		t.Errorf("body not decoded: %q", body)
	}
}

func TestFetchClassifiesFailures(t *testing.T) {
	tests := []struct {
		name       string
		handler    http.HandlerFunc
		wantStatus int
	}{
		{
			name: "not found",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "gone", http.StatusNotFound)
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			},
			wantStatus: http.StatusBadGateway,
		},
		{
			name: "empty body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			},
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(tt.handler)
			defer ts.Close()

			_, err := NewHTTPFetcher(5*time.Second).Fetch(context.Background(), ts.URL, nil)
			var fe *FetchError
			if !errors.As(err, &fe) {
				t.Fatalf("expected FetchError, got %v", err)
			}
			if fe.StatusCode != tt.wantStatus {
				t.Errorf("StatusCode: got %d, want %d", fe.StatusCode, tt.wantStatus)
			}
		})
	}
}

func TestFetchNetworkFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := ts.URL
	ts.Close()

	_, err := NewHTTPFetcher(time.Second).Fetch(context.Background(), url, nil)
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if fe.StatusCode != 0 {
		t.Errorf("StatusCode: got %d, want 0", fe.StatusCode)
	}
}
