package utils

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestURLSetNoDuplicates(t *testing.T) {
	s := NewURLSet()

	added := s.Add("https://example.com/1")
	if !added {
		t.Error("first Add should return true")
	}

	added = s.Add("https://example.com/1")
	if added {
		t.Error("second Add of same URL should return false")
	}

	if s.Size() != 1 {
		t.Errorf("size: got %d, want 1", s.Size())
	}
}

func TestURLSetConcurrency(t *testing.T) {
	s := NewURLSet()
	var added int64

	pool := NewWorkerPool(10)
	for i := 0; i < 100; i++ {
		url := "https://example.com/same"
		pool.Submit(func() {
			if s.Add(url) {
				atomic.AddInt64(&added, 1)
			}
		})
	}
	pool.Wait()

	if added != 1 {
		t.Errorf("expected exactly 1 successful add, got %d", added)
	}
}

func TestURLSetSorted(t *testing.T) {
	s := NewURLSet()
	for _, u := range []string{"site/b", "site/a", "site/a", "site/c"} {
		s.Add(u)
	}

	got := s.Sorted()
	want := []string{"site/a", "site/b", "site/c"}
	if len(got) != len(want) {
		t.Fatalf("Sorted len: got %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Sorted[%d]: got %q, want %q", i, got[i], want[i])
		}
	}
	if !s.Contains("site/c") || s.Contains("site/d") {
		t.Error("Contains reports wrong membership")
	}
}

func TestWorkerPoolBoundsConcurrency(t *testing.T) {
	const limit = 3
	pool := NewWorkerPool(limit)

	var running, peak int64
	for i := 0; i < 20; i++ {
		pool.Submit(func() {
			n := atomic.AddInt64(&running, 1)
			for {
				p := atomic.LoadInt64(&peak)
				if n <= p || atomic.CompareAndSwapInt64(&peak, p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt64(&running, -1)
		})
	}
	pool.Wait()

	if peak > limit {
		t.Errorf("peak concurrency %d exceeded limit %d", peak, limit)
	}
	if peak == 0 {
		t.Error("no jobs ran")
	}
}

func TestWorkerPoolMinimumSize(t *testing.T) {
	if got := NewWorkerPool(0).Size(); got != 1 {
		t.Errorf("Size: got %d, want 1", got)
	}
}
