package realtylink

import (
	"testing"
)

func newTestExtractor(t *testing.T) *LinkExtractor {
	t.Helper()
	e, err := NewLinkExtractor("https://realtylink.org", "")
	if err != nil {
		t.Fatalf("NewLinkExtractor: %v", err)
	}
	return e
}

func TestExtractResolvesAndDeduplicates(t *testing.T) {
	html := `<html><body>
		<div class="shell"><a class="a-more-detail" href="/en/rent/condo/123">Details</a></div>
		<div class="shell"><a class="a-more-detail" href="/en/rent/house/456#photos">Details</a></div>
		<div class="shell"><a class="a-more-detail" href="/en/rent/condo/123">Again</a></div>
		<a href="/en/rent/ignored/789">not a detail link</a>
	</body></html>`

	got := newTestExtractor(t).Extract(html)
	want := []string{
		"https://realtylink.org/en/rent/condo/123",
		"https://realtylink.org/en/rent/house/456",
	}
	if len(got) != len(want) {
		t.Fatalf("Extract: got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("link %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestExtractToleratesBadMarkup(t *testing.T) {
	e := newTestExtractor(t)

	inputs := []string{
		"",
		"<<<>>>",
		"<html><body><a class='a-more-detail'>no href</a>",
		`<a class="a-more-detail" href="javascript:void(0)">js</a><a class="a-more-detail" href="#top">frag</a>`,
		"\x00\xff\xfe garbage",
	}
	for _, in := range inputs {
		if got := e.Extract(in); len(got) != 0 {
			t.Errorf("Extract(%q) = %v; want empty", in, got)
		}
	}
}

func TestExtractKeepsAbsoluteLinks(t *testing.T) {
	html := `<a class="a-more-detail" href="https://other.example/listing/1">x</a>`
	got := newTestExtractor(t).Extract(html)
	if len(got) != 1 || got[0] != "https://other.example/listing/1" {
		t.Errorf("Extract: got %v", got)
	}
}
