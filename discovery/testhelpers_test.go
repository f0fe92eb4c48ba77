package discovery

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pevans/khabar/fetch"
)

// noSleepPacer returns a pacer that records delays instead of sleeping.
func noSleepPacer(slept *[]time.Duration) *fetch.Pacer {
	return &fetch.Pacer{
		Sleep: func(_ context.Context, d time.Duration) error {
			*slept = append(*slept, d)
			return nil
		},
		Rand: func() float64 { return 0 },
	}
}

// articleHTML builds an article page with the site's content wrapper. extra
// is inserted into the body before the wrapper.
func articleHTML(title string, paragraphs []string, extra string) []byte {
	var b strings.Builder
	b.WriteString("<html><head><title>ignored</title></head><body>")
	if title != "" {
		fmt.Fprintf(&b, "<h1>%s</h1>", title)
	}
	b.WriteString(extra)
	b.WriteString(`<div class="ok18-single-post-content-wrap">`)
	for _, p := range paragraphs {
		fmt.Fprintf(&b, "<p>%s</p>", p)
	}
	b.WriteString("</div></body></html>")
	return []byte(b.String())
}

// mapGetter serves fixed bodies by URL and counts calls.
type mapGetter struct {
	pages map[string][]byte
	calls []string
}

func (g *mapGetter) Fetch(_ context.Context, url string) ([]byte, error) {
	g.calls = append(g.calls, url)
	body, ok := g.pages[url]
	if !ok {
		return nil, &fetch.TransportError{URL: url, StatusCode: 404}
	}
	return body, nil
}
