package discovery

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pevans/khabar/fetch"
	"github.com/pevans/khabar/logging"
	"github.com/pevans/khabar/metrics"
	"github.com/pevans/khabar/scraper"
)

// listingSite serves numbered listing pages. Each page links two articles
// from 2025/08, one from 2025/07 and one unrelated page. Pages up to lastPage
// carry a next-page link, except lastPage itself.
type listingSite struct {
	server   *httptest.Server
	lastPage int
	failPage int

	mu      sync.Mutex
	fetches []int
}

func newListingSite(t *testing.T, lastPage int) *listingSite {
	site := &listingSite{lastPage: lastPage}
	site.server = httptest.NewServer(http.HandlerFunc(site.serve))
	t.Cleanup(site.server.Close)
	return site
}

func (s *listingSite) serve(w http.ResponseWriter, r *http.Request) {
	page, err := strconv.Atoi(strings.TrimPrefix(r.URL.Path, "/content/news/page/"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	s.mu.Lock()
	s.fetches = append(s.fetches, page)
	s.mu.Unlock()

	if page == s.failPage {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	base := s.server.URL
	fmt.Fprintf(w, `<html><body>
<a href="%[1]s/2025/08/%[2]d01">one</a>
<a href="%[1]s/2025/08/%[2]d02">two</a>
<a href="%[1]s/2025/08/%[2]d01">duplicate</a>
<a href="%[1]s/2025/07/%[2]d03">last month</a>
<a href="%[1]s/about">about</a>
<a>no href</a>`, base, page)
	if page != s.lastPage {
		fmt.Fprintf(w, `<a class="next page-numbers" href="%s/content/news/page/%d">Next</a>`, base, page+1)
	}
	fmt.Fprint(w, `</body></html>`)
}

func (s *listingSite) pagesFetched() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.fetches...)
}

func (s *listingSite) config() *scraper.Config {
	cfg := scraper.DefaultConfig()
	cfg.SiteURL = s.server.URL
	return cfg
}

func newTestCollector(cfg *scraper.Config, slept *[]time.Duration, m *metrics.Collector) *LinkCollector {
	fetcher := fetch.NewFetcher(fetch.Config{Timeout: 5 * time.Second})
	return NewLinkCollector(cfg, fetcher, noSleepPacer(slept), logging.Discard(), m)
}

// TestCollect_OnlyTargetMonth verifies every link carries the month path
func TestCollect_OnlyTargetMonth(t *testing.T) {
	site := newListingSite(t, 2)
	var slept []time.Duration

	links := newTestCollector(site.config(), &slept, nil).Collect(context.Background(), 2025, 8, 100)

	require.Len(t, links, 4)
	for _, link := range links {
		assert.Contains(t, link, "/2025/08/")
	}
	assert.Contains(t, links, site.server.URL+"/2025/08/101")
	assert.Contains(t, links, site.server.URL+"/2025/08/202")
}

// TestCollect_StopsWithoutNextPage verifies early termination on the last page
func TestCollect_StopsWithoutNextPage(t *testing.T) {
	site := newListingSite(t, 3)
	var slept []time.Duration

	links := newTestCollector(site.config(), &slept, nil).Collect(context.Background(), 2025, 8, 100)

	assert.Equal(t, []int{1, 2, 3}, site.pagesFetched())
	assert.Len(t, links, 6)
	assert.Len(t, slept, 2, "pace between pages only")
}

// TestCollect_PageCeiling verifies at most 20 listing fetches
func TestCollect_PageCeiling(t *testing.T) {
	site := newListingSite(t, 1000)
	var slept []time.Duration

	links := newTestCollector(site.config(), &slept, nil).Collect(context.Background(), 2025, 8, 1000)

	assert.Len(t, site.pagesFetched(), 20)
	assert.Len(t, links, 40)
}

// TestCollect_TargetCheckedBetweenPages verifies the bound may be exceeded
// within a page
func TestCollect_TargetCheckedBetweenPages(t *testing.T) {
	site := newListingSite(t, 10)
	var slept []time.Duration

	links := newTestCollector(site.config(), &slept, nil).Collect(context.Background(), 2025, 8, 3)

	assert.Equal(t, []int{1, 2}, site.pagesFetched())
	assert.Len(t, links, 4, "collector does not truncate")
}

// TestCollect_FetchFailureReturnsPartial verifies a failed page ends the walk
func TestCollect_FetchFailureReturnsPartial(t *testing.T) {
	site := newListingSite(t, 10)
	site.failPage = 2
	var slept []time.Duration
	m := metrics.New()

	links := newTestCollector(site.config(), &slept, m).Collect(context.Background(), 2025, 8, 100)

	assert.Equal(t, []int{1, 2}, site.pagesFetched())
	assert.Len(t, links, 2)
}

// TestCollect_NoMatches verifies an empty result for an absent month
func TestCollect_NoMatches(t *testing.T) {
	site := newListingSite(t, 1)
	var slept []time.Duration

	links := newTestCollector(site.config(), &slept, nil).Collect(context.Background(), 2024, 1, 100)

	assert.Empty(t, links)
	assert.Empty(t, slept)
}

// TestCollect_PacesWithRequestDelay verifies the configured delay is used
func TestCollect_PacesWithRequestDelay(t *testing.T) {
	site := newListingSite(t, 2)
	cfg := site.config()
	cfg.RequestDelay = 3 * time.Second
	var slept []time.Duration

	newTestCollector(cfg, &slept, nil).Collect(context.Background(), 2025, 8, 100)

	assert.Equal(t, []time.Duration{3 * time.Second}, slept)
}

// TestCollect_CustomCeiling verifies MaxPages from config
func TestCollect_CustomCeiling(t *testing.T) {
	site := newListingSite(t, 1000)
	cfg := site.config()
	cfg.MaxPages = 5
	var slept []time.Duration

	newTestCollector(cfg, &slept, nil).Collect(context.Background(), 2025, 8, 1000)

	assert.Len(t, site.pagesFetched(), 5)
}
