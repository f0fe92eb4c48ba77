// Package discovery finds article links for a month and turns article pages
// into records.
package discovery

import (
	"bytes"
	"context"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pevans/khabar/fetch"
	"github.com/pevans/khabar/logging"
	"github.com/pevans/khabar/metrics"
	"github.com/pevans/khabar/scraper"
)

// DefaultMaxArticles is the per-month link target when none is given.
const DefaultMaxArticles = 100

// DefaultMaxPages bounds listing pages per month when the config has none.
const DefaultMaxPages = 20

// LinkSource finds article URLs published in a given month.
type LinkSource interface {
	Collect(ctx context.Context, year, month, maxArticles int) []string
}

// LinkCollector walks the site's paginated listing pages.
type LinkCollector struct {
	config  *scraper.Config
	fetcher fetch.Getter
	pacer   *fetch.Pacer
	logger  *slog.Logger
	metrics *metrics.Collector
}

// NewLinkCollector creates a listing-page collector. fetcher is normally a
// *fetch.Retrier.
func NewLinkCollector(
	config *scraper.Config,
	fetcher fetch.Getter,
	pacer *fetch.Pacer,
	logger *slog.Logger,
	m *metrics.Collector,
) *LinkCollector {
	if pacer == nil {
		pacer = fetch.NewPacer()
	}
	return &LinkCollector{
		config:  config,
		fetcher: fetcher,
		pacer:   pacer,
		logger:  logging.OrDefault(logger),
		metrics: m,
	}
}

// Collect gathers unique article links for year/month, starting at listing
// page 1. It stops when maxArticles links are held (checked between pages,
// so the result can exceed it), when the page ceiling is reached, when a
// page has no next-page link, or when a page cannot be fetched. Failures end
// the walk with whatever was collected so far. The result is sorted and not
// truncated.
func (lc *LinkCollector) Collect(ctx context.Context, year, month, maxArticles int) []string {
	if maxArticles <= 0 {
		maxArticles = DefaultMaxArticles
	}
	maxPages := lc.config.MaxPages
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}

	prefix := lc.config.MonthPrefix(year, month)
	links := map[string]struct{}{}
	logger := lc.logger.With("year", year, "month", month)

	logger.Info("collecting article links", "prefix", prefix)

	for page := 1; len(links) < maxArticles && page <= maxPages; page++ {
		pageURL := lc.config.ListingURL(page)
		logger.Debug("processing listing page", "page", page, "url", pageURL)

		body, err := lc.fetcher.Fetch(ctx, pageURL)
		if err != nil {
			logger.Error("failed to fetch listing page", "page", page, "error", err)
			lc.metrics.PageFetched(false)
			break
		}

		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
		if err != nil {
			logger.Error("failed to parse listing page", "page", page, "error", err)
			lc.metrics.PageFetched(false)
			break
		}
		lc.metrics.PageFetched(true)

		found := 0
		doc.Find(lc.config.List.LinkSelector).Each(func(_ int, a *goquery.Selection) {
			href, ok := a.Attr("href")
			if ok && strings.Contains(href, prefix) {
				links[href] = struct{}{}
				found++
			}
		})
		logger.Debug("found month links on page", "page", page, "links", found)

		if doc.Find(lc.config.List.PaginationSelector).Length() == 0 {
			logger.Info("reached last listing page", "page", page)
			break
		}

		if err := lc.pacer.Wait(ctx, lc.config.RequestDelay, lc.config.RequestJitter); err != nil {
			logger.Warn("stopped collecting links", "error", err)
			break
		}
	}

	result := slices.Sorted(maps.Keys(links))
	lc.metrics.LinksCollected(len(result))
	logger.Info("collected article links", "links", len(result))

	return result
}
