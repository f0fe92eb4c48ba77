package discovery

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/pevans/khabar/fetch"
	"github.com/pevans/khabar/logging"
	"github.com/pevans/khabar/metrics"
	"github.com/pevans/khabar/scraper"
)

// FeedCollector finds article links through the site's RSS feed. WordPress
// pages its feed with ?paged=N, so the walk follows the same ceiling as the
// listing collector.
type FeedCollector struct {
	config  *scraper.Config
	fetcher fetch.Getter
	pacer   *fetch.Pacer
	logger  *slog.Logger
	metrics *metrics.Collector
}

// NewFeedCollector creates a feed-based collector.
func NewFeedCollector(
	config *scraper.Config,
	fetcher fetch.Getter,
	pacer *fetch.Pacer,
	logger *slog.Logger,
	m *metrics.Collector,
) *FeedCollector {
	if pacer == nil {
		pacer = fetch.NewPacer()
	}
	return &FeedCollector{
		config:  config,
		fetcher: fetcher,
		pacer:   pacer,
		logger:  logging.OrDefault(logger),
		metrics: m,
	}
}

// FeedPageURL returns the URL of feed page n.
func (fc *FeedCollector) FeedPageURL(page int) string {
	if page <= 1 {
		return fc.config.FeedURL()
	}
	return fmt.Sprintf("%s?paged=%d", fc.config.FeedURL(), page)
}

// Collect gathers item links for year/month from the feed. It stops on the
// same conditions as LinkCollector, and also once a page holds only items
// published before the month began.
func (fc *FeedCollector) Collect(ctx context.Context, year, month, maxArticles int) []string {
	if maxArticles <= 0 {
		maxArticles = DefaultMaxArticles
	}
	maxPages := fc.config.MaxPages
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}

	prefix := fc.config.MonthPrefix(year, month)
	monthStart := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	links := map[string]struct{}{}
	logger := fc.logger.With("year", year, "month", month)
	parser := gofeed.NewParser()

	logger.Info("collecting article links from feed", "feed", fc.config.FeedURL())

	for page := 1; len(links) < maxArticles && page <= maxPages; page++ {
		body, err := fc.fetcher.Fetch(ctx, fc.FeedPageURL(page))
		if err != nil {
			logger.Error("failed to fetch feed page", "page", page, "error", err)
			fc.metrics.PageFetched(false)
			break
		}

		feed, err := parser.Parse(bytes.NewReader(body))
		if err != nil {
			logger.Error("failed to parse feed page", "page", page, "error", err)
			fc.metrics.PageFetched(false)
			break
		}
		fc.metrics.PageFetched(true)

		if len(feed.Items) == 0 {
			logger.Info("reached end of feed", "page", page)
			break
		}

		older := 0
		for _, item := range feed.Items {
			if strings.Contains(item.Link, prefix) {
				links[item.Link] = struct{}{}
			}
			if item.PublishedParsed != nil && item.PublishedParsed.Before(monthStart) {
				older++
			}
		}

		if older == len(feed.Items) {
			logger.Info("feed page predates month", "page", page)
			break
		}

		if err := fc.pacer.Wait(ctx, fc.config.RequestDelay, fc.config.RequestJitter); err != nil {
			logger.Warn("stopped collecting feed links", "error", err)
			break
		}
	}

	result := slices.Sorted(maps.Keys(links))
	fc.metrics.LinksCollected(len(result))
	logger.Info("collected article links from feed", "links", len(result))

	return result
}

// NewLinkSource returns the collector selected by config.DiscoveryMode.
func NewLinkSource(
	config *scraper.Config,
	fetcher fetch.Getter,
	pacer *fetch.Pacer,
	logger *slog.Logger,
	m *metrics.Collector,
) (LinkSource, error) {
	switch config.DiscoveryMode {
	case "", scraper.ModeListing:
		return NewLinkCollector(config, fetcher, pacer, logger, m), nil
	case scraper.ModeFeed:
		return NewFeedCollector(config, fetcher, pacer, logger, m), nil
	default:
		return nil, fmt.Errorf("unsupported discovery mode: %s", config.DiscoveryMode)
	}
}
