// Package khabar harvests news articles from onlinekhabar.com: it walks back
// through recent months, collects article links, scrapes each article, and
// saves the records as one JSON document.
package khabar

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/pevans/khabar/archive"
	"github.com/pevans/khabar/article"
	"github.com/pevans/khabar/discovery"
	"github.com/pevans/khabar/fetch"
	"github.com/pevans/khabar/logging"
	"github.com/pevans/khabar/metrics"
	"github.com/pevans/khabar/scraper"
)

// Harvester runs a sequential crawl. It is not safe for concurrent use.
type Harvester struct {
	config   *scraper.Config
	links    discovery.LinkSource
	articles *discovery.ArticleScraper
	pacer    *fetch.Pacer
	logger   *slog.Logger
	metrics  *metrics.Collector
	progress io.Writer
	now      func() time.Time
	runID    uuid.UUID

	records []article.Record
}

type options struct {
	logger    *slog.Logger
	metrics   *metrics.Collector
	pacer     *fetch.Pacer
	progress  io.Writer
	now       func() time.Time
	getter    fetch.Getter
	retryOpts []fetch.RetryOption
	links     discovery.LinkSource
}

// Option configures a Harvester.
type Option func(*options)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithMetrics records crawl counters in m.
func WithMetrics(m *metrics.Collector) Option {
	return func(o *options) { o.metrics = m }
}

// WithPacer replaces the pacer used for every politeness delay.
func WithPacer(p *fetch.Pacer) Option {
	return func(o *options) { o.pacer = p }
}

// WithProgress draws a progress line on w while articles are scraped.
func WithProgress(w io.Writer) Option {
	return func(o *options) { o.progress = w }
}

// WithClock sets the clock used for month targets and scraped_at.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithGetter replaces the single-shot HTTP fetcher. Requests still go through
// the retry wrapper.
func WithGetter(g fetch.Getter) Option {
	return func(o *options) { o.getter = g }
}

// WithRetryOptions passes options to the retry wrapper.
func WithRetryOptions(opts ...fetch.RetryOption) Option {
	return func(o *options) { o.retryOpts = append(o.retryOpts, opts...) }
}

// WithLinkSource replaces the link collector chosen by the config.
func WithLinkSource(src discovery.LinkSource) Option {
	return func(o *options) { o.links = src }
}

// New wires a Harvester from config. The config's RequestDelay and
// MaxRetries are the usual knobs; everything else has site defaults.
func New(config *scraper.Config, opts ...Option) (*Harvester, error) {
	if config == nil {
		config = scraper.DefaultConfig()
	}

	o := &options{now: time.Now}
	for _, opt := range opts {
		opt(o)
	}

	runID := uuid.New()
	logger := logging.OrDefault(o.logger).With("run_id", runID.String())

	if o.pacer == nil {
		o.pacer = fetch.NewPacer()
	}
	if o.getter == nil {
		o.getter = fetch.NewFetcher(fetch.ConfigFrom(config))
	}

	retryOpts := []fetch.RetryOption{
		fetch.WithLogger(logger),
		fetch.WithRetryHook(func(string, int, time.Duration) { o.metrics.Retry() }),
	}
	retrier := fetch.NewRetrier(o.getter, config.MaxRetries, append(retryOpts, o.retryOpts...)...)

	links := o.links
	if links == nil {
		var err error
		links, err = discovery.NewLinkSource(config, retrier, o.pacer, logger, o.metrics)
		if err != nil {
			return nil, err
		}
	}

	extractor := discovery.NewExtractor(config.Article).WithClock(o.now)

	logger.Info("initialized harvester",
		"request_delay", config.RequestDelay,
		"max_retries", config.MaxRetries,
		"discovery_mode", config.DiscoveryMode)

	return &Harvester{
		config:   config,
		links:    links,
		articles: discovery.NewArticleScraper(retrier, extractor, logger, o.metrics),
		pacer:    o.pacer,
		logger:   logger,
		metrics:  o.metrics,
		progress: o.progress,
		now:      o.now,
		runID:    runID,
	}, nil
}

// RunID identifies this harvester's run in logs and exports.
func (h *Harvester) RunID() uuid.UUID {
	return h.runID
}

// Records returns a copy of every record scraped so far in this run.
func (h *Harvester) Records() []article.Record {
	return slices.Clone(h.records)
}

// Stats summarizes the records scraped so far.
func (h *Harvester) Stats() article.Stats {
	return article.Summarize(h.records)
}

// ScrapeArticle fetches and extracts one article.
func (h *Harvester) ScrapeArticle(ctx context.Context, url string) (article.Record, error) {
	return h.articles.Scrape(ctx, url)
}

// CollectLinks returns the article links for year/month.
func (h *Harvester) CollectLinks(ctx context.Context, year, month, maxArticles int) []string {
	return h.links.Collect(ctx, year, month, maxArticles)
}

// ScrapeArticles scrapes urls in order, pausing ArticleDelay plus jitter
// after each one. Failed articles are skipped. Successful records are
// returned and also kept in the run's record list. The error is non-nil only
// when ctx is done.
func (h *Harvester) ScrapeArticles(ctx context.Context, urls []string) ([]article.Record, error) {
	var scraped []article.Record
	bar := newProgressLine(h.progress, "Scraping articles", len(urls))
	defer bar.finish()

	for i, url := range urls {
		if err := ctx.Err(); err != nil {
			return scraped, err
		}

		record, err := h.articles.Scrape(ctx, url)
		if err == nil {
			scraped = append(scraped, record)
			h.records = append(h.records, record)
		}
		bar.update(i+1, len(scraped))

		if err := h.pacer.Wait(ctx, h.config.ArticleDelay, h.config.ArticleJitter); err != nil {
			return scraped, err
		}
	}

	return scraped, nil
}

// ScrapeLastMonths scrapes up to perMonth articles from each of the last
// nMonths months, newest first. A month with no links is logged and
// skipped. Between months it pauses MonthDelay plus jitter, except after the
// last month. The error is non-nil only when ctx is done; the records
// gathered before that are still returned.
func (h *Harvester) ScrapeLastMonths(ctx context.Context, nMonths, perMonth int) ([]article.Record, error) {
	var all []article.Record
	months := MonthsBack(h.now(), nMonths, h.config.CalendarMonths)

	h.logger.Info("starting scrape", "months", nMonths, "articles_per_month", perMonth)

	for i, m := range months {
		if err := ctx.Err(); err != nil {
			return all, err
		}

		urls := h.links.Collect(ctx, m.Year, int(m.Month), perMonth)
		if len(urls) == 0 {
			h.logger.Warn("no articles found", "month", m.String())
			continue
		}
		if len(urls) > perMonth {
			urls = urls[:perMonth]
		}

		monthRecords, err := h.ScrapeArticles(ctx, urls)
		all = append(all, monthRecords...)
		if err != nil {
			return all, err
		}

		h.logger.Info("scraped month", "month", m.String(), "articles", len(monthRecords), "links", len(urls))

		if i < len(months)-1 {
			pause := h.pacer.Delay(h.config.MonthDelay, h.config.MonthJitter)
			h.logger.Info("taking break before next month", "pause", pause.Round(100*time.Millisecond))
			if err := h.pacer.Pause(ctx, pause); err != nil {
				return all, err
			}
		}
	}

	h.logger.Info("scraping completed", "total_articles", len(all))
	return all, nil
}

// Save writes records to path as a JSON array; nil records means every
// record scraped in this run. A failed write is logged and returned, and the
// records stay available from Records.
func (h *Harvester) Save(path string, records []article.Record) error {
	if records == nil {
		records = h.records
	}

	if err := archive.Save(path, records); err != nil {
		h.logger.Error("failed to save articles", "path", path, "error", err)
		h.metrics.SaveFailed()
		return err
	}

	h.metrics.Saved(len(records))
	h.logger.Info("saved articles", "count", len(records), "path", path)
	archive.LogSummary(h.logger, records)

	return nil
}

// ExportSQLite copies every record scraped in this run into the SQLite
// database at path.
func (h *Harvester) ExportSQLite(path string) error {
	store, err := archive.NewSQLiteStore(path)
	if err != nil {
		h.logger.Error("failed to open sqlite export", "path", path, "error", err)
		return err
	}
	defer store.Close()

	if err := store.Export(h.runID, h.records); err != nil {
		h.logger.Error("failed to export articles", "path", path, "error", err)
		return fmt.Errorf("failed to export to %s: %w", path, err)
	}

	h.logger.Info("exported articles", "count", len(h.records), "path", path)
	return nil
}
