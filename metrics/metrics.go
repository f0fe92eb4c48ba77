// Package metrics counts crawl activity with Prometheus collectors. A run is
// a batch job, so the registry is written to a node_exporter textfile at the
// end rather than scraped.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Article outcomes.
const (
	OutcomeScraped    = "scraped"
	OutcomeTransport  = "transport_error"
	OutcomeStructural = "structural_error"
	OutcomeQuality    = "quality_error"
	OutcomeOther      = "other_error"
)

// Collector holds the crawl counters. All methods are safe on a nil
// *Collector, which records nothing.
type Collector struct {
	registry *prometheus.Registry

	pages        *prometheus.CounterVec
	links        prometheus.Counter
	articles     *prometheus.CounterVec
	retries      prometheus.Counter
	saved        prometheus.Counter
	saveFailures prometheus.Counter
}

// New creates a Collector with its own registry.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		pages: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "khabar",
				Name:      "listing_pages_total",
				Help:      "Listing and feed pages fetched, by status.",
			},
			[]string{"status"},
		),
		links: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "khabar",
			Name:      "article_links_total",
			Help:      "Article links collected for scraping.",
		}),
		articles: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "khabar",
				Name:      "articles_total",
				Help:      "Article scrape attempts, by outcome.",
			},
			[]string{"outcome"},
		),
		retries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "khabar",
			Name:      "request_retries_total",
			Help:      "Backoff sleeps taken before retrying a request.",
		}),
		saved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "khabar",
			Name:      "records_saved_total",
			Help:      "Records written to the archive.",
		}),
		saveFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "khabar",
			Name:      "save_failures_total",
			Help:      "Failed attempts to write the archive.",
		}),
	}

	c.registry.MustRegister(c.pages, c.links, c.articles, c.retries, c.saved, c.saveFailures)
	return c
}

// Registry exposes the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// PageFetched counts one listing page.
func (c *Collector) PageFetched(ok bool) {
	if c == nil {
		return
	}
	status := "ok"
	if !ok {
		status = "failed"
	}
	c.pages.WithLabelValues(status).Inc()
}

// LinksCollected adds n collected links.
func (c *Collector) LinksCollected(n int) {
	if c == nil || n <= 0 {
		return
	}
	c.links.Add(float64(n))
}

// Article counts one article attempt with the given outcome.
func (c *Collector) Article(outcome string) {
	if c == nil {
		return
	}
	c.articles.WithLabelValues(outcome).Inc()
}

// Retry counts one backoff sleep.
func (c *Collector) Retry() {
	if c == nil {
		return
	}
	c.retries.Inc()
}

// Saved adds n saved records.
func (c *Collector) Saved(n int) {
	if c == nil || n <= 0 {
		return
	}
	c.saved.Add(float64(n))
}

// SaveFailed counts one failed archive write.
func (c *Collector) SaveFailed() {
	if c == nil {
		return
	}
	c.saveFailures.Inc()
}

// WriteTextfile writes the registry in the Prometheus text format to path.
func (c *Collector) WriteTextfile(path string) error {
	if c == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
