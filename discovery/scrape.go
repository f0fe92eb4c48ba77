package discovery

import (
	"context"
	"errors"
	"log/slog"

	"github.com/pevans/khabar/article"
	"github.com/pevans/khabar/fetch"
	"github.com/pevans/khabar/logging"
	"github.com/pevans/khabar/metrics"
)

// ArticleScraper fetches one article page and extracts a Record from it.
type ArticleScraper struct {
	fetcher   fetch.Getter
	extractor *Extractor
	logger    *slog.Logger
	metrics   *metrics.Collector
}

// NewArticleScraper combines a fetcher (normally a *fetch.Retrier) with an
// extractor.
func NewArticleScraper(fetcher fetch.Getter, extractor *Extractor, logger *slog.Logger, m *metrics.Collector) *ArticleScraper {
	return &ArticleScraper{
		fetcher:   fetcher,
		extractor: extractor,
		logger:    logging.OrDefault(logger),
		metrics:   m,
	}
}

// Scrape fetches url and extracts its Record. Transport failures have already
// been retried by the fetcher; structural and quality failures are logged and
// returned without retrying. Callers skip the article on any error.
func (s *ArticleScraper) Scrape(ctx context.Context, url string) (article.Record, error) {
	body, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		s.metrics.Article(metrics.OutcomeTransport)
		return article.Record{}, err
	}

	record, err := s.extractor.Extract(body, url)
	switch {
	case err == nil:
	case errors.Is(err, ErrStructural):
		s.logger.Warn("missing structure", "url", url, "error", err)
		s.metrics.Article(metrics.OutcomeStructural)
		return article.Record{}, err
	case errors.Is(err, ErrQuality):
		s.logger.Warn("content too short", "url", url, "error", err)
		s.metrics.Article(metrics.OutcomeQuality)
		return article.Record{}, err
	default:
		s.logger.Error("unexpected error scraping article", "url", url, "error", err)
		s.metrics.Article(metrics.OutcomeOther)
		return article.Record{}, err
	}

	s.metrics.Article(metrics.OutcomeScraped)
	s.logger.Debug("scraped article", "url", url, "title", truncate(record.Title, 50))

	return record, nil
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
