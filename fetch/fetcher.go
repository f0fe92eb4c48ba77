// Package fetch issues the crawler's HTTP requests: a single-shot Fetcher, a
// Retrier that wraps it with exponential backoff, and a Pacer for the polite
// delays between requests.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pevans/khabar/scraper"
)

// Getter fetches the body of a URL.
type Getter interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Config holds the request settings used by a Fetcher.
type Config struct {
	UserAgent string
	Timeout   time.Duration
	Headers   map[string]string
}

// ConfigFrom builds a fetcher Config from the crawl configuration.
func ConfigFrom(cfg *scraper.Config) Config {
	return Config{
		UserAgent: cfg.UserAgent,
		Timeout:   cfg.Timeout,
	}
}

// TransportError reports a request that failed at the network level or
// returned a non-2xx status.
type TransportError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("HTTP error for %s: %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("request to %s failed: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Fetcher performs one GET per call with a fixed header set and timeout.
type Fetcher struct {
	client *http.Client
	config Config
}

// NewFetcher creates a Fetcher with its own HTTP client.
func NewFetcher(config Config) *Fetcher {
	if config.UserAgent == "" {
		config.UserAgent = scraper.DefaultUserAgent
	}
	if config.Timeout <= 0 {
		config.Timeout = 15 * time.Second
	}

	return &Fetcher{
		client: &http.Client{
			Timeout: config.Timeout,
		},
		config: config,
	}
}

// Fetch returns the raw body of url. Any network error or status outside
// 200-299 is returned as a *TransportError.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, &TransportError{URL: url, Err: fmt.Errorf("failed to create request: %w", err)}
	}

	req.Header.Set("User-Agent", f.config.UserAgent)
	for key, value := range f.config.Headers {
		req.Header.Set(key, value)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &TransportError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{URL: url, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	return body, nil
}
