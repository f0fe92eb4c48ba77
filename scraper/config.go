package scraper

import (
	"fmt"
	"time"
)

// DefaultUserAgent is sent with every request.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// Discovery modes.
const (
	ModeListing = "listing"
	ModeFeed    = "feed"
)

// Config defines how to crawl the news site: where listings live, how to
// recognise article links, how to extract article fields, and how politely to
// pace requests.
type Config struct {
	SiteURL       string `yaml:"site_url"`
	ListingPath   string `yaml:"listing_path"`
	FeedPath      string `yaml:"feed_path"`
	DiscoveryMode string `yaml:"discovery_mode"` // "listing" or "feed"

	UserAgent  string        `yaml:"user_agent"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`

	RequestDelay  time.Duration `yaml:"request_delay"`
	RequestJitter time.Duration `yaml:"request_jitter"`
	ArticleDelay  time.Duration `yaml:"article_delay"`
	ArticleJitter time.Duration `yaml:"article_jitter"`
	MonthDelay    time.Duration `yaml:"month_delay"`
	MonthJitter   time.Duration `yaml:"month_jitter"`

	// MaxPages bounds the number of listing pages fetched per month.
	MaxPages int `yaml:"max_pages"`

	// CalendarMonths selects exact calendar-month stepping when walking back
	// through months. When false each step is 30 days.
	CalendarMonths bool `yaml:"calendar_months"`

	List    ListConfig    `yaml:"list"`
	Article ArticleConfig `yaml:"article"`
}

// ListConfig defines how to discover articles from listing pages.
type ListConfig struct {
	LinkSelector       string `yaml:"link_selector"`
	PaginationSelector string `yaml:"pagination_selector"`
}

// ArticleConfig defines how to extract fields from individual article pages.
// Selector lists are tried in order and the first non-empty match wins.
type ArticleConfig struct {
	TitleSelector      string   `yaml:"title_selector"`
	ContentSelector    string   `yaml:"content_selector"`
	ParagraphSelector  string   `yaml:"paragraph_selector"`
	TimestampSelectors []string `yaml:"timestamp_selectors"`
	CategorySelectors  []string `yaml:"category_selectors"`
	AuthorSelectors    []string `yaml:"author_selectors"`
	Categories         []string `yaml:"categories"`
}

// DefaultConfig returns the configuration for onlinekhabar.com.
func DefaultConfig() *Config {
	return &Config{
		SiteURL:       "https://www.onlinekhabar.com",
		ListingPath:   "/content/news/page/",
		FeedPath:      "/feed",
		DiscoveryMode: ModeListing,

		UserAgent:  DefaultUserAgent,
		Timeout:    15 * time.Second,
		MaxRetries: 3,

		RequestDelay:  2 * time.Second,
		RequestJitter: 1 * time.Second,
		ArticleDelay:  1 * time.Second,
		ArticleJitter: 500 * time.Millisecond,
		MonthDelay:    5 * time.Second,
		MonthJitter:   3 * time.Second,

		MaxPages: 20,

		List:    DefaultListConfig(),
		Article: DefaultArticleConfig(),
	}
}

// DefaultListConfig returns the listing-page selectors for the site.
func DefaultListConfig() ListConfig {
	return ListConfig{
		LinkSelector:       "a[href]",
		PaginationSelector: "a.next.page-numbers",
	}
}

// DefaultArticleConfig returns the article-page selectors for the site.
func DefaultArticleConfig() ArticleConfig {
	return ArticleConfig{
		TitleSelector:     "h1",
		ContentSelector:   "div.ok18-single-post-content-wrap",
		ParagraphSelector: "p",
		TimestampSelectors: []string{
			"div.ok-news-post-hour span",
			".timestamp",
			".post-date",
			`[class*="date"]`,
		},
		CategorySelectors: []string{
			".category-name",
			".post-category",
			`[class*="category"]`,
		},
		AuthorSelectors: []string{
			".author-name",
			".post-author",
			`[class*="author"]`,
			".byline",
		},
		Categories: []string{"politics", "sports", "economy", "technology", "entertainment", "health"},
	}
}

// ListingURL returns the URL of the given listing page.
func (c *Config) ListingURL(page int) string {
	return fmt.Sprintf("%s%s%d", c.SiteURL, c.ListingPath, page)
}

// FeedURL returns the URL of the site's RSS feed.
func (c *Config) FeedURL() string {
	return c.SiteURL + c.FeedPath
}

// MonthPrefix returns the URL prefix shared by every article published in
// the given month, e.g. "https://www.onlinekhabar.com/2025/08/".
func (c *Config) MonthPrefix(year, month int) string {
	return fmt.Sprintf("%s/%d/%02d/", c.SiteURL, year, month)
}
