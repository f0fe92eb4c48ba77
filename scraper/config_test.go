package scraper

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestDefaultConfig verifies the site defaults
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "https://www.onlinekhabar.com", cfg.SiteURL)
	assert.Equal(t, ModeListing, cfg.DiscoveryMode)
	assert.Equal(t, 15*time.Second, cfg.Timeout)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, 2*time.Second, cfg.RequestDelay)
	assert.Equal(t, 20, cfg.MaxPages)
	assert.False(t, cfg.CalendarMonths)
	assert.Equal(t, "a.next.page-numbers", cfg.List.PaginationSelector)
	assert.Equal(t, "div.ok18-single-post-content-wrap", cfg.Article.ContentSelector)
	assert.Len(t, cfg.Article.TimestampSelectors, 4)
	assert.Len(t, cfg.Article.CategorySelectors, 3)
	assert.Len(t, cfg.Article.AuthorSelectors, 4)
}

// TestConfig_URLs verifies listing, feed and month URL construction
func TestConfig_URLs(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "https://www.onlinekhabar.com/content/news/page/3", cfg.ListingURL(3))
	assert.Equal(t, "https://www.onlinekhabar.com/feed", cfg.FeedURL())
	assert.Equal(t, "https://www.onlinekhabar.com/2025/08/", cfg.MonthPrefix(2025, 8))
	assert.Equal(t, "https://www.onlinekhabar.com/2024/12/", cfg.MonthPrefix(2024, 12))
}

// TestDefaultConfig_Independent verifies callers get fresh selector slices
func TestDefaultConfig_Independent(t *testing.T) {
	a := DefaultConfig()
	b := DefaultConfig()

	a.Article.Categories[0] = "changed"

	assert.Equal(t, "politics", b.Article.Categories[0])
}
