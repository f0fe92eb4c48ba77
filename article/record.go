package article

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// ScraperVersion tags every record with the extractor that produced it.
	ScraperVersion = "enhanced_v1.0"

	// MinContentLength is the minimum number of characters (code points) a
	// record's content must have.
	MinContentLength = 100

	// NoTimestamp is stored when no timestamp could be found on the page.
	NoTimestamp = "No timestamp found"

	// DefaultCategory is used when neither the page nor the URL names a
	// category.
	DefaultCategory = "general"

	// UnknownAuthor is used when the page has no byline.
	UnknownAuthor = "Unknown"

	// ScrapedAtLayout is the ISO-8601 layout used for scraped_at.
	ScrapedAtLayout = "2006-01-02T15:04:05.000000Z07:00"
)

var (
	ErrMissingURL      = errors.New("url is empty")
	ErrMissingTitle    = errors.New("title is empty")
	ErrContentTooShort = errors.New("content too short")
)

// Record is a single scraped article. Records are built by New and never
// modified afterwards.
type Record struct {
	URL            string `json:"url"`
	Timestamp      string `json:"timestamp"`
	Title          string `json:"title"`
	Content        string `json:"content"`
	Category       string `json:"category"`
	Author         string `json:"author"`
	WordCount      int    `json:"word_count"`
	CharCount      int    `json:"char_count"`
	ScrapedAt      string `json:"scraped_at"`
	ScraperVersion string `json:"scraper_version"`
}

// Fields holds the values extracted from an article page.
type Fields struct {
	URL       string
	Title     string
	Content   string
	Timestamp string
	Category  string
	Author    string
}

// New builds a Record from extracted fields. Either every field is populated
// or an error is returned; there are no partial records. Empty metadata falls
// back to NoTimestamp, DefaultCategory and UnknownAuthor.
func New(f Fields, scrapedAt time.Time) (Record, error) {
	if f.URL == "" {
		return Record{}, ErrMissingURL
	}
	if strings.TrimSpace(f.Title) == "" {
		return Record{}, ErrMissingTitle
	}

	chars := CharCount(f.Content)
	if chars < MinContentLength {
		return Record{}, fmt.Errorf("%w (%d chars)", ErrContentTooShort, chars)
	}

	return Record{
		URL:            f.URL,
		Timestamp:      orDefault(f.Timestamp, NoTimestamp),
		Title:          f.Title,
		Content:        f.Content,
		Category:       orDefault(f.Category, DefaultCategory),
		Author:         orDefault(f.Author, UnknownAuthor),
		WordCount:      WordCount(f.Content),
		CharCount:      chars,
		ScrapedAt:      scrapedAt.Format(ScrapedAtLayout),
		ScraperVersion: ScraperVersion,
	}, nil
}

// CharCount returns the number of characters in s, counted as Unicode code
// points so that Devanagari text is measured the same way as ASCII.
func CharCount(s string) int {
	return utf8.RuneCountInString(s)
}

// WordCount returns the number of whitespace-separated words in s.
func WordCount(s string) int {
	return len(strings.Fields(s))
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
