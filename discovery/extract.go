package discovery

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/pevans/khabar/article"
	"github.com/pevans/khabar/scraper"
)

var (
	// ErrStructural means an expected node is missing from the page.
	// Retrying will not help, so the article is discarded.
	ErrStructural = errors.New("missing article structure")

	// ErrQuality means the page parsed but its content is too short to keep.
	ErrQuality = errors.New("article below quality threshold")
)

// Queryable is the part of an HTML document the selector chains need.
type Queryable interface {
	// FirstText returns the trimmed text of the first node matching
	// selector, and whether any node matched.
	FirstText(selector string) (string, bool)
}

// Document adapts a goquery document to Queryable.
type Document struct {
	*goquery.Document
}

// FirstText implements Queryable.
func (d Document) FirstText(selector string) (string, bool) {
	sel := d.Find(selector).First()
	if sel.Length() == 0 {
		return "", false
	}
	return strings.TrimSpace(sel.Text()), true
}

// Lookup is one link of a selector chain. It returns "" when it has nothing.
type Lookup func(doc Queryable, url string) string

// Chain tries its lookups in order; the first non-empty result wins even if
// a later lookup would have matched too.
type Chain []Lookup

// Resolve runs the chain against doc.
func (c Chain) Resolve(doc Queryable, url string) string {
	for _, lookup := range c {
		if value := lookup(doc, url); value != "" {
			return value
		}
	}
	return ""
}

// Selector looks up the text of the first node matching selector.
func Selector(selector string) Lookup {
	return func(doc Queryable, _ string) string {
		text, _ := doc.FirstText(selector)
		return text
	}
}

// Selectors returns one Selector lookup per selector, in order.
func Selectors(selectors []string) Chain {
	chain := make(Chain, 0, len(selectors))
	for _, s := range selectors {
		chain = append(chain, Selector(s))
	}
	return chain
}

// URLSegment returns the first path segment of the article URL that matches
// one of vocabulary, compared case-insensitively. The segment is returned as
// written in the URL.
func URLSegment(vocabulary []string) Lookup {
	known := make(map[string]bool, len(vocabulary))
	for _, v := range vocabulary {
		known[strings.ToLower(v)] = true
	}

	return func(_ Queryable, url string) string {
		for _, part := range strings.Split(url, "/") {
			if known[strings.ToLower(part)] {
				return part
			}
		}
		return ""
	}
}

// Constant always returns value.
func Constant(value string) Lookup {
	return func(Queryable, string) string { return value }
}

// Extractor turns article HTML into a Record.
type Extractor struct {
	config    scraper.ArticleConfig
	timestamp Chain
	category  Chain
	author    Chain
	now       func() time.Time
}

// NewExtractor builds the field chains from config: selectors first, then
// (for category) the URL vocabulary, then the constant default.
func NewExtractor(config scraper.ArticleConfig) *Extractor {
	category := Selectors(config.CategorySelectors)
	category = append(category, URLSegment(config.Categories), Constant(article.DefaultCategory))

	return &Extractor{
		config:    config,
		timestamp: append(Selectors(config.TimestampSelectors), Constant(article.NoTimestamp)),
		category:  category,
		author:    append(Selectors(config.AuthorSelectors), Constant(article.UnknownAuthor)),
		now:       time.Now,
	}
}

// WithClock sets the clock used for scraped_at and returns e.
func (e *Extractor) WithClock(now func() time.Time) *Extractor {
	e.now = now
	return e
}

// Extract parses html and builds a Record for url. It returns an error
// wrapping ErrStructural when the title or content container is missing, and
// ErrQuality when the content is shorter than article.MinContentLength.
func (e *Extractor) Extract(html []byte, url string) (article.Record, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return article.Record{}, fmt.Errorf("failed to parse HTML: %w", err)
	}

	return e.ExtractDocument(Document{doc}, url)
}

// ExtractDocument is Extract for an already parsed document.
func (e *Extractor) ExtractDocument(doc Document, url string) (article.Record, error) {
	title, ok := doc.FirstText(e.config.TitleSelector)
	if !ok || title == "" {
		return article.Record{}, fmt.Errorf("%w: no title (%s)", ErrStructural, e.config.TitleSelector)
	}

	container := doc.Find(e.config.ContentSelector).First()
	if container.Length() == 0 {
		return article.Record{}, fmt.Errorf("%w: no content container (%s)", ErrStructural, e.config.ContentSelector)
	}

	var paragraphs []string
	container.Find(e.config.ParagraphSelector).Each(func(_ int, p *goquery.Selection) {
		if text := strings.TrimSpace(p.Text()); text != "" {
			paragraphs = append(paragraphs, text)
		}
	})
	content := strings.Join(paragraphs, " ")

	if n := article.CharCount(content); n < article.MinContentLength {
		return article.Record{}, fmt.Errorf("%w: %w (%d chars)", ErrQuality, article.ErrContentTooShort, n)
	}

	record, err := article.New(article.Fields{
		URL:       url,
		Title:     title,
		Content:   content,
		Timestamp: e.timestamp.Resolve(doc, url),
		Category:  e.category.Resolve(doc, url),
		Author:    e.author.Resolve(doc, url),
	}, e.now())
	if err != nil {
		if errors.Is(err, article.ErrContentTooShort) {
			return article.Record{}, fmt.Errorf("%w: %w", ErrQuality, err)
		}
		return article.Record{}, fmt.Errorf("%w: %w", ErrStructural, err)
	}

	return record, nil
}
