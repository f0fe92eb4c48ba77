package discovery

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pevans/khabar/article"
	"github.com/pevans/khabar/scraper"
)

const testArticleURL = "https://www.onlinekhabar.com/2025/08/1234567"

func newTestExtractor() *Extractor {
	return NewExtractor(scraper.DefaultArticleConfig())
}

// TestExtract_Complete verifies all fields of a well-formed page
func TestExtract_Complete(t *testing.T) {
	extra := `<div class="ok-news-post-hour"><span> भदौ १४, २०८२ </span></div>` +
		`<span class="category-name">राजनीति</span>` +
		`<span class="author-name">Onlinekhabar Reporter</span>`
	paragraphs := []string{
		strings.Repeat("first paragraph ", 5),
		"  ",
		strings.Repeat("second paragraph ", 5),
	}
	html := articleHTML("  Big News  ", paragraphs, extra)

	record, err := newTestExtractor().Extract(html, testArticleURL)
	require.NoError(t, err)

	wantContent := strings.TrimSpace(paragraphs[0]) + " " + strings.TrimSpace(paragraphs[2])
	assert.Equal(t, testArticleURL, record.URL)
	assert.Equal(t, "Big News", record.Title)
	assert.Equal(t, wantContent, record.Content)
	assert.Equal(t, "भदौ १४, २०८२", record.Timestamp)
	assert.Equal(t, "राजनीति", record.Category)
	assert.Equal(t, "Onlinekhabar Reporter", record.Author)
	assert.Equal(t, len(strings.Fields(wantContent)), record.WordCount)
	assert.Equal(t, article.CharCount(wantContent), record.CharCount)
	assert.Equal(t, article.ScraperVersion, record.ScraperVersion)
	assert.NotEmpty(t, record.ScrapedAt)
}

// TestExtract_MissingTitle verifies pages without h1 are rejected every time
func TestExtract_MissingTitle(t *testing.T) {
	html := articleHTML("", []string{strings.Repeat("a", 200)}, "")
	extractor := newTestExtractor()

	for range 3 {
		_, err := extractor.Extract(html, testArticleURL)
		assert.ErrorIs(t, err, ErrStructural)
	}
}

// TestExtract_MissingContainer verifies pages without the wrapper are rejected
func TestExtract_MissingContainer(t *testing.T) {
	html := []byte("<html><body><h1>Title</h1><div class=\"other\"><p>" +
		strings.Repeat("a", 200) + "</p></div></body></html>")

	_, err := newTestExtractor().Extract(html, testArticleURL)
	assert.ErrorIs(t, err, ErrStructural)
}

// TestExtract_ContentBoundary verifies 99 characters are rejected and 100
// accepted
func TestExtract_ContentBoundary(t *testing.T) {
	extractor := newTestExtractor()

	_, err := extractor.Extract(articleHTML("Title", []string{strings.Repeat("a", 99)}, ""), testArticleURL)
	assert.ErrorIs(t, err, ErrQuality)
	assert.ErrorIs(t, err, article.ErrContentTooShort)

	record, err := extractor.Extract(articleHTML("Title", []string{strings.Repeat("a", 100)}, ""), testArticleURL)
	require.NoError(t, err)
	assert.Equal(t, 100, record.CharCount)
}

// TestExtract_JoinedLengthCounts verifies the joining spaces count towards
// the threshold
func TestExtract_JoinedLengthCounts(t *testing.T) {
	// 50 + 1 + 49 = 100
	html := articleHTML("Title", []string{strings.Repeat("a", 50), strings.Repeat("b", 49)}, "")

	record, err := newTestExtractor().Extract(html, testArticleURL)
	require.NoError(t, err)
	assert.Equal(t, 100, record.CharCount)
	assert.Equal(t, 2, record.WordCount)
}

// TestExtract_Defaults verifies the constant fallbacks
func TestExtract_Defaults(t *testing.T) {
	html := articleHTML("Title", []string{strings.Repeat("a", 120)}, "")

	record, err := newTestExtractor().Extract(html, testArticleURL)
	require.NoError(t, err)

	assert.Equal(t, article.NoTimestamp, record.Timestamp)
	assert.Equal(t, article.DefaultCategory, record.Category)
	assert.Equal(t, article.UnknownAuthor, record.Author)
}

// TestExtract_CategoryFromURL verifies the URL vocabulary fallback
func TestExtract_CategoryFromURL(t *testing.T) {
	html := articleHTML("Title", []string{strings.Repeat("a", 120)}, "")

	record, err := newTestExtractor().Extract(html, "https://www.onlinekhabar.com/technology/2025/08/42")
	require.NoError(t, err)
	assert.Equal(t, "technology", record.Category)

	record, err = newTestExtractor().Extract(html, "https://www.onlinekhabar.com/Sports/2025/08/42")
	require.NoError(t, err)
	assert.Equal(t, "Sports", record.Category, "segment is returned as written")
}

// TestExtract_TimestampOrder verifies earlier selectors win regardless of
// document order
func TestExtract_TimestampOrder(t *testing.T) {
	tests := []struct {
		name  string
		extra string
		want  string
	}{
		{
			name:  "hour span beats timestamp class",
			extra: `<span class="timestamp">second</span><div class="ok-news-post-hour"><span>first</span></div>`,
			want:  "first",
		},
		{
			name:  "timestamp beats post-date",
			extra: `<span class="post-date">later</span><span class="timestamp">earlier</span>`,
			want:  "earlier",
		},
		{
			name:  "class containing date",
			extra: `<time class="entry-published-date">2025-08-30</time>`,
			want:  "2025-08-30",
		},
		{
			name:  "empty match falls through",
			extra: `<span class="timestamp">  </span><span class="post-date">filled</span>`,
			want:  "filled",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			html := articleHTML("Title", []string{strings.Repeat("a", 120)}, tt.extra)

			record, err := newTestExtractor().Extract(html, testArticleURL)
			require.NoError(t, err)
			assert.Equal(t, tt.want, record.Timestamp)
		})
	}
}

// TestExtract_CategorySelectorBeatsURL verifies selectors precede the URL
// heuristic
func TestExtract_CategorySelectorBeatsURL(t *testing.T) {
	html := articleHTML("Title", []string{strings.Repeat("a", 120)}, `<a class="post-category">अर्थ</a>`)

	record, err := newTestExtractor().Extract(html, "https://www.onlinekhabar.com/economy/2025/08/1")
	require.NoError(t, err)
	assert.Equal(t, "अर्थ", record.Category)
}

// TestExtract_AuthorOrder verifies the author chain ordering
func TestExtract_AuthorOrder(t *testing.T) {
	tests := []struct {
		name  string
		extra string
		want  string
	}{
		{"author-name first", `<span class="post-author">B</span><span class="author-name">A</span>`, "A"},
		{"post-author", `<span class="byline">C</span><span class="post-author">B</span>`, "B"},
		{"class containing author", `<span class="byline">C</span><div class="single-author-box">D</div>`, "D"},
		{"byline last", `<p class="byline">C</p>`, "C"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			html := articleHTML("Title", []string{strings.Repeat("a", 120)}, tt.extra)

			record, err := newTestExtractor().Extract(html, testArticleURL)
			require.NoError(t, err)
			assert.Equal(t, tt.want, record.Author)
		})
	}
}

// TestChain_Resolve verifies first non-empty lookup wins
func TestChain_Resolve(t *testing.T) {
	calls := 0
	counting := func(value string) Lookup {
		return func(Queryable, string) string {
			calls++
			return value
		}
	}

	chain := Chain{counting(""), counting("hit"), counting("never")}
	assert.Equal(t, "hit", chain.Resolve(nil, ""))
	assert.Equal(t, 2, calls)

	assert.Equal(t, "", Chain{}.Resolve(nil, ""))
}

// TestURLSegment verifies vocabulary matching on path segments only
func TestURLSegment(t *testing.T) {
	lookup := URLSegment([]string{"politics", "health"})

	assert.Equal(t, "health", lookup(nil, "https://example.com/health/2025/08/1"))
	assert.Equal(t, "", lookup(nil, "https://example.com/healthcare/2025/08/1"))
	assert.Equal(t, "", lookup(nil, "https://example.com/2025/08/1"))
}
