package article

import (
	"maps"
	"slices"
)

// Stats summarizes a set of records.
type Stats struct {
	TotalArticles        int            `json:"total_articles"`
	AverageContentLength float64        `json:"average_content_length"`
	Earliest             string         `json:"earliest,omitempty"`
	Latest               string         `json:"latest,omitempty"`
	Categories           map[string]int `json:"categories"`
}

// Summarize computes Stats over records. An empty input yields a zero total
// and an empty category map.
func Summarize(records []Record) Stats {
	stats := Stats{
		TotalArticles: len(records),
		Categories:    map[string]int{},
	}
	if len(records) == 0 {
		return stats
	}

	total := 0
	for i, r := range records {
		total += r.CharCount
		stats.Categories[r.Category]++

		// scraped_at uses a fixed-width layout, so string order is time
		// order within one zone
		if i == 0 || r.ScrapedAt < stats.Earliest {
			stats.Earliest = r.ScrapedAt
		}
		if i == 0 || r.ScrapedAt > stats.Latest {
			stats.Latest = r.ScrapedAt
		}
	}
	stats.AverageContentLength = float64(total) / float64(len(records))

	return stats
}

// CategoryNames returns the categories in stats sorted by descending count,
// then by name.
func (s Stats) CategoryNames() []string {
	names := slices.Collect(maps.Keys(s.Categories))
	slices.SortFunc(names, func(a, b string) int {
		if s.Categories[a] != s.Categories[b] {
			return s.Categories[b] - s.Categories[a]
		}
		if a < b {
			return -1
		}
		if a > b {
			return 1
		}
		return 0
	})
	return names
}
