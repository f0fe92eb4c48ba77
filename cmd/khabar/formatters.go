package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/pevans/khabar/article"
)

// printSummary prints the end-of-run report. Category names are mostly
// Devanagari, so columns are padded by display width rather than bytes.
func printSummary(w io.Writer, stats article.Stats, outputPath string) {
	rule := strings.Repeat("=", 50)

	fmt.Fprintln(w)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "SCRAPING COMPLETED")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Total articles scraped: %d\n", stats.TotalArticles)
	fmt.Fprintf(w, "Average content length: %.0f characters\n", stats.AverageContentLength)

	if names := stats.CategoryNames(); len(names) > 0 {
		fmt.Fprintln(w, "Category distribution:")

		width := 0
		for _, name := range names {
			width = max(width, runewidth.StringWidth(name))
		}
		for _, name := range names {
			fmt.Fprintf(w, "  %s  %d\n", runewidth.FillRight(name, width), stats.Categories[name])
		}
	}

	fmt.Fprintf(w, "Data saved to: %s\n", outputPath)
}
