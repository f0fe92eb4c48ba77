package khabar

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/muesli/termenv"
)

// progressLine redraws a single status line with a bar as articles are
// scraped. A nil writer disables it.
type progressLine struct {
	w     io.Writer
	bar   progress.Model
	label string
	total int
}

func newProgressLine(w io.Writer, label string, total int) *progressLine {
	if w == nil || total <= 0 {
		return nil
	}
	return &progressLine{
		w: w,
		bar: progress.New(
			progress.WithWidth(30),
			progress.WithoutPercentage(),
			progress.WithFillCharacters('#', '-'),
			progress.WithColorProfile(termenv.Ascii),
		),
		label: label,
		total: total,
	}
}

func (p *progressLine) update(done, kept int) {
	if p == nil {
		return
	}
	percent := float64(done) / float64(p.total)
	fmt.Fprintf(p.w, "\r%s %s %d/%d (%d kept)", p.label, p.bar.ViewAs(percent), done, p.total, kept)
}

func (p *progressLine) finish() {
	if p == nil {
		return
	}
	fmt.Fprintln(p.w)
}
