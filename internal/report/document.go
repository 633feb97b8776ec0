// Package report synthesizes the downloadable analysis document for a
// completed assessment. Layout is expressed in the same millimetre
// grid the desk's printed reports use, so the pagination of a given
// assessment is deterministic and testable.
package report

import (
	"strings"
)

// Page geometry, A4 portrait.
const (
	PageWidth  = 210.0
	PageHeight = 297.0

	// LeftMargin is where every line starts.
	LeftMargin = 20.0

	// BottomMargin is the overflow threshold: a line that would land
	// below it goes to the top of a fresh page instead.
	BottomMargin = 270.0

	// TopMargin is the cursor position on a fresh page.
	TopMargin = 20.0

	// LineHeight is the vertical step for wrapped body lines.
	LineHeight = 6.0

	// FooterY and ConfidentialY anchor the footer block near the
	// bottom edge of the final page.
	FooterY       = PageHeight - 10
	ConfidentialY = PageHeight - 5
)

// Wrapping bounds. Body text wraps inside the usable width; at the
// report's body size that is close to 85 characters per line.
const (
	usableWidth  = PageWidth - 2*LeftMargin
	maxLineChars = 85
)

// Line styles.
const (
	StyleTitle   = "title"
	StyleHeading = "heading"
	StyleBody    = "body"
	StyleFooter  = "footer"
)

// Line is one positioned text run.
type Line struct {
	Y     float64 `json:"y"`
	Text  string  `json:"text"`
	Style string  `json:"style"`
}

// Page is one page of positioned lines.
type Page struct {
	Lines []Line `json:"lines"`
}

// Document is the synthesized report: pages of positioned lines plus
// the download filename.
type Document struct {
	Pages    []Page `json:"pages"`
	Filename string `json:"filename"`
}

// Bytes renders the document as plain text, one line per Line, pages
// separated by form feeds.
func (d *Document) Bytes() []byte {
	var b strings.Builder
	for i, page := range d.Pages {
		if i > 0 {
			b.WriteByte('\f')
		}
		for _, line := range page.Lines {
			b.WriteString(line.Text)
			b.WriteByte('\n')
		}
	}
	return []byte(b.String())
}

// writer tracks the layout cursor while lines are appended.
type writer struct {
	doc *Document
	y   float64
}

func newWriter() *writer {
	w := &writer{doc: &Document{}, y: TopMargin}
	w.doc.Pages = append(w.doc.Pages, Page{})
	return w
}

func (w *writer) page() *Page {
	return &w.doc.Pages[len(w.doc.Pages)-1]
}

// write places one line at the cursor, breaking to a new page first if
// the cursor has run past the bottom margin, then advances by step.
func (w *writer) write(text, style string, step float64) {
	if w.y > BottomMargin {
		w.doc.Pages = append(w.doc.Pages, Page{})
		w.y = TopMargin
	}
	p := w.page()
	p.Lines = append(p.Lines, Line{Y: w.y, Text: text, Style: style})
	w.y += step
}

// writeAt places one line at a fixed position on the current page,
// without moving the cursor. Used for the footer block.
func (w *writer) writeAt(y float64, text, style string) {
	p := w.page()
	p.Lines = append(p.Lines, Line{Y: y, Text: text, Style: style})
}

// skip moves the cursor down without emitting a line.
func (w *writer) skip(step float64) {
	w.y += step
}

// wrap splits text into lines of at most maxLineChars characters,
// breaking on word boundaries. A single overlong word gets a line of
// its own rather than being split.
func wrap(text string) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	current := words[0]
	for _, word := range words[1:] {
		if len(current)+1+len(word) > maxLineChars {
			lines = append(lines, current)
			current = word
			continue
		}
		current += " " + word
	}
	lines = append(lines, current)
	return lines
}
