// Package table lays out plain-text columns for detail panes.
package table

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

type Alignment int

const (
	AlignLeft Alignment = iota
	AlignRight
)

const gutter = "  "

// Format returns the rows padded according to the widest entry in each
// column. Rows may be ragged; missing cells render empty. Trailing padding is
// trimmed from every line.
func Format(rows [][]string, alignments []Alignment) []string {
	if len(rows) == 0 {
		return nil
	}
	widths := columnWidths(rows)
	out := make([]string, len(rows))
	for i, row := range rows {
		var b strings.Builder
		for c := range widths {
			cell := ""
			if c < len(row) {
				cell = row[c]
			}
			if c > 0 {
				b.WriteString(gutter)
			}
			pad := strings.Repeat(" ", max(widths[c]-runewidth.StringWidth(cell), 0))
			if c < len(alignments) && alignments[c] == AlignRight {
				b.WriteString(pad)
				b.WriteString(cell)
			} else {
				b.WriteString(cell)
				b.WriteString(pad)
			}
		}
		out[i] = strings.TrimRight(b.String(), " ")
	}
	return out
}

// Render formats header and rows as one block with a rule under the header.
func Render(header []string, rows [][]string, alignments []Alignment) string {
	all := make([][]string, 0, len(rows)+1)
	all = append(all, header)
	all = append(all, rows...)
	lines := Format(all, alignments)
	if len(lines) == 0 {
		return ""
	}
	widths := columnWidths(all)
	total := 0
	for i, w := range widths {
		if i > 0 {
			total += len(gutter)
		}
		total += w
	}
	out := make([]string, 0, len(lines)+1)
	out = append(out, lines[0], strings.Repeat("-", total))
	out = append(out, lines[1:]...)
	return strings.Join(out, "\n")
}

func columnWidths(rows [][]string) []int {
	var widths []int
	for _, row := range rows {
		for c, cell := range row {
			if c >= len(widths) {
				widths = append(widths, 0)
			}
			if w := runewidth.StringWidth(cell); w > widths[c] {
				widths[c] = w
			}
		}
	}
	return widths
}
