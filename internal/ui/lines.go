package ui

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

const infoTTL = 5 * time.Second

// styledLine is one terminal row. The first highlightFrom runes use
// prefixStyle and the remainder uses style.
type styledLine struct {
	text          string
	style         *lipgloss.Style
	prefixStyle   *lipgloss.Style
	highlightFrom int
}

func (l styledLine) render() string {
	runes := []rune(l.text)
	if l.highlightFrom <= 0 || l.highlightFrom >= len(runes) {
		return renderStyled(l.style, l.text)
	}
	return renderStyled(l.prefixStyle, string(runes[:l.highlightFrom])) +
		renderStyled(l.style, string(runes[l.highlightFrom:]))
}

func renderLines(lines []styledLine) string {
	var b strings.Builder
	for i, line := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line.render())
	}
	return b.String()
}

// clipLines cuts lines to width columns and to at most height rows, marking
// dropped rows with an ellipsis. Non-positive limits are ignored.
func clipLines(lines []styledLine, height, width int) []styledLine {
	if height > 0 && len(lines) > height {
		kept := append([]styledLine(nil), lines[:height-1]...)
		lines = append(kept, styledLine{text: "…"})
	}
	if width <= 0 {
		return lines
	}
	out := make([]styledLine, len(lines))
	for i, line := range lines {
		line.text = truncateText(line.text, width)
		out[i] = line
	}
	return out
}

// flash is a status message that disappears after infoTTL.
type flash struct {
	text  string
	until time.Time
}

func (f *flash) current() string {
	if f.text != "" && time.Now().After(f.until) {
		*f = flash{}
	}
	return f.text
}

func (m *Model) setInfo(text string) {
	m.info = flash{text: text, until: time.Now().Add(infoTTL)}
}

func (m *Model) forceClearInfo() {
	m.info = flash{}
}
