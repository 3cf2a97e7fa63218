package ui

import (
	"fmt"
	"strings"

	"github.com/atomicstack/node-browser/internal/loader"
	"github.com/charmbracelet/lipgloss"
)

func (m *Model) sizeDetail(width, height int) {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	m.detail.Width = width
	m.detail.Height = height
	// Shrinking the viewport may leave the offset past the end.
	m.detail.SetYOffset(m.detail.YOffset)
}

func detailTitle(d loader.Display) string {
	if d.Node == nil {
		return "Detail"
	}
	title := "Detail: " + strings.Join(d.Node.Path(), " › ")
	switch {
	case d.Loading:
		title += " (loading…)"
	case d.Failed:
		title += " (failed)"
	}
	return title
}

func detailBodyStyle(d loader.Display) *lipgloss.Style {
	switch {
	case d.Loading:
		return styles.Loading
	case d.Failed:
		return styles.DetailError
	default:
		return styles.DetailBody
	}
}

// renderDetailPanel builds the bordered detail box as a string with exactly
// height rows and totalWidth columns.
func (m *Model) renderDetailPanel(totalWidth, height int) string {
	const (
		tlc = "╭"
		trc = "╮"
		blc = "╰"
		brc = "╯"
		hz  = "─"
		vt  = "│"
	)

	innerW := totalWidth - 2
	innerH := height - 2
	if innerW < 1 {
		innerW = 1
	}
	if innerH < 1 {
		innerH = 1
	}
	m.sizeDetail(innerW, innerH)

	var d loader.Display
	if m.active != "" {
		d = m.session.Display(m.active)
	}
	var contentLines []string
	scrollInfo := ""
	switch {
	case d.Node == nil:
		contentLines = []string{"Nothing selected. Press enter on a node."}
	default:
		contentLines = strings.Split(m.detail.View(), "\n")
		if total := m.detail.TotalLineCount(); total > innerH {
			last := m.detail.YOffset + m.detail.VisibleLineCount()
			scrollInfo = fmt.Sprintf(" %d/%d ", last, total)
		}
	}

	titleSeg := " " + detailTitle(d) + " "
	scrollSeg := scrollInfo
	dashes := totalWidth - 4 - lipgloss.Width(titleSeg) - lipgloss.Width(scrollSeg)
	if dashes < 0 {
		scrollSeg = ""
		dashes = totalWidth - 4 - lipgloss.Width(titleSeg)
	}
	if dashes < 0 {
		titleSeg = " " + truncateText(strings.TrimSpace(titleSeg), totalWidth-6) + " "
		dashes = totalWidth - 4 - lipgloss.Width(titleSeg)
	}
	if dashes < 0 {
		dashes = 0
	}
	border := styles.DetailBorder
	topLine := border.Render(tlc+hz) +
		styles.DetailTitle.Render(titleSeg) +
		border.Render(strings.Repeat(hz, dashes)) +
		styles.DetailScroll.Render(scrollSeg) +
		border.Render(hz+trc)
	bottomLine := border.Render(blc + strings.Repeat(hz, innerW) + brc)

	bodyStyle := detailBodyStyle(d)
	if d.Node == nil {
		bodyStyle = styles.Info
	}
	rows := make([]string, 0, height)
	rows = append(rows, topLine)
	for i := 0; i < innerH; i++ {
		var content string
		if i < len(contentLines) {
			content = contentLines[i]
		}
		content = fitWidth(content, innerW)
		if bodyStyle != nil {
			content = bodyStyle.Render(content)
		}
		rows = append(rows, border.Render(vt)+content+border.Render(vt))
	}
	rows = append(rows, bottomLine)
	return strings.Join(rows, "\n")
}
