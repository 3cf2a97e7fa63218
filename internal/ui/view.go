package ui

import (
	"fmt"
	"strings"

	"github.com/atomicstack/node-browser/internal/loader"
	uistate "github.com/atomicstack/node-browser/internal/ui/state"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
)

const (
	detailInlineLines   = 8   // detail rows in the vertical layout
	detailPanelMinWidth = 40  // below this the detail panel moves under the outline
	detailPanelFraction = 0.6 // share of the width given to the detail panel
	bottomBarRows       = 2
	footerText          = "↑/↓ move  enter select  alt+enter clear  ←/→ fold  tab view  ctrl+o open  ctrl+x close  ctrl+r refresh  ctrl+c quit"
)

// hasSideDetail reports whether the detail panel sits right of the outline.
func (m *Model) hasSideDetail() bool {
	return m.detailPanelWidth() > 0
}

// detailPanelWidth returns the width in columns for the right-hand detail
// panel. Returns 0 when the terminal is too narrow to split.
func (m *Model) detailPanelWidth() int {
	if m.width <= 0 {
		return 0
	}
	w := int(float64(m.width) * detailPanelFraction)
	if w < detailPanelMinWidth {
		return 0
	}
	return w
}

// outlineColumnWidth returns the width available for the outline column.
func (m *Model) outlineColumnWidth() int {
	return m.width - m.detailPanelWidth()
}

// View implements tea.Model.
func (m *Model) View() string {
	header := m.viewTabs()
	if m.hasSideDetail() {
		return m.viewSideBySide(header)
	}
	return m.viewVertical(header)
}

// viewTabs renders one tab per open view, highlighting the active one.
func (m *Model) viewTabs() styledLine {
	views := m.session.Views()
	if len(views) == 0 {
		return styledLine{text: "no documents open (ctrl+o to open one)", style: styles.Header}
	}
	parts := make([]string, 0, len(views))
	for _, v := range views {
		style := styles.Tab
		if v.ID == m.active {
			style = styles.ActiveTab
		}
		label := " " + v.ID + " "
		if style != nil {
			label = style.Render(label)
		}
		parts = append(parts, label)
	}
	return styledLine{text: strings.Join(parts, " ")}
}

func (m *Model) outlineLines(width int) []styledLine {
	current := m.currentLevel()
	if current == nil {
		return nil
	}
	m.syncViewport(current)
	start := 0
	rows := current.Items
	if maxItems := m.maxVisibleItems(); maxItems > 0 && len(rows) > maxItems {
		start = current.ViewportOffset
		if start < 0 {
			start = 0
		}
		if start+maxItems > len(rows) {
			start = len(rows) - maxItems
			if start < 0 {
				start = 0
			}
			current.ViewportOffset = start
		}
		rows = rows[start : start+maxItems]
	}
	if len(current.Items) == 0 {
		msg := "(empty)"
		if current.Filtering() {
			msg = fmt.Sprintf("No matches for %q", current.FilterText())
		}
		return []styledLine{{text: msg, style: styles.Info}}
	}
	lines := make([]styledLine, 0, len(rows))
	for i := range rows {
		lines = append(lines, m.buildRowLine(&rows[i], start+i, current, width))
	}
	return lines
}

// buildRowLine constructs a single styledLine for an outline row. width is
// the target column width; when > 0 the text is padded so that the cursor
// row's background spans the full column.
func (m *Model) buildRowLine(row *uistate.Row, idx int, current *level, width int) styledLine {
	indicator := "▌"
	lineStyle := styles.Item
	indicatorStyle := styles.ItemIndicator
	selected := m.session.IsSelected(current.ID, row.Node)
	if selected {
		lineStyle = styles.SelectedNode
	}
	if idx == current.Cursor {
		indicatorStyle = styles.SelectedItemIndicator
		lineStyle = styles.SelectedItem
	}
	fullText := indicator + " " + strings.Repeat("  ", row.Depth) + expander(row) + row.Label
	if selected {
		fullText += " ●"
	}
	if width > 0 {
		if pad := width - lipgloss.Width(fullText); pad > 0 {
			fullText += strings.Repeat(" ", pad)
		}
	}
	return styledLine{
		text:          fullText,
		style:         lineStyle,
		prefixStyle:   indicatorStyle,
		highlightFrom: 1,
	}
}

func expander(row *uistate.Row) string {
	switch {
	case !row.Expandable:
		return "  "
	case row.Expanded:
		return "▾ "
	default:
		return "▸ "
	}
}

// viewVertical stacks the outline above a short detail block. It is used
// when the terminal is too narrow for the side-by-side layout.
func (m *Model) viewVertical(header styledLine) string {
	lines := make([]styledLine, 0, 32)
	lines = append(lines, header)
	lines = append(lines, m.outlineLines(m.width)...)
	if m.active != "" {
		d := m.session.Display(m.active)
		m.sizeDetail(m.width, detailInlineLines)
		lines = append(lines, styledLine{})
		lines = append(lines, styledLine{text: detailTitle(d), style: styles.DetailTitle})
		bodyStyle := detailBodyStyle(d)
		for _, line := range strings.Split(m.detail.View(), "\n") {
			lines = append(lines, styledLine{text: strings.TrimRight(line, " "), style: bodyStyle})
		}
	}
	lines = append(lines, m.infoAndFooterLines()...)
	return renderLines(clipLines(lines, m.height-bottomBarRows, m.width)) + "\n" + m.bottomBar()
}

// viewSideBySide renders the outline on the left and the detail panel on the
// right.
func (m *Model) viewSideBySide(header styledLine) string {
	outlineW := m.outlineColumnWidth()
	detailW := m.detailPanelWidth()

	contentLines := make([]styledLine, 0, 32)
	contentLines = append(contentLines, header)
	contentLines = append(contentLines, m.outlineLines(outlineW)...)
	contentLines = append(contentLines, m.infoAndFooterLines()...)

	panelH := max(m.height-bottomBarRows, 1)
	contentLines = contentLines[:min(len(contentLines), panelH)]
	left := make([]string, panelH)
	for i := range left {
		var line styledLine
		if i < len(contentLines) {
			line = contentLines[i]
			line.text = truncateText(line.text, outlineW)
		}
		left[i] = fitWidth(line.render(), outlineW)
	}
	right := m.renderDetailPanel(detailW, panelH)
	return lipgloss.JoinHorizontal(lipgloss.Top, strings.Join(left, "\n"), right) + "\n" + m.bottomBar()
}

func (m *Model) infoAndFooterLines() []styledLine {
	var lines []styledLine
	if text := m.info.current(); text != "" {
		lines = append(lines, styledLine{}, styledLine{text: text, style: styles.Info})
	}
	if m.showFooter {
		lines = append(lines, styledLine{}, styledLine{text: footerText, style: styles.Footer})
	}
	return lines
}

// bottomBar renders the status line and the filter or open prompt.
func (m *Model) bottomBar() string {
	var status styledLine
	switch {
	case m.errMsg != "":
		status = styledLine{text: fmt.Sprintf("Error: %s", m.errMsg), style: styles.Error}
	case m.active != "":
		st := m.session.Status(m.active)
		if st == loader.StatusAwaiting || st == loader.StatusDispatching {
			status = styledLine{text: "computing detail…", style: styles.Loading}
		}
	}
	var input string
	if m.mode == ModeOpenPrompt {
		input = m.prompt.View()
	} else {
		input = m.filterLine()
	}
	return renderLines(clipLines([]styledLine{status, {text: input}}, 0, m.width))
}

// handleMouseMsg scrolls the detail panel with the wheel and treats a left
// press on an outline row as a click; alt or ctrl act as the modifier.
func (m *Model) handleMouseMsg(msg tea.Msg) tea.Cmd {
	ev, ok := msg.(tea.MouseMsg)
	if !ok {
		return nil
	}
	switch ev.Button {
	case tea.MouseButtonWheelUp:
		m.scrollDetail(-detailScrollStep)
		return nil
	case tea.MouseButtonWheelDown:
		m.scrollDetail(detailScrollStep)
		return nil
	case tea.MouseButtonLeft:
	default:
		return nil
	}
	if ev.Action != tea.MouseActionPress || m.mode != ModeBrowse {
		return nil
	}
	current := m.currentLevel()
	if current == nil {
		return nil
	}
	if m.hasSideDetail() && ev.X >= m.outlineColumnWidth() {
		return nil
	}
	visible := m.maxVisibleItems()
	offset := ev.Y - 1 // header row
	if offset < 0 || (visible > 0 && offset >= visible) {
		return nil
	}
	idx := current.ViewportOffset + offset
	if idx >= len(current.Items) {
		return nil
	}
	current.Cursor = idx
	m.clickCurrent(ev.Alt || ev.Ctrl)
	return nil
}

func (m *Model) handleWindowSizeMsg(msg tea.Msg) tea.Cmd {
	resize, ok := msg.(tea.WindowSizeMsg)
	if !ok {
		return nil
	}
	if !m.fixedWidth {
		m.width = resize.Width
	}
	if !m.fixedHeight {
		m.height = resize.Height
	}
	if current := m.currentLevel(); current != nil {
		m.syncViewport(current)
	}
	return nil
}

// maxVisibleItems returns how many outline rows fit between the tabs and
// the rest of the chrome, or -1 when the height is unknown.
func (m *Model) maxVisibleItems() int {
	if m.height <= 0 {
		return -1
	}
	chrome := bottomBarRows + 1
	if m.info.current() != "" {
		chrome += 2
	}
	if m.showFooter {
		chrome += 2
	}
	if !m.hasSideDetail() && m.active != "" {
		chrome += 2 + detailInlineLines
	}
	return max(m.height-chrome, 1)
}

// truncateText cuts text to width display columns. Text that already carries
// ANSI styling is measured and cut without breaking escape sequences.
func truncateText(text string, width int) string {
	if width <= 0 || lipgloss.Width(text) <= width {
		return text
	}
	if width == 1 {
		return truncate.String(text, 1)
	}
	return truncate.StringWithTail(text, uint(width-1), "…")
}

// fitWidth pads or cuts an already styled row to exactly width columns.
func fitWidth(row string, width int) string {
	w := lipgloss.Width(row)
	if w > width {
		return truncate.StringWithTail(row, uint(width-1), "…")
	}
	if w < width {
		return row + strings.Repeat(" ", width-w)
	}
	return row
}
