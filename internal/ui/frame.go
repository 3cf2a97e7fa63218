package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// frameMsg starts one render step.
type frameMsg struct{}

func (m *Model) scheduleFrame(wait time.Duration) tea.Cmd {
	return tea.Tick(wait, func(time.Time) tea.Msg { return frameMsg{} })
}

func (m *Model) handleFrameMsg(tea.Msg) tea.Cmd {
	m.pacer.Begin()
	m.session.Frame()
	m.syncDetail()
	return m.scheduleFrame(m.pacer.Remaining())
}

// syncDetail loads the active view's display into the detail viewport. The
// scroll position is kept while the same text stays on screen.
func (m *Model) syncDetail() {
	d := m.session.Display(m.active)
	node := ""
	if d.Node != nil {
		node = d.Node.ID().String()
	}
	key := fmt.Sprintf("%s|%s|%d|%t|%t|%s", m.active, node, d.Generation, d.Loading, d.Failed, d.Text)
	if key == m.detailKey {
		return
	}
	m.detailKey = key
	m.detail.SetContent(expandTabs(d.Text))
	m.detail.GotoTop()
}

func expandTabs(text string) string {
	return strings.ReplaceAll(text, "\t", "    ")
}
