package ui

import (
	"fmt"

	"github.com/atomicstack/node-browser/internal/logging/events"
	tea "github.com/charmbracelet/bubbletea"
)

const detailScrollStep = 3

func (m *Model) handleEscapeKey() tea.Cmd {
	if m.clearFilter(m.currentLevel()) {
		return nil
	}
	return tea.Quit
}

// moveCursor applies move to the active outline and keeps the cursor row on
// screen.
func (m *Model) moveCursor(move func(l *level) bool) {
	current := m.currentLevel()
	if current == nil {
		return
	}
	if move(current) {
		events.UI.Cursor(current.ID, current.Cursor)
	}
	m.syncViewport(current)
}

// setExpanded opens or closes the node under the cursor. Closing a leaf or a
// collapsed node moves the cursor to its parent instead.
func (m *Model) setExpanded(open bool) {
	current := m.currentLevel()
	if current == nil {
		return
	}
	row := current.Current()
	if row == nil {
		return
	}
	node := row.Node
	if open {
		if row.Expandable {
			current.SetExpanded(node, true)
		}
	} else if row.Expanded {
		current.SetExpanded(node, false)
	} else if parent := node.Parent(); parent != nil {
		if idx := current.IndexOfNode(parent); idx >= 0 {
			current.Cursor = idx
			events.UI.Cursor(current.ID, current.Cursor)
		}
	}
	m.syncViewport(current)
}

func (m *Model) syncViewport(l *level) {
	if l == nil {
		return
	}
	l.Reveal(m.maxVisibleItems())
}

// switchView moves focus delta views along the opening order.
func (m *Model) switchView(delta int) {
	views := m.session.Views()
	if len(views) < 2 {
		return
	}
	idx := 0
	for i, v := range views {
		if v.ID == m.active {
			idx = i
			break
		}
	}
	idx = (idx + delta + len(views)) % len(views)
	m.active = views[idx].ID
	m.detailKey = ""
	m.syncDetail()
	events.UI.SwitchView(m.active)
	m.syncViewport(m.currentLevel())
}

func (m *Model) closeActiveView() {
	if m.active == "" {
		return
	}
	closing := m.active
	views := m.session.Views()
	next := ""
	for i, v := range views {
		if v.ID != closing {
			continue
		}
		switch {
		case i+1 < len(views):
			next = views[i+1].ID
		case i > 0:
			next = views[i-1].ID
		}
	}
	if err := m.session.CloseView(closing); err != nil {
		m.errMsg = err.Error()
		return
	}
	delete(m.levels, closing)
	delete(m.reloading, closing)
	events.UI.CloseView(closing)
	m.active = next
	m.detailKey = ""
	m.syncDetail()
	m.setInfo(fmt.Sprintf("Closed %s", closing))
}

func (m *Model) refreshDetail() {
	if m.active == "" || m.session.Selected(m.active) == nil {
		return
	}
	if err := m.session.Refresh(m.active); err != nil {
		m.errMsg = err.Error()
	}
}

func (m *Model) scrollDetail(delta int) {
	m.detail.SetYOffset(m.detail.YOffset + delta)
}

func (m *Model) handleKeyMsg(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	if keyMsg.String() == "ctrl+c" {
		return tea.Quit
	}
	if m.mode == ModeOpenPrompt {
		return m.handlePromptKey(keyMsg)
	}
	if handled, cmd := m.handleTextInput(keyMsg); handled {
		return cmd
	}
	switch keyMsg.String() {
	case "esc":
		return m.handleEscapeKey()
	case "enter":
		m.clickCurrent(false)
	case "alt+enter":
		m.clickCurrent(true)
	case "up":
		m.moveCursor(func(l *level) bool { return l.Wrap(-1) })
	case "down":
		m.moveCursor(func(l *level) bool { return l.Wrap(1) })
	case "pgup":
		m.moveCursor(func(l *level) bool { return l.Page(-1, m.maxVisibleItems()) })
	case "pgdown":
		m.moveCursor(func(l *level) bool { return l.Page(1, m.maxVisibleItems()) })
	case "home":
		m.moveCursor((*level).Home)
	case "end":
		m.moveCursor((*level).End)
	case "right":
		m.setExpanded(true)
	case "left":
		m.setExpanded(false)
	case "shift+up":
		m.scrollDetail(-detailScrollStep)
	case "shift+down":
		m.scrollDetail(detailScrollStep)
	case "tab":
		m.switchView(1)
	case "shift+tab":
		m.switchView(-1)
	case "ctrl+o":
		return m.startOpenPrompt()
	case "ctrl+x":
		m.closeActiveView()
	case "ctrl+r":
		m.refreshDetail()
	case "ctrl+l":
		return m.reloadView(m.active)
	}
	return nil
}
