package ui

import (
	"github.com/atomicstack/node-browser/internal/backend"
	tea "github.com/charmbracelet/bubbletea"
)

func waitForBackendEvent(w *backend.Watcher) tea.Cmd {
	return func() tea.Msg {
		evt, ok := <-w.Events()
		if !ok {
			return backendDoneMsg{}
		}
		return backendEventMsg{event: evt}
	}
}

type backendEventMsg struct {
	event backend.Event
}

type backendDoneMsg struct{}

func (m *Model) handleBackendEventMsg(msg tea.Msg) tea.Cmd {
	eventMsg, ok := msg.(backendEventMsg)
	if !ok {
		return nil
	}
	cmd := m.applyBackendEvent(eventMsg.event)
	if m.backend != nil {
		waitCmd := waitForBackendEvent(m.backend)
		if cmd != nil {
			return tea.Batch(cmd, waitCmd)
		}
		return waitCmd
	}
	return cmd
}

func (m *Model) handleBackendDoneMsg(tea.Msg) tea.Cmd {
	m.backend = nil
	return nil
}

// applyBackendEvent reloads every view showing the changed source.
func (m *Model) applyBackendEvent(evt backend.Event) tea.Cmd {
	switch evt.Kind {
	case backend.KindError:
		if evt.Err != nil {
			m.errMsg = "watch: " + evt.Err.Error()
		}
		return nil
	case backend.KindChanged:
		var cmds []tea.Cmd
		for _, id := range m.session.ViewsForPath(evt.Path) {
			if cmd := m.reloadView(id); cmd != nil {
				cmds = append(cmds, cmd)
			}
		}
		return tea.Batch(cmds...)
	}
	return nil
}
