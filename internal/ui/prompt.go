package ui

import (
	"strings"

	"github.com/atomicstack/node-browser/internal/logging/events"
	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

func newOpenPrompt() textinput.Model {
	ti := textinput.New()
	ti.Prompt = "open: "
	ti.Placeholder = "path to a Go package, directory or SQLite database"
	// The filter cursor already blinks; keep the prompt caret steady.
	ti.Cursor.SetMode(cursor.CursorStatic)
	if styles.FilterPrompt != nil {
		ti.PromptStyle = styles.FilterPrompt.Copy()
	}
	if styles.Filter != nil {
		ti.TextStyle = styles.Filter.Copy()
	}
	if styles.FilterPlaceholder != nil {
		ti.PlaceholderStyle = styles.FilterPlaceholder.Copy()
	}
	return ti
}

func (m *Model) startOpenPrompt() tea.Cmd {
	m.mode = ModeOpenPrompt
	m.errMsg = ""
	m.forceClearInfo()
	m.prompt.SetValue("")
	events.UI.OpenPrompt()
	return m.prompt.Focus()
}

func (m *Model) closeOpenPrompt() {
	m.mode = ModeBrowse
	m.prompt.Blur()
	m.prompt.SetValue("")
}

func (m *Model) handlePromptKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.closeOpenPrompt()
		return nil
	case "enter":
		source := strings.TrimSpace(m.prompt.Value())
		m.closeOpenPrompt()
		if source == "" {
			return nil
		}
		m.setInfo("Opening " + source + "…")
		return m.openSource(source)
	}
	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return cmd
}
