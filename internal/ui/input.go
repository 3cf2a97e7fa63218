package ui

import (
	"unicode"

	"github.com/atomicstack/node-browser/internal/logging/events"
	uistate "github.com/atomicstack/node-browser/internal/ui/state"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const filterPlaceholder = "(type to filter)"

// filterKeys edit the active view's filter. A key whose edit changes nothing
// falls through to navigation, so left and right still fold rows while the
// caret sits at an end of the query.
var filterKeys = map[string]uistate.Edit{
	"ctrl+u":    uistate.EditClear,
	"backspace": uistate.EditDeleteRune,
	"ctrl+h":    uistate.EditDeleteRune,
	"ctrl+w":    uistate.EditDeleteWord,
	"ctrl+a":    uistate.EditHome,
	"ctrl+e":    uistate.EditEnd,
	"left":      uistate.EditLeft,
	"right":     uistate.EditRight,
	"alt+b":     uistate.EditWordLeft,
	"alt+f":     uistate.EditWordRight,
}

func (m *Model) handleTextInput(msg tea.KeyMsg) (bool, tea.Cmd) {
	current := m.currentLevel()
	if current == nil {
		return false, nil
	}
	if edit, ok := filterKeys[msg.String()]; ok {
		if !current.EditFilter(edit) {
			return false, nil
		}
		m.filterEdited(current, edit.String(), edit.Changes())
		return true, nil
	}
	text, ok := typedText(msg, current.Filtering())
	if !ok || !current.TypeFilter(text) {
		return false, nil
	}
	m.filterEdited(current, "type", true)
	return true, nil
}

// typedText returns the printable text carried by msg. A space only counts
// once the query has started.
func typedText(msg tea.KeyMsg, filtering bool) (string, bool) {
	switch msg.Type {
	case tea.KeySpace:
		return " ", filtering
	case tea.KeyRunes:
		if msg.Alt || len(msg.Runes) == 0 {
			return "", false
		}
		for _, r := range msg.Runes {
			if unicode.IsControl(r) || unicode.IsSpace(r) {
				return "", false
			}
		}
		return string(msg.Runes), true
	}
	return "", false
}

func (m *Model) filterEdited(l *level, op string, textChanged bool) {
	m.filterCursorDirty = true
	events.Filter.Edit(l.ID, op, l.FilterText(), l.Query.Pos())
	if !textChanged {
		return
	}
	m.forceClearInfo()
	m.errMsg = ""
	m.syncViewport(l)
}

func (m *Model) clearFilter(l *level) bool {
	if l == nil || !l.EditFilter(uistate.EditClear) {
		return false
	}
	m.filterCursorDirty = true
	events.Filter.Cleared(l.ID)
	m.syncViewport(l)
	return true
}

func (m *Model) updateFilterCursorModel(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	m.filterCursor, cmd = m.filterCursor.Update(msg)
	return cmd
}

// filterLine renders the filter query with the blinking caret over the rune
// at the caret position.
func (m *Model) filterLine() string {
	line := renderStyled(styles.FilterPrompt, "» ")
	current := m.currentLevel()
	if current == nil {
		return line
	}
	if styles.Cursor != nil {
		m.filterCursor.Style = styles.Cursor.Copy()
	}
	text := []rune(current.FilterText())
	textStyle := styles.Filter
	if len(text) == 0 {
		text = []rune(filterPlaceholder)
		textStyle = styles.FilterPlaceholder
	}
	m.filterCursor.TextStyle = lipgloss.Style{}
	if textStyle != nil {
		m.filterCursor.TextStyle = textStyle.Copy()
	}
	pos := current.Query.Pos()
	under, after := " ", ""
	if pos < len(text) {
		under, after = string(text[pos]), string(text[pos+1:])
	}
	m.filterCursor.SetChar(under)
	return line + renderStyled(textStyle, string(text[:pos])) + m.filterCursor.View() + renderStyled(textStyle, after)
}

func renderStyled(style *lipgloss.Style, value string) string {
	if style == nil || value == "" {
		return value
	}
	return style.Render(value)
}
