package ui

import (
	"github.com/atomicstack/node-browser/internal/logging"
	"github.com/atomicstack/node-browser/internal/logging/events"
	uistate "github.com/atomicstack/node-browser/internal/ui/state"
)

// click applies the row activation policy. Clicking a collapsed node, or
// clicking the selected node without the modifier, toggles its expansion.
// A modifier click on the selected node clears the selection; every other
// click selects the row.
func (m *Model) click(row *uistate.Row, modifier bool) {
	current := m.currentLevel()
	if current == nil || row == nil || row.Node == nil {
		return
	}
	events.UI.Click(current.ID, row.ID, row.Label, modifier)
	selected := m.session.IsSelected(current.ID, row.Node)
	collapsed := row.Expandable && !row.Expanded
	if row.Expandable && ((!modifier && selected) || collapsed) {
		current.Toggle(row.Node)
	}
	var err error
	if selected && modifier {
		_, err = m.session.ClearSelection(current.ID)
	} else {
		_, err = m.session.Select(current.ID, row.Node)
	}
	if err != nil {
		logging.Error(err)
		m.errMsg = err.Error()
		return
	}
	m.errMsg = ""
	m.syncViewport(current)
}

func (m *Model) clickCurrent(modifier bool) {
	current := m.currentLevel()
	if current == nil {
		return
	}
	row := current.Current()
	if row == nil {
		return
	}
	// Toggle rebuilds the rows; work on a copy.
	r := *row
	m.click(&r, modifier)
}
