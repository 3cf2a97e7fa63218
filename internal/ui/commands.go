package ui

import (
	"context"
	"fmt"

	"github.com/atomicstack/node-browser/internal/logging"
	"github.com/atomicstack/node-browser/internal/logging/events"
	"github.com/atomicstack/node-browser/internal/provider"
	"github.com/atomicstack/node-browser/internal/tree"
	"github.com/atomicstack/node-browser/internal/ui/command"
	tea "github.com/charmbracelet/bubbletea"
)

// sourceOpenedMsg carries a provider opened off the update loop.
type sourceOpenedMsg struct {
	source   string
	provider tree.Provider
	err      error
}

// viewReloadedMsg carries a freshly opened provider for an existing view.
type viewReloadedMsg struct {
	viewID   string
	source   string
	provider tree.Provider
	err      error
}

func (m *Model) openSource(source string) tea.Cmd {
	session := m.session
	return m.bus.Execute(command.Request{
		ID:    "open",
		Label: source,
		Run: func(ctx context.Context) tea.Msg {
			p, err := session.OpenProvider(ctx, source)
			return sourceOpenedMsg{source: source, provider: p, err: err}
		},
	})
}

func (m *Model) handleSourceOpenedMsg(msg tea.Msg) tea.Cmd {
	opened, ok := msg.(sourceOpenedMsg)
	if !ok {
		return nil
	}
	m.forceClearInfo()
	if opened.err != nil {
		err := fmt.Errorf("open %s: %w", opened.source, opened.err)
		logging.Error(err)
		events.Action.Error(err)
		m.errMsg = err.Error()
		return nil
	}
	v := m.session.Attach(opened.source, opened.provider)
	m.addLevel(v)
	m.active = v.ID
	m.errMsg = ""
	m.detailKey = ""
	m.syncDetail()
	if m.backend != nil {
		if err := m.backend.Add(opened.source); err != nil {
			logging.Error(err)
		}
	}
	events.Action.Success("opened " + v.ID)
	m.setInfo(fmt.Sprintf("Opened %s", v.ID))
	return nil
}

// reloadView reopens the source of viewID in the background. While a reload
// is in flight further requests collapse into one follow-up reload, since the
// running one may have read the document before the latest change.
func (m *Model) reloadView(viewID string) tea.Cmd {
	v, err := m.session.View(viewID)
	if err != nil {
		return nil
	}
	if m.reloading[viewID] {
		m.reloadAgain[viewID] = true
		return nil
	}
	m.reloading[viewID] = true
	session := m.session
	source := v.Source
	return m.bus.Execute(command.Request{
		ID:    "reload",
		Label: viewID,
		Run: func(ctx context.Context) tea.Msg {
			p, err := session.OpenProvider(ctx, source)
			return viewReloadedMsg{viewID: viewID, source: source, provider: p, err: err}
		},
	})
}

func (m *Model) handleViewReloadedMsg(msg tea.Msg) tea.Cmd {
	reloaded, ok := msg.(viewReloadedMsg)
	if !ok {
		return nil
	}
	delete(m.reloading, reloaded.viewID)
	again := m.reloadAgain[reloaded.viewID]
	delete(m.reloadAgain, reloaded.viewID)
	m.applyReload(reloaded)
	if again {
		return m.reloadView(reloaded.viewID)
	}
	return nil
}

func (m *Model) applyReload(reloaded viewReloadedMsg) {
	if reloaded.err != nil {
		events.Backend.Reload(reloaded.viewID, reloaded.source, reloaded.err)
		m.errMsg = fmt.Sprintf("reload %s: %v", reloaded.source, reloaded.err)
		return
	}
	lvl, ok := m.levels[reloaded.viewID]
	if !ok {
		// closed while the reload was running
		if err := provider.Close(reloaded.provider); err != nil {
			logging.Error(err)
		}
		return
	}
	if err := m.session.Replace(reloaded.viewID, reloaded.provider); err != nil {
		m.errMsg = err.Error()
		return
	}
	v, err := m.session.View(reloaded.viewID)
	if err != nil {
		return
	}
	lvl.SetRoot(v.Tree().Root())
	m.syncViewport(lvl)
	if reloaded.viewID == m.active {
		m.detailKey = ""
		m.syncDetail()
	}
	m.setInfo(fmt.Sprintf("Reloaded %s", reloaded.viewID))
}
