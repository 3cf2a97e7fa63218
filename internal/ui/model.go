package ui

import (
	"context"
	"reflect"

	"github.com/atomicstack/node-browser/internal/backend"
	"github.com/atomicstack/node-browser/internal/browser"
	"github.com/atomicstack/node-browser/internal/frame"
	"github.com/atomicstack/node-browser/internal/theme"
	"github.com/atomicstack/node-browser/internal/ui/command"
	uistate "github.com/atomicstack/node-browser/internal/ui/state"
	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

type level = uistate.Level

type Mode int

const (
	ModeBrowse Mode = iota
	ModeOpenPrompt
)

var styles = theme.Default()

type msgHandler func(tea.Msg) tea.Cmd

// Options configures a Model.
type Options struct {
	// Width and Height pin the layout; zero follows the terminal.
	Width      int
	Height     int
	ShowFooter bool
	FPS        int
	Watcher    *backend.Watcher
	// Context bounds background open and reload work.
	Context context.Context
}

// Model implements the Bubble Tea model for the node browser.
type Model struct {
	session *browser.Session
	levels  map[string]*level
	active  string

	pacer     *frame.Pacer
	detail    viewport.Model
	detailKey string

	prompt textinput.Model
	mode   Mode

	errMsg string
	info   flash

	width       int
	height      int
	fixedWidth  bool
	fixedHeight bool
	showFooter  bool

	backend     *backend.Watcher
	reloading   map[string]bool
	reloadAgain map[string]bool

	filterCursor      cursor.Model
	filterCursorDirty bool

	handlers map[reflect.Type]msgHandler
	bus      *command.Bus
}

// NewModel builds the UI around an existing session. Views already open in
// the session get an outline each; the first one becomes active.
func NewModel(session *browser.Session, opts Options) *Model {
	m := &Model{
		session:     session,
		levels:      make(map[string]*level),
		pacer:       frame.NewPacer(opts.FPS),
		detail:      viewport.New(0, 0),
		showFooter:  opts.ShowFooter,
		backend:     opts.Watcher,
		reloading:   make(map[string]bool),
		reloadAgain: make(map[string]bool),
		bus:         command.New(opts.Context),
		mode:        ModeBrowse,
	}
	for _, v := range session.Views() {
		m.addLevel(v)
	}
	if views := session.Views(); len(views) > 0 {
		m.active = views[0].ID
	}
	if opts.Width > 0 {
		m.width = opts.Width
		m.fixedWidth = true
	}
	if opts.Height > 0 {
		m.height = opts.Height
		m.fixedHeight = true
	}
	m.filterCursor = cursor.New()
	m.prompt = newOpenPrompt()
	m.registerHandlers()
	return m
}

// Init is part of the tea.Model interface.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.scheduleFrame(0)}
	if m.backend != nil {
		cmds = append(cmds, waitForBackendEvent(m.backend))
	}
	if cmd := m.filterCursor.Focus(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

// Update responds to Bubble Tea messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmds := make([]tea.Cmd, 0, 4)
	if cmd := m.updateFilterCursorModel(msg); cmd != nil {
		cmds = append(cmds, cmd)
	}
	if handler := m.handlerFor(msg); handler != nil {
		if cmd := handler(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}
		return m, m.finishUpdate(cmds)
	}
	if m.mode == ModeOpenPrompt {
		var cmd tea.Cmd
		m.prompt, cmd = m.prompt.Update(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return m, m.finishUpdate(cmds)
}

func (m *Model) registerHandlers() {
	m.handlers = map[reflect.Type]msgHandler{
		reflect.TypeOf(tea.KeyMsg{}):        m.handleKeyMsg,
		reflect.TypeOf(tea.MouseMsg{}):      m.handleMouseMsg,
		reflect.TypeOf(tea.WindowSizeMsg{}): m.handleWindowSizeMsg,
		reflect.TypeOf(frameMsg{}):          m.handleFrameMsg,
		reflect.TypeOf(sourceOpenedMsg{}):   m.handleSourceOpenedMsg,
		reflect.TypeOf(viewReloadedMsg{}):   m.handleViewReloadedMsg,
		reflect.TypeOf(backendEventMsg{}):   m.handleBackendEventMsg,
		reflect.TypeOf(backendDoneMsg{}):    m.handleBackendDoneMsg,
	}
}

func (m *Model) handlerFor(msg tea.Msg) msgHandler {
	if msg == nil || m.handlers == nil {
		return nil
	}
	t := reflect.TypeOf(msg)
	if handler, ok := m.handlers[t]; ok {
		return handler
	}
	if t.Kind() == reflect.Ptr {
		if handler, ok := m.handlers[t.Elem()]; ok {
			return handler
		}
	}
	return nil
}

func (m *Model) finishUpdate(cmds []tea.Cmd) tea.Cmd {
	if m.filterCursorDirty {
		m.filterCursorDirty = false
		m.filterCursor.Blink = false
		if cmd := m.filterCursor.BlinkCmd(); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}

func (m *Model) addLevel(v *browser.View) *level {
	lvl := uistate.NewLevel(v.ID, v.ID, v.Tree().Root())
	m.levels[v.ID] = lvl
	m.syncViewport(lvl)
	return lvl
}

func (m *Model) currentLevel() *level {
	if m.active == "" {
		return nil
	}
	return m.levels[m.active]
}

// ActiveView returns the ID of the view with focus.
func (m *Model) ActiveView() string {
	return m.active
}
