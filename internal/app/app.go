package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/atomicstack/node-browser/internal/backend"
	"github.com/atomicstack/node-browser/internal/browser"
	"github.com/atomicstack/node-browser/internal/loader"
	"github.com/atomicstack/node-browser/internal/logging"
	"github.com/atomicstack/node-browser/internal/logging/events"
	"github.com/atomicstack/node-browser/internal/provider"
	"github.com/atomicstack/node-browser/internal/ui"
	tea "github.com/charmbracelet/bubbletea"
)

const watchDebounce = 250 * time.Millisecond

// Config describes user-provided application options.
type Config struct {
	Width       int
	Height      int
	ShowFooter  bool
	FPS         int
	MaxWorkers  int
	Placeholder string
	Watch       bool
	Sources     []string
	Print       bool
	PrintDepth  int
}

// Run opens every configured source and either prints them or runs the
// Bubble Tea program until the user quits.
func Run(cfg Config) (err error) {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	defer func() { events.App.Stop(err) }()

	session := browser.New(browser.Options{
		Loader: loader.Options{Placeholder: cfg.Placeholder, MaxWorkers: cfg.MaxWorkers},
	})
	defer session.Close()

	providers, err := provider.OpenAll(ctx, cfg.Sources)
	if err != nil {
		return err
	}
	for i, p := range providers {
		session.Attach(cfg.Sources[i], p)
	}

	if cfg.Print {
		return Print(ctx, session, os.Stdout, cfg.PrintDepth, cfg.FPS)
	}

	var watcher *backend.Watcher
	if cfg.Watch {
		watcher, err = backend.NewWatcher(cfg.Sources, watchDebounce)
		if err != nil {
			// browsing still works without live reload
			logging.Error(err)
			watcher = nil
		} else {
			defer watcher.Stop()
		}
	}

	model := ui.NewModel(session, ui.Options{
		Width:      cfg.Width,
		Height:     cfg.Height,
		ShowFooter: cfg.ShowFooter,
		FPS:        cfg.FPS,
		Watcher:    watcher,
		Context:    ctx,
	})
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	_, err = program.Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}

// Print writes the outline of every view followed by the detail text of its
// root node. Detail texts go through the same loader and frame loop as the
// interactive UI.
func Print(ctx context.Context, session *browser.Session, w io.Writer, depth, fps int) error {
	for i, v := range session.Views() {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "== %s (%s)\n", v.ID, v.Source); err != nil {
			return err
		}
		if err := session.Outline(w, v.ID, depth); err != nil {
			return err
		}
		d, err := session.Describe(ctx, v.ID, v.Tree().Root(), fps)
		if err != nil {
			return fmt.Errorf("describe %s: %w", v.ID, err)
		}
		if _, err := fmt.Fprintf(w, "\n%s\n", d.Text); err != nil {
			return err
		}
	}
	return nil
}
