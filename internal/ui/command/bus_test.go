package command

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

type doneMsg string

func TestExecuteRunsRequest(t *testing.T) {
	bus := New(context.Background())
	cmd := bus.Execute(Request{ID: "open", Label: "a.db", Run: func(context.Context) tea.Msg {
		return doneMsg("ok")
	}})
	if got := cmd(); got != doneMsg("ok") {
		t.Fatalf("expected ok message, got %#v", got)
	}
}

func TestExecuteSkipsAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	bus := New(ctx)
	ran := false
	cmd := bus.Execute(Request{ID: "open", Run: func(context.Context) tea.Msg {
		ran = true
		return nil
	}})
	cancel()
	if msg := cmd(); msg != nil || ran {
		t.Fatalf("expected cancelled request to be skipped, got %#v", msg)
	}
	if msg := bus.Execute(Request{ID: "nil"})(); msg != nil {
		t.Fatalf("expected nil for request without Run, got %#v", msg)
	}
}
