package command

import (
	"context"
	"fmt"

	"github.com/atomicstack/node-browser/internal/logging/events"
	tea "github.com/charmbracelet/bubbletea"
)

// Request describes blocking work that must stay off the update loop, such as
// opening or reloading a source.
type Request struct {
	ID    string
	Label string
	Run   func(context.Context) tea.Msg
}

// Bus turns requests into Bubble Tea commands sharing one context.
type Bus struct {
	ctx context.Context
}

// New initialises a command bus bound to ctx.
func New(ctx context.Context) *Bus {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Bus{ctx: ctx}
}

// Execute wraps a request into a Bubble Tea command while emitting trace logs.
func (b *Bus) Execute(req Request) tea.Cmd {
	events.Command.Queue(req.ID, req.Label)
	return func() tea.Msg {
		if req.Run == nil || b.ctx.Err() != nil {
			events.Command.Skip(req.ID, req.Label)
			return nil
		}
		msg := req.Run(b.ctx)
		events.Command.Result(req.ID, req.Label, fmt.Sprintf("%T", msg))
		return msg
	}
}
