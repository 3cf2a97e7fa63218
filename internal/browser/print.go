package browser

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/atomicstack/node-browser/internal/frame"
	"github.com/atomicstack/node-browser/internal/loader"
	"github.com/atomicstack/node-browser/internal/tree"
)

// Outline writes the hierarchy of viewID, expanding at most depth levels
// below the root.
func (s *Session) Outline(w io.Writer, viewID string, depth int) error {
	v, err := s.View(viewID)
	if err != nil {
		return err
	}
	var walk func(n *tree.Node) error
	walk = func(n *tree.Node) error {
		if _, err := fmt.Fprintf(w, "%s%s\n", strings.Repeat("  ", n.Depth()), n.Label()); err != nil {
			return err
		}
		if n.Depth() >= depth {
			return nil
		}
		for _, child := range n.Children() {
			if err := walk(child); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(v.tree.Root())
}

// Describe selects node in viewID and runs paced frames until its detail text
// has been delivered.
func (s *Session) Describe(ctx context.Context, viewID string, node *tree.Node, fps int) (loader.Display, error) {
	if _, err := s.Select(viewID, node); err != nil {
		return loader.Display{}, err
	}
	var out loader.Display
	err := frame.Run(ctx, frame.NewPacer(fps), func() bool {
		s.Frame()
		d := s.Display(viewID)
		if d.Node == node && !d.Loading {
			out = d
			return false
		}
		return true
	})
	return out, err
}
